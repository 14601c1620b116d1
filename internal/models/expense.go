package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BusinessID    uuid.UUID       `json:"business_id" db:"business_id"`
	Category      string          `json:"category" db:"category"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Note          *string         `json:"note" db:"note"`
	SpentAt       time.Time       `json:"spent_at" db:"spent_at"`
	ReceiptObject *string         `json:"receipt_object" db:"receipt_object"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
