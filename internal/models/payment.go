package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the fixed set of accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodOther        PaymentMethod = "other"
)

// ValidPaymentMethod reports whether method is a member of the enum.
func ValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is an append-only record against an invoice. There is no update or
// delete path for payments anywhere in the system.
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BusinessID  uuid.UUID       `json:"business_id" db:"business_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Method      PaymentMethod   `json:"method" db:"method"`
	Reference   *string         `json:"reference" db:"reference"`
	Note        *string         `json:"note" db:"note"`
	SettledFull bool            `json:"settled_full" db:"settled_full"`
	PaidAt      time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
