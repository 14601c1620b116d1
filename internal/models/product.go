package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BusinessID    uuid.UUID       `json:"business_id" db:"business_id"`
	Name          string          `json:"name" db:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	TaxPercent    decimal.Decimal `json:"tax_percent" db:"tax_percent"`
	UnitOfMeasure *string         `json:"unit_of_measure" db:"unit_of_measure"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level" db:"min_stock_level"`
	BuyPrice      decimal.Decimal `json:"buy_price" db:"buy_price"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// LowOnStock reports whether the product has fallen below its minimum level.
func (p *Product) LowOnStock() bool {
	return p.StockQuantity < p.MinStockLevel
}
