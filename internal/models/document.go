package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes invoices from estimates. Both share the same
// line-item/total shape; only invoices accrue payments and carry a status.
type DocumentKind string

const (
	DocumentKindInvoice  DocumentKind = "invoice"
	DocumentKindEstimate DocumentKind = "estimate"
)

// DocumentStatus is the payment lifecycle of an invoice.
type DocumentStatus string

const (
	StatusPending       DocumentStatus = "pending"
	StatusPartiallyPaid DocumentStatus = "partially_paid"
	StatusPaid          DocumentStatus = "paid"
	StatusOverdue       DocumentStatus = "overdue"
	StatusCancelled     DocumentStatus = "cancelled"
)

// ValidDocumentKind reports whether kind is a known document kind.
func ValidDocumentKind(kind DocumentKind) bool {
	return kind == DocumentKindInvoice || kind == DocumentKindEstimate
}

// ValidManualStatus reports whether status may be set through the manual
// status endpoint. paid and partially_paid are owned by the payment ledger
// and are never writable directly.
func ValidManualStatus(status DocumentStatus) bool {
	switch status {
	case StatusPending, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// DeriveStatus applies the payment-driven status rule. settledFull forces
// paid regardless of the amount collected (negotiated write-off). A payment
// on an overdue or cancelled invoice re-enters the automatic rule because
// amountPaid is positive after any payment.
func DeriveStatus(total, amountPaid decimal.Decimal, settledFull bool, current DocumentStatus) DocumentStatus {
	if settledFull {
		return StatusPaid
	}
	if total.Sub(amountPaid).Sign() <= 0 {
		return StatusPaid
	}
	if amountPaid.Sign() > 0 {
		return StatusPartiallyPaid
	}
	return current
}

type Document struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BusinessID    uuid.UUID       `json:"business_id" db:"business_id"`
	Kind          DocumentKind    `json:"kind" db:"kind"`
	Number        string          `json:"number" db:"number"`
	ClientName    string          `json:"client_name" db:"client_name"`
	ClientEmail   *string         `json:"client_email" db:"client_email"`
	ClientAddress *string         `json:"client_address" db:"client_address"`
	IssueDate     time.Time       `json:"issue_date" db:"issue_date"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	Total         decimal.Decimal `json:"total" db:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Status        DocumentStatus  `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Items []*LineItem `json:"items,omitempty" db:"-"`
}

// Outstanding is the balance still owed on the document.
func (d *Document) Outstanding() decimal.Decimal {
	return d.Total.Sub(d.AmountPaid)
}

// LineItem is one product line on a document. Price and tax rate are captured
// at build time so later product edits never change a posted document.
type LineItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BusinessID  uuid.UUID       `json:"business_id" db:"business_id"`
	DocumentID  uuid.UUID       `json:"document_id" db:"document_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent" db:"tax_percent"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	Total       decimal.Decimal `json:"total" db:"total"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
