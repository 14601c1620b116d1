package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name        string
		total       string
		amountPaid  string
		settledFull bool
		current     DocumentStatus
		want        DocumentStatus
	}{
		{"no payments keeps current", "100", "0", false, StatusPending, StatusPending},
		{"partial payment", "100", "40", false, StatusPending, StatusPartiallyPaid},
		{"exact payment", "100", "100", false, StatusPending, StatusPaid},
		{"overpayment", "100", "120", false, StatusPending, StatusPaid},
		{"settled full with shortfall", "100", "60", true, StatusPending, StatusPaid},
		{"settled full with zero paid", "100", "0", true, StatusPending, StatusPaid},
		{"payment on overdue goes partial", "100", "40", false, StatusOverdue, StatusPartiallyPaid},
		{"payment on cancelled goes partial", "100", "40", false, StatusCancelled, StatusPartiallyPaid},
		{"overdue with no payments stays overdue", "100", "0", false, StatusOverdue, StatusOverdue},
		{"zero total is paid", "0", "0", false, StatusPending, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(d(tt.total), d(tt.amountPaid), tt.settledFull, tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidManualStatus(t *testing.T) {
	assert.True(t, ValidManualStatus(StatusPending))
	assert.True(t, ValidManualStatus(StatusOverdue))
	assert.True(t, ValidManualStatus(StatusCancelled))

	// Ledger-owned statuses are never settable manually.
	assert.False(t, ValidManualStatus(StatusPaid))
	assert.False(t, ValidManualStatus(StatusPartiallyPaid))
	assert.False(t, ValidManualStatus(DocumentStatus("draft")))
}

func TestOutstanding(t *testing.T) {
	doc := &Document{Total: d("250.50"), AmountPaid: d("100.25")}
	assert.True(t, doc.Outstanding().Equal(d("150.25")))
}

func TestValidDocumentKind(t *testing.T) {
	assert.True(t, ValidDocumentKind(DocumentKindInvoice))
	assert.True(t, ValidDocumentKind(DocumentKindEstimate))
	assert.False(t, ValidDocumentKind(DocumentKind("receipt")))
}
