package services

import (
	"context"
	"sort"
	"sync"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BulkPaymentInput distributes one collected amount across several invoices.
// With SettleAsFull every selected invoice is marked paid for its discounted
// share, even though the shares do not cover the full dues.
type BulkPaymentInput struct {
	InvoiceIDs   []uuid.UUID
	TotalAmount  decimal.Decimal
	Method       models.PaymentMethod
	Reference    *string
	SettleAsFull bool
}

// BulkAllocation is the per-invoice outcome of a bulk payment.
type BulkAllocation struct {
	InvoiceID uuid.UUID        `json:"invoice_id"`
	Amount    decimal.Decimal  `json:"amount"`
	Payment   *models.Payment  `json:"payment,omitempty"`
	Invoice   *models.Document `json:"invoice,omitempty"`
	Succeeded bool             `json:"succeeded"`
	Error     string           `json:"error,omitempty"`
}

// BulkPaymentResult reports every allocation individually. When some ledger
// calls fail, Committed falls short of TotalAmount and the caller reconciles
// the difference; succeeded payments are never rolled back.
type BulkPaymentResult struct {
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Committed   decimal.Decimal  `json:"committed"`
	Succeeded   int              `json:"succeeded"`
	Failed      int              `json:"failed"`
	Allocations []BulkAllocation `json:"allocations"`
}

type BulkPaymentService interface {
	AllocateBulkPayment(ctx context.Context, businessID, userID uuid.UUID, input *BulkPaymentInput) (*BulkPaymentResult, error)
}

type bulkPaymentService struct {
	documentRepo repositories.DocumentRepository
	paymentSvc   PaymentService
}

func NewBulkPaymentService(documentRepo repositories.DocumentRepository, paymentSvc PaymentService) BulkPaymentService {
	return &bulkPaymentService{
		documentRepo: documentRepo,
		paymentSvc:   paymentSvc,
	}
}

// allocateShares splits totalAmount across the dues proportionally, rounding
// each share to 2 decimal places. The rounding remainder is poured into the
// shares in descending-due order without pushing any share past its due, so
// the shares always sum to totalAmount exactly and the ledger accepts each
// one. Only when totalAmount itself exceeds the total due (settle-as-full)
// does the leftover land on the largest due regardless.
func allocateShares(totalAmount decimal.Decimal, dues []decimal.Decimal) []decimal.Decimal {
	totalDue := decimal.Zero
	for _, due := range dues {
		totalDue = totalDue.Add(due)
	}

	shares := make([]decimal.Decimal, len(dues))
	allocated := decimal.Zero
	for i, due := range dues {
		shares[i] = totalAmount.Mul(due).Div(totalDue).Round(2)
		allocated = allocated.Add(shares[i])
	}

	remainder := totalAmount.Sub(allocated)
	if remainder.IsZero() {
		return shares
	}

	order := make([]int, len(dues))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dues[order[a]].GreaterThan(dues[order[b]])
	})

	if remainder.Sign() < 0 {
		// Rounding over-allocated; take the excess back from the largest due.
		shares[order[0]] = shares[order[0]].Add(remainder)
		return shares
	}
	for _, i := range order {
		room := dues[i].Sub(shares[i])
		if room.Sign() <= 0 {
			continue
		}
		add := remainder
		if add.GreaterThan(room) {
			add = room
		}
		shares[i] = shares[i].Add(add)
		remainder = remainder.Sub(add)
		if remainder.IsZero() {
			return shares
		}
	}
	shares[order[0]] = shares[order[0]].Add(remainder)
	return shares
}

// AllocateBulkPayment validates the whole request up front, computes the
// per-invoice shares, then issues one payment-ledger transaction per invoice
// concurrently. There is no cross-invoice atomicity: a failed invoice keeps
// its balance while its siblings are already paid, and the result says which
// is which.
func (s *bulkPaymentService) AllocateBulkPayment(ctx context.Context, businessID, userID uuid.UUID, input *BulkPaymentInput) (*BulkPaymentResult, error) {
	if len(input.InvoiceIDs) == 0 {
		return nil, common.NewValidationError("invoice_ids", "at least one invoice must be selected")
	}
	if err := common.ValidatePositiveAmount(input.TotalAmount, "total_amount"); err != nil {
		return nil, err
	}
	if !models.ValidPaymentMethod(input.Method) {
		return nil, common.NewValidationError("method", "method must be one of: cash, bank_transfer, upi, other")
	}
	if err := common.ValidateOptionalString(input.Reference, "reference", 120); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(input.InvoiceIDs))
	ids := make([]uuid.UUID, 0, len(input.InvoiceIDs))
	for _, id := range input.InvoiceIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	docs, err := s.documentRepo.GetManyByIDs(ctx, businessID, ids)
	if err != nil {
		return nil, err
	}
	if len(docs) != len(ids) {
		return nil, common.ErrNotFound
	}
	for _, doc := range docs {
		if doc.Kind != models.DocumentKindInvoice {
			return nil, common.ErrNotFound
		}
	}

	dues := make([]decimal.Decimal, len(docs))
	totalDue := decimal.Zero
	for i, doc := range docs {
		due := doc.Outstanding()
		if due.Sign() < 0 {
			due = decimal.Zero
		}
		dues[i] = due
		totalDue = totalDue.Add(due)
	}
	if totalDue.Sign() <= 0 {
		return nil, common.NewValidationError("invoice_ids", "selected invoices carry no outstanding balance")
	}
	if !input.SettleAsFull && input.TotalAmount.GreaterThan(totalDue) {
		return nil, common.NewValidationError("total_amount", "total amount exceeds the selected outstanding balance")
	}

	shares := allocateShares(input.TotalAmount, dues)

	result := &BulkPaymentResult{
		TotalAmount: input.TotalAmount,
		Committed:   decimal.Zero,
		Allocations: make([]BulkAllocation, len(docs)),
	}

	var wg sync.WaitGroup
	for i, doc := range docs {
		result.Allocations[i] = BulkAllocation{InvoiceID: doc.ID, Amount: shares[i]}
		if shares[i].Sign() <= 0 {
			result.Allocations[i].Error = "allocated share rounds to zero"
			continue
		}

		wg.Add(1)
		go func(i int, invoiceID uuid.UUID, amount decimal.Decimal) {
			defer wg.Done()
			// RecordPayment trims the reference through the pointer, so
			// each ledger call gets its own copy.
			var reference *string
			if input.Reference != nil {
				ref := *input.Reference
				reference = &ref
			}
			payment, invoice, err := s.paymentSvc.RecordPayment(ctx, businessID, userID, &RecordPaymentInput{
				InvoiceID:    invoiceID,
				Amount:       amount,
				Method:       input.Method,
				Reference:    reference,
				SettleAsFull: input.SettleAsFull,
			})
			if err != nil {
				result.Allocations[i].Error = err.Error()
				return
			}
			result.Allocations[i].Payment = payment
			result.Allocations[i].Invoice = invoice
			result.Allocations[i].Succeeded = true
		}(i, doc.ID, shares[i])
	}
	wg.Wait()

	for _, alloc := range result.Allocations {
		if alloc.Succeeded {
			result.Succeeded++
			result.Committed = result.Committed.Add(alloc.Amount)
		} else {
			result.Failed++
		}
	}
	return result, nil
}
