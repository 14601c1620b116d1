package services

import (
	"context"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentInput is the validated request for a single payment.
// SettleAsFull marks the invoice paid even when the amount leaves a shortfall
// (negotiated discount/write-off).
type RecordPaymentInput struct {
	InvoiceID    uuid.UUID
	Amount       decimal.Decimal
	Method       models.PaymentMethod
	Reference    *string
	Note         *string
	SettleAsFull bool
}

type PaymentService interface {
	RecordPayment(ctx context.Context, businessID, userID uuid.UUID, input *RecordPaymentInput) (*models.Payment, *models.Document, error)
	ListPayments(ctx context.Context, businessID, invoiceID uuid.UUID) ([]*models.Payment, error)
}

type paymentService struct {
	paymentRepo  repositories.PaymentRepository
	documentRepo repositories.DocumentRepository
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, documentRepo repositories.DocumentRepository) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		documentRepo: documentRepo,
	}
}

// RecordPayment validates the payment, then hands it to the repository, which
// inserts the payment row and folds the amount into the invoice balance in
// one transaction. amount_paid is maintained incrementally here and nowhere
// else; it is never recomputed from the payments table on this path.
func (s *paymentService) RecordPayment(ctx context.Context, businessID, userID uuid.UUID, input *RecordPaymentInput) (*models.Payment, *models.Document, error) {
	if err := common.ValidatePositiveAmount(input.Amount, "amount"); err != nil {
		return nil, nil, err
	}
	if !models.ValidPaymentMethod(input.Method) {
		return nil, nil, common.NewValidationError("method", "method must be one of: cash, bank_transfer, upi, other")
	}
	if err := common.ValidateOptionalString(input.Reference, "reference", 120); err != nil {
		return nil, nil, err
	}
	if err := common.ValidateOptionalString(input.Note, "note", 500); err != nil {
		return nil, nil, err
	}

	invoice, err := s.documentRepo.GetByID(ctx, businessID, input.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice.Kind != models.DocumentKindInvoice {
		return nil, nil, common.ErrNotFound
	}

	// Overpayment is rejected unless the caller is settling the invoice.
	if !input.SettleAsFull && input.Amount.GreaterThan(invoice.Outstanding()) {
		return nil, nil, common.NewValidationError("amount", "amount exceeds the outstanding balance")
	}

	payment := &models.Payment{
		ID:          uuid.New(),
		BusinessID:  businessID,
		InvoiceID:   input.InvoiceID,
		UserID:      userID,
		Amount:      input.Amount,
		Method:      input.Method,
		Reference:   input.Reference,
		Note:        input.Note,
		SettledFull: input.SettleAsFull,
		PaidAt:      time.Now(),
	}

	updated, err := s.paymentRepo.CreatePaymentAndUpdateInvoice(ctx, payment)
	if err != nil {
		return nil, nil, err
	}
	return payment, updated, nil
}

func (s *paymentService) ListPayments(ctx context.Context, businessID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	// Ownership check first so a foreign invoice id reads as not found.
	invoice, err := s.documentRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Kind != models.DocumentKindInvoice {
		return nil, common.ErrNotFound
	}
	return s.paymentRepo.ListByInvoice(ctx, businessID, invoiceID)
}
