package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/repositories"

	"github.com/google/uuid"
)

const receiptURLExpiry = 15 * time.Minute

type ExpenseService interface {
	CreateExpense(ctx context.Context, businessID uuid.UUID, expense *models.Expense) error
	GetExpense(ctx context.Context, businessID, expenseID uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, businessID uuid.UUID, expense *models.Expense) error
	DeleteExpense(ctx context.Context, businessID, expenseID uuid.UUID) error
	ListExpenses(ctx context.Context, businessID uuid.UUID, from, to *time.Time, limit, offset int) ([]*models.Expense, error)
	AttachReceipt(ctx context.Context, businessID, expenseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) error
	ReceiptURL(ctx context.Context, businessID, expenseID uuid.UUID) (string, error)
}

type expenseService struct {
	expenseRepo repositories.ExpenseRepository
	receipts    ReceiptStorage
}

func NewExpenseService(expenseRepo repositories.ExpenseRepository, receipts ReceiptStorage) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		receipts:    receipts,
	}
}

func validateExpense(expense *models.Expense) error {
	if err := common.ValidateRequiredString(expense.Category, "category"); err != nil {
		return err
	}
	if err := common.ValidatePositiveAmount(expense.Amount, "amount"); err != nil {
		return err
	}
	return common.ValidateOptionalString(expense.Note, "note", 500)
}

func (s *expenseService) CreateExpense(ctx context.Context, businessID uuid.UUID, expense *models.Expense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if expense.SpentAt.IsZero() {
		expense.SpentAt = time.Now()
	}
	expense.BusinessID = businessID
	return s.expenseRepo.Create(ctx, expense)
}

func (s *expenseService) GetExpense(ctx context.Context, businessID, expenseID uuid.UUID) (*models.Expense, error) {
	return s.expenseRepo.GetByID(ctx, businessID, expenseID)
}

func (s *expenseService) UpdateExpense(ctx context.Context, businessID uuid.UUID, expense *models.Expense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}
	expense.BusinessID = businessID
	return s.expenseRepo.Update(ctx, expense)
}

func (s *expenseService) DeleteExpense(ctx context.Context, businessID, expenseID uuid.UUID) error {
	expense, err := s.expenseRepo.GetByID(ctx, businessID, expenseID)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, businessID, expenseID); err != nil {
		return err
	}
	if expense.ReceiptObject != nil {
		if err := s.receipts.DeleteReceipt(ctx, *expense.ReceiptObject); err != nil {
			log.Printf("Failed to delete receipt %s: %v", *expense.ReceiptObject, err)
		}
	}
	return nil
}

func (s *expenseService) ListExpenses(ctx context.Context, businessID uuid.UUID, from, to *time.Time, limit, offset int) ([]*models.Expense, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.expenseRepo.List(ctx, businessID, from, to, limit, offset)
}

// AttachReceipt uploads the file to object storage, then points the expense
// row at the stored object.
func (s *expenseService) AttachReceipt(ctx context.Context, businessID, expenseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) error {
	if _, err := s.expenseRepo.GetByID(ctx, businessID, expenseID); err != nil {
		return err
	}

	objectName := fmt.Sprintf("%s/%s/%s", businessID, expenseID, filename)
	if err := s.receipts.UploadReceipt(ctx, objectName, reader, size, contentType); err != nil {
		return fmt.Errorf("upload receipt: %w", err)
	}
	return s.expenseRepo.SetReceiptObject(ctx, businessID, expenseID, objectName)
}

func (s *expenseService) ReceiptURL(ctx context.Context, businessID, expenseID uuid.UUID) (string, error) {
	expense, err := s.expenseRepo.GetByID(ctx, businessID, expenseID)
	if err != nil {
		return "", err
	}
	if expense.ReceiptObject == nil {
		return "", common.ErrNotFound
	}
	return s.receipts.ReceiptURL(*expense.ReceiptObject, receiptURLExpiry)
}
