package repositories

import (
	"context"
	"errors"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, from, to *time.Time, limit, offset int) ([]*models.Expense, error)
	SetReceiptObject(ctx context.Context, businessID, id uuid.UUID, objectName string) error
}

type expenseRepo struct {
	db DB
}

func NewExpenseRepo(db DB) ExpenseRepository {
	return &expenseRepo{db: db}
}

const expenseColumns = `id, business_id, category, amount, note, spent_at, receipt_object, created_at, updated_at`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(&expense.ID, &expense.BusinessID, &expense.Category, &expense.Amount, &expense.Note, &expense.SpentAt, &expense.ReceiptObject, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *expenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, business_id, category, amount, note, spent_at, receipt_object, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, expense.ID, expense.BusinessID, expense.Category, expense.Amount, expense.Note, expense.SpentAt, expense.ReceiptObject)
	return err
}

func (r *expenseRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE business_id = $1 AND id = $2`
	expense, err := scanExpense(r.db.QueryRow(ctx, query, businessID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return expense, err
}

func (r *expenseRepo) Update(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET category = $1, amount = $2, note = $3, spent_at = $4, updated_at = NOW()
		WHERE business_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, expense.Category, expense.Amount, expense.Note, expense.SpentAt, expense.BusinessID, expense.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *expenseRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *expenseRepo) List(ctx context.Context, businessID uuid.UUID, from, to *time.Time, limit, offset int) ([]*models.Expense, error) {
	query := `
		SELECT ` + expenseColumns + ` FROM expenses
		WHERE business_id = $1
		  AND ($2::timestamptz IS NULL OR spent_at >= $2)
		  AND ($3::timestamptz IS NULL OR spent_at <= $3)
		ORDER BY spent_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, businessID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func (r *expenseRepo) SetReceiptObject(ctx context.Context, businessID, id uuid.UUID, objectName string) error {
	query := `UPDATE expenses SET receipt_object = $1, updated_at = NOW() WHERE business_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, objectName, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
