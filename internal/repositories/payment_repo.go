package repositories

import (
	"context"
	"errors"
	"fmt"

	"billmart/internal/common"
	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository interface {
	CreatePaymentAndUpdateInvoice(ctx context.Context, payment *models.Payment) (*models.Document, error)
	ListByInvoice(ctx context.Context, businessID, invoiceID uuid.UUID) ([]*models.Payment, error)
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepo(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, business_id, invoice_id, user_id, amount, method, reference, note, settled_full, paid_at, created_at`

// CreatePaymentAndUpdateInvoice records a payment and folds it into the
// invoice's running balance in a single transaction. The invoice row is
// locked for the duration, so two concurrent payments serialize and neither
// increment is lost. This is the only write path for amount_paid and for the
// paid/partially_paid statuses.
func (r *paymentRepo) CreatePaymentAndUpdateInvoice(ctx context.Context, payment *models.Payment) (*models.Document, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin record payment: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE business_id = $1 AND id = $2 AND kind = 'invoice'
		FOR UPDATE
	`
	doc, err := scanDocument(tx.QueryRow(ctx, lockQuery, payment.BusinessID, payment.InvoiceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock invoice: %w", err)
	}

	newAmountPaid := doc.AmountPaid.Add(payment.Amount)
	newStatus := models.DeriveStatus(doc.Total, newAmountPaid, payment.SettledFull, doc.Status)

	insertQuery := `
		INSERT INTO payments (id, business_id, invoice_id, user_id, amount, method, reference, note, settled_full, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	_, err = tx.Exec(ctx, insertQuery, payment.ID, payment.BusinessID, payment.InvoiceID, payment.UserID, payment.Amount, payment.Method, payment.Reference, payment.Note, payment.SettledFull, payment.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	updateQuery := `
		UPDATE documents SET amount_paid = $1, status = $2, updated_at = NOW()
		WHERE business_id = $3 AND id = $4
	`
	_, err = tx.Exec(ctx, updateQuery, newAmountPaid, newStatus, payment.BusinessID, payment.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("update invoice balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit record payment: %w", err)
	}

	doc.AmountPaid = newAmountPaid
	doc.Status = newStatus
	return doc, nil
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, businessID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE business_id = $1 AND invoice_id = $2 ORDER BY paid_at ASC, created_at ASC`
	rows, err := r.db.Query(ctx, query, businessID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(&payment.ID, &payment.BusinessID, &payment.InvoiceID, &payment.UserID, &payment.Amount, &payment.Method, &payment.Reference, &payment.Note, &payment.SettledFull, &payment.PaidAt, &payment.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
