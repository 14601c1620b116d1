package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type DocumentRepository interface {
	CreateWithItems(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error)
	GetItems(ctx context.Context, businessID, documentID uuid.UUID) ([]*models.LineItem, error)
	GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]*models.Document, error)
	List(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, limit, offset int) ([]*models.Document, error)
	ListOutstanding(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Document, error)
	ReplaceItemsAndTotal(ctx context.Context, businessID, documentID uuid.UUID, items []*models.LineItem, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, businessID, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	NextNumber(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, issueDate time.Time) (string, error)
}

type documentRepo struct {
	db DB
}

func NewDocumentRepo(db DB) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, business_id, kind, number, client_name, client_email, client_address, issue_date, due_date, total, amount_paid, status, created_at, updated_at`

const lineItemColumns = `id, business_id, document_id, product_id, product_name, quantity, unit_price, tax_percent, subtotal, tax_amount, total, created_at`

const insertLineItemSQL = `
	INSERT INTO line_items (id, business_id, document_id, product_id, product_name, quantity, unit_price, tax_percent, subtotal, tax_amount, total, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
`

func scanDocument(row pgx.Row) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(&doc.ID, &doc.BusinessID, &doc.Kind, &doc.Number, &doc.ClientName, &doc.ClientEmail, &doc.ClientAddress, &doc.IssueDate, &doc.DueDate, &doc.Total, &doc.AmountPaid, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func scanLineItem(row pgx.Row) (*models.LineItem, error) {
	item := &models.LineItem{}
	err := row.Scan(&item.ID, &item.BusinessID, &item.DocumentID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.TaxPercent, &item.Subtotal, &item.TaxAmount, &item.Total, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateWithItems persists the document and its line items as one transaction.
func (r *documentRepo) CreateWithItems(ctx context.Context, doc *models.Document) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create document: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO documents (id, business_id, kind, number, client_name, client_email, client_address, issue_date, due_date, total, amount_paid, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query, doc.ID, doc.BusinessID, doc.Kind, doc.Number, doc.ClientName, doc.ClientEmail, doc.ClientAddress, doc.IssueDate, doc.DueDate, doc.Total, doc.AmountPaid, doc.Status)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for _, item := range doc.Items {
		_, err = tx.Exec(ctx, insertLineItemSQL, item.ID, item.BusinessID, item.DocumentID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TaxPercent, item.Subtotal, item.TaxAmount, item.Total)
		if err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *documentRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE business_id = $1 AND id = $2`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, businessID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return doc, err
}

func (r *documentRepo) GetItems(ctx context.Context, businessID, documentID uuid.UUID) ([]*models.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE business_id = $1 AND document_id = $2 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, businessID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *documentRepo) GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE business_id = $1 AND id = ANY($2)`
	rows, err := r.db.Query(ctx, query, businessID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) List(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE business_id = $1 AND kind = $2
		ORDER BY issue_date DESC, number DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, businessID, kind, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListOutstanding returns invoices that still carry a balance.
func (r *documentRepo) ListOutstanding(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE business_id = $1 AND kind = 'invoice'
		  AND status NOT IN ('paid', 'cancelled')
		  AND amount_paid < total
		ORDER BY due_date ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ReplaceItemsAndTotal swaps the entire item set and re-persists the cached
// total inside one transaction, so readers never observe an empty document
// with a stale total mid-edit.
func (r *documentRepo) ReplaceItemsAndTotal(ctx context.Context, businessID, documentID uuid.UUID, items []*models.LineItem, total decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace items: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM line_items WHERE business_id = $1 AND document_id = $2`, businessID, documentID)
	if err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, insertLineItemSQL, item.ID, item.BusinessID, item.DocumentID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TaxPercent, item.Subtotal, item.TaxAmount, item.Total)
		if err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE documents SET total = $1, updated_at = NOW() WHERE business_id = $2 AND id = $3`, total, businessID, documentID)
	if err != nil {
		return fmt.Errorf("update document total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *documentRepo) UpdateStatus(ctx context.Context, businessID, id uuid.UUID, status models.DocumentStatus) error {
	query := `UPDATE documents SET status = $1, updated_at = NOW() WHERE business_id = $2 AND id = $3 AND kind = 'invoice'`
	tag, err := r.db.Exec(ctx, query, status, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes a document and its line items. Hard delete, no audit trail.
func (r *documentRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete document: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM line_items WHERE business_id = $1 AND document_id = $2`, businessID, id)
	if err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}

	return tx.Commit(ctx)
}

// NextNumber allocates the next document number for a business. The sequence
// row is advanced with an upsert so two concurrent builds can never receive
// the same number.
func (r *documentRepo) NextNumber(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, issueDate time.Time) (string, error) {
	yearMonth := issueDate.Format("2006-01")

	query := `
		INSERT INTO document_sequences (business_id, kind, year_month, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (business_id, kind, year_month)
		DO UPDATE SET
			last_number = document_sequences.last_number + 1,
			updated_at = NOW()
		RETURNING last_number
	`

	var sequenceNum int
	if err := r.db.QueryRow(ctx, query, businessID, kind, yearMonth).Scan(&sequenceNum); err != nil {
		return "", fmt.Errorf("advance document sequence: %w", err)
	}

	prefix := "INV"
	if kind == models.DocumentKindEstimate {
		prefix = "EST"
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, yearMonth, sequenceNum), nil
}
