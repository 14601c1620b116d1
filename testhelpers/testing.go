package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=billmart_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestProduct creates a test product for testing
func SetupTestProduct(t *testing.T, db *TestDB, businessID uuid.UUID) *models.Product {
	t.Helper()

	unitMeasure := "kg"
	product := &models.Product{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Name:          "Test Product",
		UnitPrice:     decimal.RequireFromString("10.99"),
		TaxPercent:    decimal.RequireFromString("18"),
		UnitOfMeasure: &unitMeasure,
		StockQuantity: 100,
		MinStockLevel: 10,
		BuyPrice:      decimal.RequireFromString("8.50"),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	query := `
		INSERT INTO products (id, business_id, name, unit_price, tax_percent, unit_of_measure, stock_quantity, min_stock_level, buy_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		product.ID, product.BusinessID, product.Name, product.UnitPrice, product.TaxPercent,
		product.UnitOfMeasure, product.StockQuantity, product.MinStockLevel, product.BuyPrice,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return product
}

// SetupTestInvoice creates a pending invoice with no line items for testing
func SetupTestInvoice(t *testing.T, db *TestDB, businessID uuid.UUID, total string) *models.Document {
	t.Helper()

	now := time.Now()
	doc := &models.Document{
		ID:         uuid.New(),
		BusinessID: businessID,
		Kind:       models.DocumentKindInvoice,
		Number:     "INV-" + now.Format("2006-01") + "-9999",
		ClientName: "Test Client",
		IssueDate:  now,
		DueDate:    now.AddDate(0, 0, 30),
		Total:      decimal.RequireFromString(total),
		AmountPaid: decimal.Zero,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `
		INSERT INTO documents (id, business_id, kind, number, client_name, issue_date, due_date, total, amount_paid, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		doc.ID, doc.BusinessID, doc.Kind, doc.Number, doc.ClientName,
		doc.IssueDate, doc.DueDate, doc.Total, doc.AmountPaid, doc.Status,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test invoice: %v", err)
	}

	return doc
}
