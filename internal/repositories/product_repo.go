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

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Product, error)
	SearchNames(ctx context.Context, businessID uuid.UUID, prefix string, limit int) ([]string, error)
	AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int) error
	ListLowStock(ctx context.Context, businessID uuid.UUID) ([]*models.Product, error)
	DistinctBusinessIDs(ctx context.Context) ([]uuid.UUID, error)
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, business_id, name, unit_price, tax_percent, unit_of_measure, stock_quantity, min_stock_level, buy_price, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.BusinessID, &product.Name, &product.UnitPrice, &product.TaxPercent, &product.UnitOfMeasure, &product.StockQuantity, &product.MinStockLevel, &product.BuyPrice, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, business_id, name, unit_price, tax_percent, unit_of_measure, stock_quantity, min_stock_level, buy_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.BusinessID, product.Name, product.UnitPrice, product.TaxPercent, product.UnitOfMeasure, product.StockQuantity, product.MinStockLevel, product.BuyPrice)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 AND id = $2`
	product, err := scanProduct(r.db.QueryRow(ctx, query, businessID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return product, err
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, unit_price = $2, tax_percent = $3, unit_of_measure = $4, stock_quantity = $5, min_stock_level = $6, buy_price = $7, updated_at = NOW()
		WHERE business_id = $8 AND id = $9
	`
	tag, err := r.db.Exec(ctx, query, product.Name, product.UnitPrice, product.TaxPercent, product.UnitOfMeasure, product.StockQuantity, product.MinStockLevel, product.BuyPrice, product.BusinessID, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) SearchNames(ctx context.Context, businessID uuid.UUID, prefix string, limit int) ([]string, error) {
	query := `
		SELECT name FROM products
		WHERE business_id = $1 AND name ILIKE $2 || '%'
		ORDER BY name ASC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, businessID, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AdjustStock applies a stock delta as an atomic in-place increment.
func (r *productRepo) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE business_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, delta, businessID, productID)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *productRepo) ListLowStock(ctx context.Context, businessID uuid.UUID) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 AND stock_quantity < min_stock_level ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) DistinctBusinessIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT business_id FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
