package services

import (
	"context"
	"log"
	"strings"
	"time"

	"billmart/internal/caching"
	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/repositories"

	"github.com/google/uuid"
)

const (
	productCacheTTL    = 5 * time.Minute
	suggestionCacheTTL = 2 * time.Minute
	suggestionLimit    = 10
)

type ProductService interface {
	CreateProduct(ctx context.Context, businessID uuid.UUID, product *models.Product) error
	GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, businessID uuid.UUID, product *models.Product) error
	DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error
	ListProducts(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Product, error)
	SuggestNames(ctx context.Context, businessID uuid.UUID, prefix string) ([]string, error)
	AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int) error
	ListLowStock(ctx context.Context, businessID uuid.UUID) ([]*models.Product, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
}

func NewProductService(productRepo repositories.ProductRepository, cacheSvc caching.CacheService) ProductService {
	return &productService{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
	}
}

func validateProduct(product *models.Product) error {
	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidatePositiveAmount(product.UnitPrice, "unit_price"); err != nil {
		return err
	}
	if err := common.ValidateTaxPercent(product.TaxPercent, "tax_percent"); err != nil {
		return err
	}
	if product.BuyPrice.Sign() < 0 {
		return common.NewValidationError("buy_price", "buy price cannot be negative")
	}
	if product.MinStockLevel < 0 {
		return common.NewValidationError("min_stock_level", "minimum stock level cannot be negative")
	}
	if err := common.ValidateOptionalString(product.UnitOfMeasure, "unit_of_measure", 20); err != nil {
		return err
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, businessID uuid.UUID, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.BusinessID = businessID
	return s.productRepo.Create(ctx, product)
}

// GetProduct is a read-through cache: Redis first, repository on miss.
func (s *productService) GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	cached, err := s.cacheSvc.GetProduct(ctx, businessID, productID)
	if err != nil {
		log.Printf("Product cache read failed for %s: %v", productID, err)
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetProduct(ctx, product, productCacheTTL); err != nil {
		log.Printf("Product cache write failed for %s: %v", productID, err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, businessID uuid.UUID, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	product.BusinessID = businessID
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteProduct(ctx, businessID, product.ID); err != nil {
		log.Printf("Product cache invalidation failed for %s: %v", product.ID, err)
	}
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, businessID, productID); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteProduct(ctx, businessID, productID); err != nil {
		log.Printf("Product cache invalidation failed for %s: %v", productID, err)
	}
	return nil
}

func (s *productService) ListProducts(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.productRepo.List(ctx, businessID, limit, offset)
}

// SuggestNames serves product-name prefix suggestions from a TTL-bounded
// Redis entry per (business, prefix).
func (s *productService) SuggestNames(ctx context.Context, businessID uuid.UUID, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, common.NewValidationError("q", "query prefix is required")
	}

	cached, err := s.cacheSvc.GetSuggestions(ctx, businessID, prefix)
	if err != nil {
		log.Printf("Suggestion cache read failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	names, err := s.productRepo.SearchNames(ctx, businessID, prefix, suggestionLimit)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetSuggestions(ctx, businessID, prefix, names, suggestionCacheTTL); err != nil {
		log.Printf("Suggestion cache write failed: %v", err)
	}
	return names, nil
}

func (s *productService) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return common.NewValidationError("delta", "stock adjustment cannot be zero")
	}
	if err := s.productRepo.AdjustStock(ctx, businessID, productID, delta); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteProduct(ctx, businessID, productID); err != nil {
		log.Printf("Product cache invalidation failed for %s: %v", productID, err)
	}
	return nil
}

func (s *productService) ListLowStock(ctx context.Context, businessID uuid.UUID) ([]*models.Product, error) {
	return s.productRepo.ListLowStock(ctx, businessID)
}
