package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"billmart/internal/caching"
	"billmart/internal/repositories"

	"github.com/google/uuid"
)

// alertDedupeTTL suppresses repeat alerts for the same product between runs.
const alertDedupeTTL = 6 * time.Hour

// StockAlertService scans every business for products below their minimum
// stock level and logs an alert per offender.
type StockAlertService struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
}

type StockAlert struct {
	BusinessID   uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	CurrentStock int
	MinLevel     int
}

func NewStockAlertService(productRepo repositories.ProductRepository, cacheSvc caching.CacheService) *StockAlertService {
	return &StockAlertService{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
	}
}

// CheckLowStock returns the low-stock alerts for one business, skipping
// products that already alerted within the dedupe window.
func (a *StockAlertService) CheckLowStock(ctx context.Context, businessID uuid.UUID) ([]StockAlert, error) {
	products, err := a.productRepo.ListLowStock(ctx, businessID)
	if err != nil {
		log.Printf("Failed to list low-stock products for business %s: %v", businessID.String(), err)
		return nil, err
	}

	var alerts []StockAlert
	for _, product := range products {
		dedupeKey := fmt.Sprintf("billmart:stockalert:%s:%s", businessID.String(), product.ID.String())
		if seen, err := a.cacheSvc.GetString(ctx, dedupeKey); err == nil && seen != "" {
			continue
		}

		alerts = append(alerts, StockAlert{
			BusinessID:   businessID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: product.StockQuantity,
			MinLevel:     product.MinStockLevel,
		})

		if err := a.cacheSvc.SetString(ctx, dedupeKey, "1", alertDedupeTTL); err != nil {
			log.Printf("Failed to mark alert for product %s: %v", product.ID.String(), err)
		}
	}
	return alerts, nil
}

func (a *StockAlertService) LogLowStockAlerts(alerts []StockAlert) {
	if len(alerts) == 0 {
		return
	}

	log.Printf("Low stock alerts for business %s:", alerts[0].BusinessID.String())
	for _, alert := range alerts {
		log.Printf("- Product '%s' has %d units (minimum: %d)",
			alert.ProductName,
			alert.CurrentStock,
			alert.MinLevel)
	}
}

// ScheduledLowStockCheck runs the scan across every business that owns
// products.
func (a *StockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	businessIDs, err := a.productRepo.DistinctBusinessIDs(ctx)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}

	for _, businessID := range businessIDs {
		alerts, err := a.CheckLowStock(ctx, businessID)
		if err != nil {
			continue
		}
		a.LogLowStockAlerts(alerts)
	}

	log.Println("Scheduled low stock check completed")
	return nil
}
