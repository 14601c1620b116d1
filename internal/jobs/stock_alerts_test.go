package jobs

import (
	"context"
	"testing"
	"time"

	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, businessID, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) SearchNames(ctx context.Context, businessID uuid.UUID, prefix string, limit int) ([]string, error) {
	args := m.Called(ctx, businessID, prefix, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockProductRepo) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int) error {
	args := m.Called(ctx, businessID, productID, delta)
	return args.Error(0)
}

func (m *mockProductRepo) ListLowStock(ctx context.Context, businessID uuid.UUID) ([]*models.Product, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) DistinctBusinessIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, businessID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockCache) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *mockCache) DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error {
	args := m.Called(ctx, businessID, productID)
	return args.Error(0)
}

func (m *mockCache) GetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string) ([]string, error) {
	args := m.Called(ctx, businessID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCache) SetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string, names []string, ttl time.Duration) error {
	args := m.Called(ctx, businessID, prefix, names, ttl)
	return args.Error(0)
}

func (m *mockCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func TestCheckLowStock(t *testing.T) {
	ctx := context.Background()
	businessID := uuid.New()
	productRepo := new(mockProductRepo)
	cache := new(mockCache)
	svc := NewStockAlertService(productRepo, cache)

	low := &models.Product{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Name:          "Seeds",
		StockQuantity: 3,
		MinStockLevel: 10,
	}

	productRepo.On("ListLowStock", ctx, businessID).Return([]*models.Product{low}, nil)
	cache.On("GetString", ctx, mock.Anything).Return("", nil)
	cache.On("SetString", ctx, mock.Anything, "1", alertDedupeTTL).Return(nil)

	alerts, err := svc.CheckLowStock(ctx, businessID)

	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, "Seeds", alerts[0].ProductName)
	assert.Equal(t, 3, alerts[0].CurrentStock)
	assert.Equal(t, 10, alerts[0].MinLevel)
}

func TestCheckLowStock_DedupesRecentAlerts(t *testing.T) {
	ctx := context.Background()
	businessID := uuid.New()
	productRepo := new(mockProductRepo)
	cache := new(mockCache)
	svc := NewStockAlertService(productRepo, cache)

	low := &models.Product{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Name:          "Seeds",
		StockQuantity: 3,
		MinStockLevel: 10,
	}

	productRepo.On("ListLowStock", ctx, businessID).Return([]*models.Product{low}, nil)
	cache.On("GetString", ctx, mock.Anything).Return("1", nil)

	alerts, err := svc.CheckLowStock(ctx, businessID)

	assert.NoError(t, err)
	assert.Empty(t, alerts)
	cache.AssertNotCalled(t, "SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduledLowStockCheck(t *testing.T) {
	ctx := context.Background()
	bizA := uuid.New()
	bizB := uuid.New()
	productRepo := new(mockProductRepo)
	cache := new(mockCache)
	svc := NewStockAlertService(productRepo, cache)

	productRepo.On("DistinctBusinessIDs", ctx).Return([]uuid.UUID{bizA, bizB}, nil)
	productRepo.On("ListLowStock", ctx, bizA).Return([]*models.Product{}, nil)
	productRepo.On("ListLowStock", ctx, bizB).Return([]*models.Product{}, nil)

	err := svc.ScheduledLowStockCheck(ctx)

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
}
