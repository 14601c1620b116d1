package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, businessID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error {
	args := m.Called(ctx, businessID, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string) ([]string, error) {
	args := m.Called(ctx, businessID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCacheService) SetSuggestions(ctx context.Context, businessID uuid.UUID, prefix string, names []string, ttl time.Duration) error {
	args := m.Called(ctx, businessID, prefix, names, ttl)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type ProductServiceTestSuite struct {
	suite.Suite
	productRepo *MockProductRepository
	cacheSvc    *MockCacheService
	service     ProductService
	businessID  uuid.UUID
	ctx         context.Context
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.productRepo = new(MockProductRepository)
	s.cacheSvc = new(MockCacheService)
	s.service = NewProductService(s.productRepo, s.cacheSvc)
	s.businessID = uuid.New()
	s.ctx = context.Background()
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

func (s *ProductServiceTestSuite) validProduct() *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		BusinessID: s.businessID,
		Name:       "Seeds",
		UnitPrice:  dec("100.00"),
		TaxPercent: dec("18"),
	}
}

func (s *ProductServiceTestSuite) TestGetProduct_CacheHit() {
	product := s.validProduct()
	s.cacheSvc.On("GetProduct", s.ctx, s.businessID, product.ID).Return(product, nil)

	got, err := s.service.GetProduct(s.ctx, s.businessID, product.ID)

	s.NoError(err)
	s.Equal(product.ID, got.ID)
	s.productRepo.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ProductServiceTestSuite) TestGetProduct_CacheMissFallsThrough() {
	product := s.validProduct()
	s.cacheSvc.On("GetProduct", s.ctx, s.businessID, product.ID).Return(nil, nil)
	s.productRepo.On("GetByID", s.ctx, s.businessID, product.ID).Return(product, nil)
	s.cacheSvc.On("SetProduct", s.ctx, product, mock.Anything).Return(nil)

	got, err := s.service.GetProduct(s.ctx, s.businessID, product.ID)

	s.NoError(err)
	s.Equal(product.ID, got.ID)
	s.cacheSvc.AssertCalled(s.T(), "SetProduct", s.ctx, product, mock.Anything)
}

func (s *ProductServiceTestSuite) TestGetProduct_CacheFailureIsNotFatal() {
	product := s.validProduct()
	s.cacheSvc.On("GetProduct", s.ctx, s.businessID, product.ID).Return(nil, errors.New("redis down"))
	s.productRepo.On("GetByID", s.ctx, s.businessID, product.ID).Return(product, nil)
	s.cacheSvc.On("SetProduct", s.ctx, product, mock.Anything).Return(errors.New("redis down"))

	got, err := s.service.GetProduct(s.ctx, s.businessID, product.ID)

	s.NoError(err)
	s.Equal(product.ID, got.ID)
}

func (s *ProductServiceTestSuite) TestCreateProduct_Validation() {
	err := s.service.CreateProduct(s.ctx, s.businessID, &models.Product{
		Name:      "",
		UnitPrice: dec("10.00"),
	})
	s.True(common.IsValidation(err))

	err = s.service.CreateProduct(s.ctx, s.businessID, &models.Product{
		Name:      "Seeds",
		UnitPrice: dec("0"),
	})
	s.True(common.IsValidation(err))

	err = s.service.CreateProduct(s.ctx, s.businessID, &models.Product{
		Name:       "Seeds",
		UnitPrice:  dec("10.00"),
		TaxPercent: dec("120"),
	})
	s.True(common.IsValidation(err))
}

func (s *ProductServiceTestSuite) TestUpdateProduct_InvalidatesCache() {
	product := s.validProduct()
	s.productRepo.On("Update", s.ctx, product).Return(nil)
	s.cacheSvc.On("DeleteProduct", s.ctx, s.businessID, product.ID).Return(nil)

	err := s.service.UpdateProduct(s.ctx, s.businessID, product)

	s.NoError(err)
	s.cacheSvc.AssertCalled(s.T(), "DeleteProduct", s.ctx, s.businessID, product.ID)
}

func (s *ProductServiceTestSuite) TestAdjustStock_RejectsZeroDelta() {
	err := s.service.AdjustStock(s.ctx, s.businessID, uuid.New(), 0)
	s.True(common.IsValidation(err))
	s.productRepo.AssertNotCalled(s.T(), "AdjustStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ProductServiceTestSuite) TestAdjustStock_InvalidatesCache() {
	productID := uuid.New()
	s.productRepo.On("AdjustStock", s.ctx, s.businessID, productID, -5).Return(nil)
	s.cacheSvc.On("DeleteProduct", s.ctx, s.businessID, productID).Return(nil)

	err := s.service.AdjustStock(s.ctx, s.businessID, productID, -5)
	s.NoError(err)
}

func (s *ProductServiceTestSuite) TestSuggestNames_CacheMiss() {
	names := []string{"Seeds", "Seedlings"}
	s.cacheSvc.On("GetSuggestions", s.ctx, s.businessID, "see").Return(nil, nil)
	s.productRepo.On("SearchNames", s.ctx, s.businessID, "see", suggestionLimit).Return(names, nil)
	s.cacheSvc.On("SetSuggestions", s.ctx, s.businessID, "see", names, mock.Anything).Return(nil)

	got, err := s.service.SuggestNames(s.ctx, s.businessID, "  see ")

	s.NoError(err)
	s.Equal(names, got)
}

func (s *ProductServiceTestSuite) TestSuggestNames_RejectsEmptyPrefix() {
	_, err := s.service.SuggestNames(s.ctx, s.businessID, "   ")
	s.True(common.IsValidation(err))
}
