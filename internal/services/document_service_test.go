package services

import (
	"context"
	"testing"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock repositories
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateWithItems(ctx context.Context, doc *models.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetItems(ctx context.Context, businessID, documentID uuid.UUID) ([]*models.LineItem, error) {
	args := m.Called(ctx, businessID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LineItem), args.Error(1)
}

func (m *MockDocumentRepository) GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]*models.Document, error) {
	args := m.Called(ctx, businessID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, limit, offset int) ([]*models.Document, error) {
	args := m.Called(ctx, businessID, kind, limit, offset)
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListOutstanding(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	args := m.Called(ctx, businessID, limit, offset)
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ReplaceItemsAndTotal(ctx context.Context, businessID, documentID uuid.UUID, items []*models.LineItem, total decimal.Decimal) error {
	args := m.Called(ctx, businessID, documentID, items, total)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, businessID, id uuid.UUID, status models.DocumentStatus) error {
	args := m.Called(ctx, businessID, id, status)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) NextNumber(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, issueDate time.Time) (string, error) {
	args := m.Called(ctx, businessID, kind, issueDate)
	return args.String(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, businessID, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) SearchNames(ctx context.Context, businessID uuid.UUID, prefix string, limit int) ([]string, error) {
	args := m.Called(ctx, businessID, prefix, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int) error {
	args := m.Called(ctx, businessID, productID, delta)
	return args.Error(0)
}

func (m *MockProductRepository) ListLowStock(ctx context.Context, businessID uuid.UUID) ([]*models.Product, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) DistinctBusinessIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *MockClientRepository) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, businessID, limit, offset)
	return args.Get(0).([]*models.Client), args.Error(1)
}

type DocumentServiceTestSuite struct {
	suite.Suite
	documentRepo *MockDocumentRepository
	productRepo  *MockProductRepository
	clientRepo   *MockClientRepository
	service      DocumentService
	businessID   uuid.UUID
	ctx          context.Context
}

func (s *DocumentServiceTestSuite) SetupTest() {
	s.documentRepo = new(MockDocumentRepository)
	s.productRepo = new(MockProductRepository)
	s.clientRepo = new(MockClientRepository)
	s.service = NewDocumentService(s.documentRepo, s.productRepo, s.clientRepo)
	s.businessID = uuid.New()
	s.ctx = context.Background()
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (s *DocumentServiceTestSuite) product(name, price, taxPercent string) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		BusinessID: s.businessID,
		Name:       name,
		UnitPrice:  dec(price),
		TaxPercent: dec(taxPercent),
	}
}

func (s *DocumentServiceTestSuite) TestBuildDocument_TotalsFromItemsAndTax() {
	seeds := s.product("Seeds", "100.00", "18")
	tools := s.product("Tools", "49.99", "0")

	s.productRepo.On("GetByID", s.ctx, s.businessID, seeds.ID).Return(seeds, nil)
	s.productRepo.On("GetByID", s.ctx, s.businessID, tools.ID).Return(tools, nil)
	s.documentRepo.On("NextNumber", s.ctx, s.businessID, models.DocumentKindEstimate, mock.Anything).Return("EST-2026-08-0001", nil)
	s.documentRepo.On("CreateWithItems", s.ctx, mock.Anything).Return(nil)

	doc, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKindEstimate,
		ClientName: "Acme Traders",
		Items: []LineItemInput{
			{ProductID: seeds.ID, Quantity: 2},
			{ProductID: tools.ID, Quantity: 3},
		},
	})

	s.NoError(err)
	s.Equal("EST-2026-08-0001", doc.Number)
	s.Equal(models.StatusPending, doc.Status)
	s.Len(doc.Items, 2)

	// 2 x 100.00 = 200.00 subtotal, 36.00 tax; 3 x 49.99 = 149.97, no tax.
	s.True(doc.Items[0].Subtotal.Equal(dec("200.00")))
	s.True(doc.Items[0].TaxAmount.Equal(dec("36.00")))
	s.True(doc.Items[1].Subtotal.Equal(dec("149.97")))
	s.True(doc.Items[1].TaxAmount.Equal(dec("0.00")))
	s.True(doc.Total.Equal(dec("385.97")))
	s.True(doc.AmountPaid.IsZero())
}

func (s *DocumentServiceTestSuite) TestBuildDocument_InvoiceDecrementsStock() {
	seeds := s.product("Seeds", "50.00", "0")

	s.productRepo.On("GetByID", s.ctx, s.businessID, seeds.ID).Return(seeds, nil)
	s.documentRepo.On("NextNumber", s.ctx, s.businessID, models.DocumentKindInvoice, mock.Anything).Return("INV-2026-08-0007", nil)
	s.documentRepo.On("CreateWithItems", s.ctx, mock.Anything).Return(nil)
	s.productRepo.On("AdjustStock", s.ctx, s.businessID, seeds.ID, -4).Return(nil)

	doc, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKindInvoice,
		ClientName: "Acme Traders",
		Items:      []LineItemInput{{ProductID: seeds.ID, Quantity: 4}},
	})

	s.NoError(err)
	s.Equal("INV-2026-08-0007", doc.Number)
	s.productRepo.AssertCalled(s.T(), "AdjustStock", s.ctx, s.businessID, seeds.ID, -4)
}

func (s *DocumentServiceTestSuite) TestBuildDocument_PriceOverride() {
	seeds := s.product("Seeds", "100.00", "10")
	override := dec("80.00")

	s.productRepo.On("GetByID", s.ctx, s.businessID, seeds.ID).Return(seeds, nil)
	s.documentRepo.On("NextNumber", s.ctx, s.businessID, models.DocumentKindEstimate, mock.Anything).Return("EST-2026-08-0002", nil)
	s.documentRepo.On("CreateWithItems", s.ctx, mock.Anything).Return(nil)

	doc, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKindEstimate,
		ClientName: "Acme Traders",
		Items:      []LineItemInput{{ProductID: seeds.ID, Quantity: 1, UnitPrice: &override}},
	})

	s.NoError(err)
	s.True(doc.Items[0].UnitPrice.Equal(dec("80.00")))
	s.True(doc.Total.Equal(dec("88.00")))
}

func (s *DocumentServiceTestSuite) TestBuildDocument_SnapshotsStoredClient() {
	seeds := s.product("Seeds", "10.00", "0")
	email := "billing@acme.example"
	client := &models.Client{
		ID:         uuid.New(),
		BusinessID: s.businessID,
		Name:       "Acme Traders",
		Email:      &email,
	}

	s.clientRepo.On("GetByID", s.ctx, s.businessID, client.ID).Return(client, nil)
	s.productRepo.On("GetByID", s.ctx, s.businessID, seeds.ID).Return(seeds, nil)
	s.documentRepo.On("NextNumber", s.ctx, s.businessID, models.DocumentKindEstimate, mock.Anything).Return("EST-2026-08-0003", nil)
	s.documentRepo.On("CreateWithItems", s.ctx, mock.Anything).Return(nil)

	doc, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:     models.DocumentKindEstimate,
		ClientID: &client.ID,
		Items:    []LineItemInput{{ProductID: seeds.ID, Quantity: 1}},
	})

	s.NoError(err)
	s.Equal("Acme Traders", doc.ClientName)
	s.Equal(&email, doc.ClientEmail)
}

func (s *DocumentServiceTestSuite) TestBuildDocument_RejectsEmptyItems() {
	_, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKindInvoice,
		ClientName: "Acme Traders",
	})
	s.True(common.IsValidation(err))
}

func (s *DocumentServiceTestSuite) TestBuildDocument_RejectsZeroQuantity() {
	_, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKindInvoice,
		ClientName: "Acme Traders",
		Items:      []LineItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})
	s.True(common.IsValidation(err))
}

func (s *DocumentServiceTestSuite) TestBuildDocument_RejectsUnknownKind() {
	_, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKind("receipt"),
		ClientName: "Acme Traders",
		Items:      []LineItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	s.True(common.IsValidation(err))
}

func (s *DocumentServiceTestSuite) TestBuildDocument_UnknownProduct() {
	missing := uuid.New()
	s.productRepo.On("GetByID", s.ctx, s.businessID, missing).Return(nil, common.ErrNotFound)

	_, err := s.service.BuildDocument(s.ctx, s.businessID, &DocumentInput{
		Kind:       models.DocumentKindInvoice,
		ClientName: "Acme Traders",
		Items:      []LineItemInput{{ProductID: missing, Quantity: 1}},
	})
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *DocumentServiceTestSuite) TestReviseDocument_RecomputesTotal() {
	seeds := s.product("Seeds", "100.00", "18")
	documentID := uuid.New()
	existing := &models.Document{
		ID:         documentID,
		BusinessID: s.businessID,
		Kind:       models.DocumentKindInvoice,
		Number:     "INV-2026-08-0001",
		Total:      dec("500.00"),
		AmountPaid: decimal.Zero,
		Status:     models.StatusPending,
	}

	s.documentRepo.On("GetByID", s.ctx, s.businessID, documentID).Return(existing, nil)
	s.productRepo.On("GetByID", s.ctx, s.businessID, seeds.ID).Return(seeds, nil)
	s.documentRepo.On("ReplaceItemsAndTotal", s.ctx, s.businessID, documentID, mock.Anything, mock.Anything).Return(nil)

	items := []LineItemInput{{ProductID: seeds.ID, Quantity: 1}}

	first, err := s.service.ReviseDocument(s.ctx, s.businessID, documentID, items)
	s.NoError(err)
	second, err := s.service.ReviseDocument(s.ctx, s.businessID, documentID, items)
	s.NoError(err)

	// Same inputs always produce the same total.
	s.True(first.Total.Equal(dec("118.00")))
	s.True(second.Total.Equal(first.Total))
}

func (s *DocumentServiceTestSuite) TestUpdateInvoiceStatus_RejectsLedgerOwnedStatus() {
	err := s.service.UpdateInvoiceStatus(s.ctx, s.businessID, uuid.New(), models.StatusPaid)
	s.True(common.IsValidation(err))
	s.documentRepo.AssertNotCalled(s.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DocumentServiceTestSuite) TestUpdateInvoiceStatus_RejectsEstimate() {
	estimateID := uuid.New()
	estimate := &models.Document{
		ID:         estimateID,
		BusinessID: s.businessID,
		Kind:       models.DocumentKindEstimate,
	}
	s.documentRepo.On("GetByID", s.ctx, s.businessID, estimateID).Return(estimate, nil)

	err := s.service.UpdateInvoiceStatus(s.ctx, s.businessID, estimateID, models.StatusCancelled)
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *DocumentServiceTestSuite) TestUpdateInvoiceStatus_Manual() {
	invoiceID := uuid.New()
	invoice := &models.Document{
		ID:         invoiceID,
		BusinessID: s.businessID,
		Kind:       models.DocumentKindInvoice,
		Status:     models.StatusPending,
	}
	s.documentRepo.On("GetByID", s.ctx, s.businessID, invoiceID).Return(invoice, nil)
	s.documentRepo.On("UpdateStatus", s.ctx, s.businessID, invoiceID, models.StatusOverdue).Return(nil)

	err := s.service.UpdateInvoiceStatus(s.ctx, s.businessID, invoiceID, models.StatusOverdue)
	s.NoError(err)
}

func (s *DocumentServiceTestSuite) TestGetDocument_LoadsItems() {
	documentID := uuid.New()
	doc := &models.Document{ID: documentID, BusinessID: s.businessID, Kind: models.DocumentKindInvoice}
	items := []*models.LineItem{{ID: uuid.New(), DocumentID: documentID}}

	s.documentRepo.On("GetByID", s.ctx, s.businessID, documentID).Return(doc, nil)
	s.documentRepo.On("GetItems", s.ctx, s.businessID, documentID).Return(items, nil)

	got, err := s.service.GetDocument(s.ctx, s.businessID, documentID)
	s.NoError(err)
	s.Len(got.Items, 1)
}
