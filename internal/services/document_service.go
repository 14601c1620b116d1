package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput is one requested document line. UnitPrice overrides the
// product's current price when set; otherwise the price is captured from the
// product at build time.
type LineItemInput struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// DocumentInput describes a document to build. Client identity is snapshotted
// into the document: either copied from a stored client (ClientID) or given
// inline.
type DocumentInput struct {
	Kind          models.DocumentKind
	ClientID      *uuid.UUID
	ClientName    string
	ClientEmail   *string
	ClientAddress *string
	IssueDate     time.Time
	DueDate       time.Time
	Items         []LineItemInput
}

type DocumentService interface {
	BuildDocument(ctx context.Context, businessID uuid.UUID, input *DocumentInput) (*models.Document, error)
	ReviseDocument(ctx context.Context, businessID, documentID uuid.UUID, items []LineItemInput) (*models.Document, error)
	GetDocument(ctx context.Context, businessID, documentID uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, limit, offset int) ([]*models.Document, error)
	ListOutstandingInvoices(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Document, error)
	UpdateInvoiceStatus(ctx context.Context, businessID, invoiceID uuid.UUID, status models.DocumentStatus) error
	DeleteDocument(ctx context.Context, businessID, documentID uuid.UUID) error
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	productRepo  repositories.ProductRepository
	clientRepo   repositories.ClientRepository
}

func NewDocumentService(documentRepo repositories.DocumentRepository, productRepo repositories.ProductRepository, clientRepo repositories.ClientRepository) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		productRepo:  productRepo,
		clientRepo:   clientRepo,
	}
}

var oneHundred = decimal.NewFromInt(100)

// buildLineItems resolves every product and computes the captured line
// amounts. Returns the built items and the document total.
func (s *documentService) buildLineItems(ctx context.Context, businessID, documentID uuid.UUID, inputs []LineItemInput) ([]*models.LineItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, common.NewValidationError("items", "at least one line item is required")
	}

	items := make([]*models.LineItem, 0, len(inputs))
	total := decimal.Zero
	for i, in := range inputs {
		if in.Quantity < 1 {
			return nil, decimal.Zero, common.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}

		product, err := s.productRepo.GetByID(ctx, businessID, in.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		price := product.UnitPrice
		if in.UnitPrice != nil {
			if in.UnitPrice.Sign() < 0 {
				return nil, decimal.Zero, common.NewValidationError(fmt.Sprintf("items[%d].unit_price", i), "unit price cannot be negative")
			}
			price = *in.UnitPrice
		}

		qty := decimal.NewFromInt(int64(in.Quantity))
		subtotal := price.Mul(qty).Round(2)
		tax := subtotal.Mul(product.TaxPercent).Div(oneHundred).Round(2)
		lineTotal := subtotal.Add(tax)

		items = append(items, &models.LineItem{
			ID:          uuid.New(),
			BusinessID:  businessID,
			DocumentID:  documentID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			TaxPercent:  product.TaxPercent,
			Subtotal:    subtotal,
			TaxAmount:   tax,
			Total:       lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

// BuildDocument computes and persists a new invoice or estimate from its line
// items. The persisted total is authoritative: it is recomputed and re-stored
// on every revision, never derived lazily on read.
func (s *documentService) BuildDocument(ctx context.Context, businessID uuid.UUID, input *DocumentInput) (*models.Document, error) {
	if !models.ValidDocumentKind(input.Kind) {
		return nil, common.NewValidationError("kind", "kind must be invoice or estimate")
	}

	clientName := input.ClientName
	clientEmail := input.ClientEmail
	clientAddress := input.ClientAddress
	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, businessID, *input.ClientID)
		if err != nil {
			return nil, err
		}
		clientName = client.Name
		clientEmail = client.Email
		clientAddress = client.Address
	}
	if err := common.ValidateRequiredString(clientName, "client_name"); err != nil {
		return nil, err
	}

	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, 30)
	}

	docID := uuid.New()
	items, total, err := s.buildLineItems(ctx, businessID, docID, input.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.documentRepo.NextNumber(ctx, businessID, input.Kind, issueDate)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:            docID,
		BusinessID:    businessID,
		Kind:          input.Kind,
		Number:        number,
		ClientName:    clientName,
		ClientEmail:   clientEmail,
		ClientAddress: clientAddress,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Total:         total,
		AmountPaid:    decimal.Zero,
		Status:        models.StatusPending,
		Items:         items,
	}

	if err := s.documentRepo.CreateWithItems(ctx, doc); err != nil {
		return nil, err
	}

	// Invoiced goods leave stock. Stock is advisory, so a failed adjustment
	// logs rather than unwinding the committed document.
	if doc.Kind == models.DocumentKindInvoice {
		for _, item := range items {
			if err := s.productRepo.AdjustStock(ctx, businessID, item.ProductID, -item.Quantity); err != nil {
				log.Printf("Failed to adjust stock for product %s on invoice %s: %v", item.ProductID, doc.Number, err)
			}
		}
	}

	return doc, nil
}

// ReviseDocument replaces the whole item set and recomputes the total. The
// delete, re-insert, and total update commit as one transaction.
func (s *documentService) ReviseDocument(ctx context.Context, businessID, documentID uuid.UUID, itemInputs []LineItemInput) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, businessID, documentID)
	if err != nil {
		return nil, err
	}

	items, total, err := s.buildLineItems(ctx, businessID, documentID, itemInputs)
	if err != nil {
		return nil, err
	}

	if err := s.documentRepo.ReplaceItemsAndTotal(ctx, businessID, documentID, items, total); err != nil {
		return nil, err
	}

	doc.Items = items
	doc.Total = total
	doc.UpdatedAt = time.Now()
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, businessID, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, businessID, documentID)
	if err != nil {
		return nil, err
	}
	items, err := s.documentRepo.GetItems(ctx, businessID, documentID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, businessID uuid.UUID, kind models.DocumentKind, limit, offset int) ([]*models.Document, error) {
	if !models.ValidDocumentKind(kind) {
		return nil, common.NewValidationError("kind", "kind must be invoice or estimate")
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.documentRepo.List(ctx, businessID, kind, limit, offset)
}

func (s *documentService) ListOutstandingInvoices(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.documentRepo.ListOutstanding(ctx, businessID, limit, offset)
}

// UpdateInvoiceStatus handles the manual transitions. Only pending, overdue,
// and cancelled are settable here; paid and partially_paid belong to the
// payment ledger.
func (s *documentService) UpdateInvoiceStatus(ctx context.Context, businessID, invoiceID uuid.UUID, status models.DocumentStatus) error {
	if !models.ValidManualStatus(status) {
		return common.NewValidationError("status", "status must be one of: pending, overdue, cancelled")
	}
	doc, err := s.documentRepo.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return err
	}
	if doc.Kind != models.DocumentKindInvoice {
		return common.ErrNotFound
	}
	return s.documentRepo.UpdateStatus(ctx, businessID, invoiceID, status)
}

func (s *documentService) DeleteDocument(ctx context.Context, businessID, documentID uuid.UUID) error {
	return s.documentRepo.Delete(ctx, businessID, documentID)
}
