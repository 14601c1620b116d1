package handlers

import (
	"net/http"
	"strconv"
	"time"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DocumentHandlers handles HTTP requests for invoices and estimates.
type DocumentHandlers struct {
	documentService services.DocumentService
}

func NewDocumentHandlers(documentService services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{documentService: documentService}
}

type lineItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type createDocumentRequest struct {
	ClientID      *string           `json:"client_id,omitempty"`
	ClientName    string            `json:"client_name,omitempty"`
	ClientEmail   *string           `json:"client_email,omitempty"`
	ClientAddress *string           `json:"client_address,omitempty"`
	IssueDate     string            `json:"issue_date,omitempty"`
	DueDate       string            `json:"due_date,omitempty"`
	Items         []lineItemRequest `json:"items"`
}

func parseLineItems(reqs []lineItemRequest) ([]services.LineItemInput, error) {
	items := make([]services.LineItemInput, 0, len(reqs))
	for i, r := range reqs {
		productID, err := common.ValidateUUID(r.ProductID, "items["+strconv.Itoa(i)+"].product_id")
		if err != nil {
			return nil, err
		}
		items = append(items, services.LineItemInput{
			ProductID: productID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
		})
	}
	return items, nil
}

func (h *DocumentHandlers) createDocument(c echo.Context, kind models.DocumentKind) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createDocumentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	input := &services.DocumentInput{
		Kind:          kind,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientAddress: req.ClientAddress,
	}

	if req.ClientID != nil {
		clientID, err := common.ValidateUUID(*req.ClientID, "client_id")
		if err != nil {
			return common.RespondError(c, err)
		}
		input.ClientID = &clientID
	}
	if req.IssueDate != "" {
		issueDate, err := common.ParseDate(req.IssueDate, "issue_date")
		if err != nil {
			return common.RespondError(c, err)
		}
		input.IssueDate = issueDate
	}
	if req.DueDate != "" {
		dueDate, err := common.ParseDate(req.DueDate, "due_date")
		if err != nil {
			return common.RespondError(c, err)
		}
		input.DueDate = dueDate
	}

	items, err := parseLineItems(req.Items)
	if err != nil {
		return common.RespondError(c, err)
	}
	input.Items = items

	doc, err := h.documentService.BuildDocument(ctx, businessID, input)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// CreateInvoice handles POST /invoices
func (h *DocumentHandlers) CreateInvoice(c echo.Context) error {
	return h.createDocument(c, models.DocumentKindInvoice)
}

// CreateEstimate handles POST /estimates
func (h *DocumentHandlers) CreateEstimate(c echo.Context) error {
	return h.createDocument(c, models.DocumentKindEstimate)
}

func (h *DocumentHandlers) listDocuments(c echo.Context, kind models.DocumentKind) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	docs, err := h.documentService.ListDocuments(ctx, businessID, kind, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// ListInvoices handles GET /invoices
func (h *DocumentHandlers) ListInvoices(c echo.Context) error {
	return h.listDocuments(c, models.DocumentKindInvoice)
}

// ListEstimates handles GET /estimates
func (h *DocumentHandlers) ListEstimates(c echo.Context) error {
	return h.listDocuments(c, models.DocumentKindEstimate)
}

// ListOutstandingInvoices handles GET /invoices/outstanding
func (h *DocumentHandlers) ListOutstandingInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	docs, err := h.documentService.ListOutstandingInvoices(ctx, businessID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// GetDocument handles GET /documents/:id
func (h *DocumentHandlers) GetDocument(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	documentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	doc, err := h.documentService.GetDocument(ctx, businessID, documentID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// ReviseDocument handles PUT /documents/:id/items
func (h *DocumentHandlers) ReviseDocument(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	documentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		Items []lineItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	items, err := parseLineItems(req.Items)
	if err != nil {
		return common.RespondError(c, err)
	}

	doc, err := h.documentService.ReviseDocument(ctx, businessID, documentID, items)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// UpdateInvoiceStatus handles PUT /invoices/:id/status
func (h *DocumentHandlers) UpdateInvoiceStatus(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.documentService.UpdateInvoiceStatus(ctx, businessID, invoiceID, models.DocumentStatus(req.Status)); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":    "Status updated",
		"status":     req.Status,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// DeleteDocument handles DELETE /documents/:id
func (h *DocumentHandlers) DeleteDocument(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	documentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.documentService.DeleteDocument(ctx, businessID, documentID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Document deleted"})
}

// RegisterRoutes wires the document endpoints onto the authenticated group.
func (h *DocumentHandlers) RegisterRoutes(g *echo.Group) {
	g.POST("/invoices", h.CreateInvoice)
	g.GET("/invoices", h.ListInvoices)
	g.GET("/invoices/outstanding", h.ListOutstandingInvoices)
	g.PUT("/invoices/:id/status", h.UpdateInvoiceStatus)

	g.POST("/estimates", h.CreateEstimate)
	g.GET("/estimates", h.ListEstimates)

	g.GET("/documents/:id", h.GetDocument)
	g.PUT("/documents/:id/items", h.ReviseDocument)
	g.DELETE("/documents/:id", h.DeleteDocument)
}
