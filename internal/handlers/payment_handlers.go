package handlers

import (
	"net/http"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// PaymentHandlers handles HTTP requests for the payment ledger.
type PaymentHandlers struct {
	paymentService     services.PaymentService
	bulkPaymentService services.BulkPaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService, bulkPaymentService services.BulkPaymentService) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService:     paymentService,
		bulkPaymentService: bulkPaymentService,
	}
}

// RecordPayment handles POST /invoices/:id/payments
func (h *PaymentHandlers) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		Amount       decimal.Decimal `json:"amount"`
		Method       string          `json:"method"`
		Reference    *string         `json:"reference,omitempty"`
		Note         *string         `json:"note,omitempty"`
		SettleAsFull bool            `json:"settle_as_full"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	payment, invoice, err := h.paymentService.RecordPayment(ctx, businessID, userID, &services.RecordPaymentInput{
		InvoiceID:    invoiceID,
		Amount:       req.Amount,
		Method:       models.PaymentMethod(req.Method),
		Reference:    req.Reference,
		Note:         req.Note,
		SettleAsFull: req.SettleAsFull,
	})
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"payment": payment,
		"invoice": invoice,
	})
}

// ListPayments handles GET /invoices/:id/payments
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	payments, err := h.paymentService.ListPayments(ctx, businessID, invoiceID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}

// AllocateBulkPayment handles POST /payments/bulk
func (h *PaymentHandlers) AllocateBulkPayment(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		InvoiceIDs   []string        `json:"invoice_ids"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
		Method       string          `json:"method"`
		Reference    *string         `json:"reference,omitempty"`
		SettleAsFull bool            `json:"settle_as_full"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	ids := make([]uuid.UUID, 0, len(req.InvoiceIDs))
	for _, idStr := range req.InvoiceIDs {
		id, err := common.ValidateUUID(idStr, "invoice_ids")
		if err != nil {
			return common.RespondError(c, err)
		}
		ids = append(ids, id)
	}

	result, err := h.bulkPaymentService.AllocateBulkPayment(ctx, businessID, userID, &services.BulkPaymentInput{
		InvoiceIDs:   ids,
		TotalAmount:  req.TotalAmount,
		Method:       models.PaymentMethod(req.Method),
		Reference:    req.Reference,
		SettleAsFull: req.SettleAsFull,
	})
	if err != nil {
		return common.RespondError(c, err)
	}

	// Partial failure still returns 200; the allocations carry the outcome.
	return c.JSON(http.StatusOK, result)
}

// RegisterRoutes wires the payment endpoints onto the authenticated group.
func (h *PaymentHandlers) RegisterRoutes(g *echo.Group) {
	g.POST("/invoices/:id/payments", h.RecordPayment)
	g.GET("/invoices/:id/payments", h.ListPayments)
	g.POST("/payments/bulk", h.AllocateBulkPayment)
}
