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

// ExpenseHandlers handles HTTP requests for expenses and receipt files.
type ExpenseHandlers struct {
	expenseService services.ExpenseService
}

func NewExpenseHandlers(expenseService services.ExpenseService) *ExpenseHandlers {
	return &ExpenseHandlers{expenseService: expenseService}
}

type expenseRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     *string         `json:"note,omitempty"`
	SpentAt  string          `json:"spent_at,omitempty"`
}

func (r *expenseRequest) toModel() (*models.Expense, error) {
	expense := &models.Expense{
		Category: r.Category,
		Amount:   r.Amount,
		Note:     r.Note,
	}
	if r.SpentAt != "" {
		spentAt, err := common.ParseDate(r.SpentAt, "spent_at")
		if err != nil {
			return nil, err
		}
		expense.SpentAt = spentAt
	}
	return expense, nil
}

// CreateExpense handles POST /expenses
func (h *ExpenseHandlers) CreateExpense(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	expense, err := req.toModel()
	if err != nil {
		return common.RespondError(c, err)
	}
	if err := h.expenseService.CreateExpense(ctx, businessID, expense); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, expense)
}

// GetExpense handles GET /expenses/:id
func (h *ExpenseHandlers) GetExpense(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	expenseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	expense, err := h.expenseService.GetExpense(ctx, businessID, expenseID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, expense)
}

// UpdateExpense handles PUT /expenses/:id
func (h *ExpenseHandlers) UpdateExpense(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	expenseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	expense, err := req.toModel()
	if err != nil {
		return common.RespondError(c, err)
	}
	expense.ID = expenseID
	if err := h.expenseService.UpdateExpense(ctx, businessID, expense); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, expense)
}

// DeleteExpense handles DELETE /expenses/:id
func (h *ExpenseHandlers) DeleteExpense(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	expenseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.expenseService.DeleteExpense(ctx, businessID, expenseID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Expense deleted"})
}

// ListExpenses handles GET /expenses?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ExpenseHandlers) ListExpenses(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var from, to *time.Time
	if fromStr := c.QueryParam("from"); fromStr != "" {
		parsed, err := common.ParseDate(fromStr, "from")
		if err != nil {
			return common.RespondError(c, err)
		}
		from = &parsed
	}
	if toStr := c.QueryParam("to"); toStr != "" {
		parsed, err := common.ParseDate(toStr, "to")
		if err != nil {
			return common.RespondError(c, err)
		}
		// Inclusive end date.
		end := parsed.AddDate(0, 0, 1)
		to = &end
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	expenses, err := h.expenseService.ListExpenses(ctx, businessID, from, to, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, expenses)
}

// UploadReceipt handles POST /expenses/:id/receipt (multipart form, field "file")
func (h *ExpenseHandlers) UploadReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	expenseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "Receipt file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendClientError(c, "Failed to read receipt file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.expenseService.AttachReceipt(ctx, businessID, expenseID, fileHeader.Filename, file, fileHeader.Size, contentType); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Receipt uploaded"})
}

// GetReceiptURL handles GET /expenses/:id/receipt
func (h *ExpenseHandlers) GetReceiptURL(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	expenseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	url, err := h.expenseService.ReceiptURL(ctx, businessID, expenseID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// RegisterRoutes wires the expense endpoints onto the authenticated group.
func (h *ExpenseHandlers) RegisterRoutes(g *echo.Group) {
	g.POST("/expenses", h.CreateExpense)
	g.GET("/expenses", h.ListExpenses)
	g.GET("/expenses/:id", h.GetExpense)
	g.PUT("/expenses/:id", h.UpdateExpense)
	g.DELETE("/expenses/:id", h.DeleteExpense)
	g.POST("/expenses/:id/receipt", h.UploadReceipt)
	g.GET("/expenses/:id/receipt", h.GetReceiptURL)
}
