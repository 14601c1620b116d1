package handlers

import (
	"net/http"
	"strconv"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles HTTP requests for products.
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type productRequest struct {
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	UnitOfMeasure *string         `json:"unit_of_measure,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product := &models.Product{
		Name:          req.Name,
		UnitPrice:     req.UnitPrice,
		TaxPercent:    req.TaxPercent,
		UnitOfMeasure: req.UnitOfMeasure,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		BuyPrice:      req.BuyPrice,
	}
	if err := h.productService.CreateProduct(ctx, businessID, product); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	product, err := h.productService.GetProduct(ctx, businessID, productID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product := &models.Product{
		ID:            productID,
		Name:          req.Name,
		UnitPrice:     req.UnitPrice,
		TaxPercent:    req.TaxPercent,
		UnitOfMeasure: req.UnitOfMeasure,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		BuyPrice:      req.BuyPrice,
	}
	if err := h.productService.UpdateProduct(ctx, businessID, product); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.productService.DeleteProduct(ctx, businessID, productID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	products, err := h.productService.ListProducts(ctx, businessID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// SuggestNames handles GET /products/suggest?q=prefix
func (h *ProductHandlers) SuggestNames(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	names, err := h.productService.SuggestNames(ctx, businessID, c.QueryParam("q"))
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"suggestions": names})
}

// AdjustStock handles POST /products/:id/stock
func (h *ProductHandlers) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.productService.AdjustStock(ctx, businessID, productID, req.Delta); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Stock adjusted"})
}

// ListLowStock handles GET /products/low-stock
func (h *ProductHandlers) ListLowStock(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	products, err := h.productService.ListLowStock(ctx, businessID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// RegisterRoutes wires the product endpoints onto the authenticated group.
func (h *ProductHandlers) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.CreateProduct)
	g.GET("/products", h.ListProducts)
	g.GET("/products/suggest", h.SuggestNames)
	g.GET("/products/low-stock", h.ListLowStock)
	g.GET("/products/:id", h.GetProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
	g.POST("/products/:id/stock", h.AdjustStock)
}
