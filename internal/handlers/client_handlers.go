package handlers

import (
	"net/http"
	"strconv"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/services"

	"github.com/labstack/echo/v4"
)

// ClientHandlers handles HTTP requests for billing clients.
type ClientHandlers struct {
	clientService services.ClientService
}

func NewClientHandlers(clientService services.ClientService) *ClientHandlers {
	return &ClientHandlers{clientService: clientService}
}

type clientRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// CreateClient handles POST /clients
func (h *ClientHandlers) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	client := &models.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.clientService.CreateClient(ctx, businessID, client); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClient handles GET /clients/:id
func (h *ClientHandlers) GetClient(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	client, err := h.clientService.GetClient(ctx, businessID, clientID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandlers) UpdateClient(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	client := &models.Client{
		ID:      clientID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.clientService.UpdateClient(ctx, businessID, client); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandlers) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.RespondError(c, err)
	}

	if err := h.clientService.DeleteClient(ctx, businessID, clientID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Client deleted"})
}

// ListClients handles GET /clients
func (h *ClientHandlers) ListClients(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	clients, err := h.clientService.ListClients(ctx, businessID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// RegisterRoutes wires the client endpoints onto the authenticated group.
func (h *ClientHandlers) RegisterRoutes(g *echo.Group) {
	g.POST("/clients", h.CreateClient)
	g.GET("/clients", h.ListClients)
	g.GET("/clients/:id", h.GetClient)
	g.PUT("/clients/:id", h.UpdateClient)
	g.DELETE("/clients/:id", h.DeleteClient)
}
