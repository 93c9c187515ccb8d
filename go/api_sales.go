package marketplaceserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	salesmapper "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/http/mapper"
	salestypes "github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	salesdomain "github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	salesports "github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// SalesAPI wires HTTP transport with the order service and the checkout orchestrator.
type SalesAPI struct {
	service  salesports.Service
	checkout salesports.CheckoutOrchestrator
}

func NewSalesAPI(service salesports.Service, checkout salesports.CheckoutOrchestrator) SalesAPI {
	return SalesAPI{service: service, checkout: checkout}
}

// Post /api/sales/orders
func (api SalesAPI) CreateOrder(c *gin.Context) {
	var payload salesmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := payload.ToInput(strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)))
	order, err := api.placeOrder(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, salesmapper.FromOrder(order))
}

func (api SalesAPI) placeOrder(ctx context.Context, principal authz.Principal, input salestypes.CreateOrderInput) (*salesdomain.Order, error) {
	if api.checkout != nil {
		return api.checkout.PlaceOrder(ctx, principal, input)
	}
	return api.service.CreateOrder(ctx, principal, input)
}

// Get /api/sales/orders
func (api SalesAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salesmapper.FromOrders(orders))
}

// Get /api/sales/orders/:orderId
func (api SalesAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salesmapper.FromOrder(order))
}

// Post /api/sales/orders/:orderId/cancel
func (api SalesAPI) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salesmapper.FromOrder(order))
}

// Patch /api/sales/orders/:orderId/status
// Admin only; payment confirmation, shipping and refunds go through here.
func (api SalesAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload salesmapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), principalFrom(c), payload.ToInput(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, salesmapper.FromOrder(order))
}
