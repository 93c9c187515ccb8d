package ports

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, principal authz.Principal, input types.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, principal authz.Principal, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, principal authz.Principal) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, principal authz.Principal, input types.UpdateOrderStatusInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, principal authz.Principal, id int64) (*domain.Order, error)
}

// CheckoutOrchestrator runs CreateOrder inline or as a durable workflow.
type CheckoutOrchestrator interface {
	PlaceOrder(ctx context.Context, principal authz.Principal, input types.CreateOrderInput) (*domain.Order, error)
}
