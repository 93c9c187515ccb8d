package mapper

import (
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
)

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	PetIDs []int64 `json:"petIds"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status     string  `json:"status"`
	PaymentRef *string `json:"paymentRef,omitempty"`
}

type PetSummary struct {
	ID           int64  `json:"id"`
	OwnerID      string `json:"ownerId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	PriceCents   int64  `json:"priceCents"`
	PrimaryImage string `json:"primaryImage,omitempty"`
}

type ItemResponse struct {
	ID                   int64       `json:"id"`
	PetID                int64       `json:"petId"`
	PriceAtPurchaseCents int64       `json:"priceAtPurchaseCents"`
	Pet                  *PetSummary `json:"pet,omitempty"`
}

type OrderResponse struct {
	ID               int64          `json:"id"`
	BuyerID          string         `json:"buyerId"`
	PaymentRef       *string        `json:"paymentRef,omitempty"`
	TotalAmountCents int64          `json:"totalAmountCents"`
	Status           string         `json:"status"`
	Items            []ItemResponse `json:"items"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (r CreateOrderRequest) ToInput(idempotencyKey string) types.CreateOrderInput {
	return types.CreateOrderInput{PetIDs: r.PetIDs, IdempotencyKey: idempotencyKey}
}

func (r UpdateStatusRequest) ToInput(orderID int64) types.UpdateOrderStatusInput {
	return types.UpdateOrderStatusInput{OrderID: orderID, Status: r.Status, PaymentRef: r.PaymentRef}
}

func FromOrder(o *domain.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		out := ItemResponse{ID: item.ID, PetID: item.PetID, PriceAtPurchaseCents: item.PriceAtPurchaseCents}
		if item.Pet != nil {
			summary := FromPetSummary(*item.Pet)
			out.Pet = &summary
		}
		items = append(items, out)
	}
	return OrderResponse{
		ID:               o.ID,
		BuyerID:          o.BuyerID,
		PaymentRef:       o.PaymentRef,
		TotalAmountCents: o.TotalAmountCents,
		Status:           string(o.Status),
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func FromOrders(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	return out
}

func FromPetSummary(p domain.PetSummary) PetSummary {
	return PetSummary{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Type:         string(p.Type),
		Status:       string(p.Status),
		PriceCents:   p.PriceCents,
		PrimaryImage: p.PrimaryImage,
	}
}
