package memory

import (
	"cmp"
	"context"
	"slices"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps orders in the shared in-memory store.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var created *domain.Order
	err := r.db.Update(ctx, func(s *memdb.State) error {
		now := r.db.Now()
		row := memdb.Order{
			ID:               s.NextID("orders"),
			BuyerID:          order.BuyerID,
			PaymentRef:       order.PaymentRef,
			TotalAmountCents: order.TotalAmountCents,
			Status:           string(order.Status),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		s.Orders[row.ID] = row
		for _, item := range order.Items {
			id := s.NextID("order_items")
			s.OrderItems[id] = memdb.OrderItem{ID: id, OrderID: row.ID, PetID: item.PetID, PriceAtPurchaseCents: item.PriceAtPurchaseCents}
		}
		created = toDomain(s, row, false)
		return nil
	})
	return created, err
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, id, true)
}

// GetForUpdate relies on the transaction holding the store's write lock.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, id, false)
}

func (r *Repository) get(ctx context.Context, id int64, withPets bool) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.Orders[id]
		if !ok {
			return ports.ErrNotFound
		}
		order = toDomain(s, row, withPets)
		return nil
	})
	return order, err
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.View(ctx, func(s *memdb.State) error {
		rows := make([]memdb.Order, 0)
		for _, row := range s.Orders {
			if row.BuyerID == buyerID {
				rows = append(rows, row)
			}
		}
		slices.SortFunc(rows, func(a, b memdb.Order) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		orders = make([]domain.Order, 0, len(rows))
		for _, row := range rows {
			orders = append(orders, *toDomain(s, row, true))
		}
		return nil
	})
	return orders, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status, paymentRef *string) error {
	return r.db.Update(ctx, func(s *memdb.State) error {
		row, ok := s.Orders[id]
		if !ok {
			return ports.ErrNotFound
		}
		if paymentRef != nil {
			for _, other := range s.Orders {
				if other.ID != id && other.PaymentRef != nil && *other.PaymentRef == *paymentRef {
					return ports.ErrDuplicatePaymentRef
				}
			}
			ref := *paymentRef
			row.PaymentRef = &ref
		}
		row.Status = string(status)
		row.UpdatedAt = r.db.Now()
		s.Orders[id] = row
		return nil
	})
}

func toDomain(s *memdb.State, row memdb.Order, withPets bool) *domain.Order {
	order := &domain.Order{
		ID:               row.ID,
		BuyerID:          row.BuyerID,
		TotalAmountCents: row.TotalAmountCents,
		Status:           domain.Status(row.Status),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.PaymentRef != nil {
		ref := *row.PaymentRef
		order.PaymentRef = &ref
	}
	items := make([]memdb.OrderItem, 0)
	for _, item := range s.OrderItems {
		if item.OrderID == row.ID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b memdb.OrderItem) int { return cmp.Compare(a.ID, b.ID) })
	order.Items = make([]domain.Item, 0, len(items))
	for _, item := range items {
		out := domain.Item{ID: item.ID, PetID: item.PetID, PriceAtPurchaseCents: item.PriceAtPurchaseCents}
		if withPets {
			if pet, ok := s.Pets[item.PetID]; ok {
				summary := petSummary(s, pet)
				out.Pet = &summary
			}
		}
		order.Items = append(order.Items, out)
	}
	return order
}

func petSummary(s *memdb.State, pet memdb.Pet) domain.PetSummary {
	summary := domain.PetSummary{
		ID:         pet.ID,
		OwnerID:    pet.OwnerID,
		Name:       pet.Name,
		Type:       catalogdomain.Type(pet.Type),
		Status:     catalogdomain.Status(pet.Status),
		PriceCents: pet.PriceCents,
	}
	for _, img := range s.PetImages {
		if img.PetID == pet.ID && img.IsPrimary {
			summary.PrimaryImage = img.URL
			break
		}
	}
	return summary
}
