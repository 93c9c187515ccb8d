package application

import (
	"context"
	"fmt"
	"slices"
	"strings"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

// Service orchestrates order use cases.
type Service struct {
	orders ports.Repository
	pets   ports.PetLedger
	keys   ports.IdempotencyStore
	tx     transaction.Manager
}

// NewService wires the order collaborators. keys may be nil, in which case
// idempotency keys are ignored.
func NewService(orders ports.Repository, pets ports.PetLedger, keys ports.IdempotencyStore, tx transaction.Manager) *Service {
	if tx == nil {
		tx = transaction.None
	}
	return &Service{orders: orders, pets: pets, keys: keys, tx: tx}
}

// CreateOrder reserves every requested pet for the principal in one
// transaction. Either all pets move from available to pending and the order
// exists, or nothing changes.
func (s *Service) CreateOrder(ctx context.Context, principal authz.Principal, input types.CreateOrderInput) (*domain.Order, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	ids := dedupe(input.PetIDs)
	if len(ids) == 0 {
		return nil, mapError(domain.ErrEmptyOrder)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.keys != nil {
		var err error
		if fingerprint, err = FingerprintCreateOrder(ids); err != nil {
			return nil, err
		}
		if replay, err := s.replay(ctx, principal.UserID, key, fingerprint); replay != nil || err != nil {
			return replay, mapError(err)
		}
	}

	var created *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		pets, err := s.pets.LockPets(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingIDs(ids, pets); len(missing) > 0 {
			return apperr.NotFound("pets", missing)
		}
		order, err := domain.NewOrder(principal.UserID, pets)
		if err != nil {
			return err
		}
		saved, err := s.orders.Create(ctx, order)
		if err != nil {
			return err
		}
		changed, err := s.pets.TransitionPets(ctx, ids, []catalogdomain.Status{catalogdomain.StatusAvailable}, catalogdomain.StatusPending)
		if err != nil {
			return err
		}
		if changed != int64(len(ids)) {
			return apperr.Conflict("only %d of %d pets could be reserved", changed, len(ids))
		}
		if fingerprint != "" {
			record := ports.IdempotencyRecord{BuyerID: principal.UserID, Key: key, RequestHash: fingerprint, OrderID: saved.ID}
			stored, err := s.keys.Save(ctx, record)
			if err != nil {
				return err
			}
			if stored.OrderID != saved.ID {
				return fmt.Errorf("%w: key %q already used", ports.ErrIdempotencyConflict, key)
			}
		}
		created, err = s.orders.GetByID(ctx, saved.ID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

func (s *Service) replay(ctx context.Context, buyerID, key, fingerprint string) (*domain.Order, error) {
	record, err := s.keys.Get(ctx, buyerID, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != fingerprint {
		return nil, fmt.Errorf("%w: key %q was used for a different request", ports.ErrIdempotencyConflict, key)
	}
	return s.orders.GetByID(ctx, record.OrderID)
}

func missingIDs(ids []int64, found []domain.PetSummary) []int64 {
	var missing []int64
	for _, id := range ids {
		if !slices.ContainsFunc(found, func(p domain.PetSummary) bool { return p.ID == id }) {
			missing = append(missing, id)
		}
	}
	return missing
}

// GetOrder returns an order to its buyer or an admin.
func (s *Service) GetOrder(ctx context.Context, principal authz.Principal, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := authz.Authorize(principal, authz.ActionViewOrder, orderResource(order)); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, principal authz.Principal) ([]domain.Order, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByBuyer(ctx, principal.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// UpdateOrderStatus is the back-office and payment-webhook entry point.
func (s *Service) UpdateOrderStatus(ctx context.Context, principal authz.Principal, input types.UpdateOrderStatusInput) (*domain.Order, error) {
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	ref, err := domain.NormalizePaymentRef(input.PaymentRef)
	if err != nil {
		return nil, mapError(err)
	}
	var updated *domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(principal, authz.ActionUpdateOrderStatus, orderResource(order)); err != nil {
			return err
		}
		if err := s.applyStatus(ctx, order, status, ref); err != nil {
			return err
		}
		updated, err = s.orders.GetByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// CancelOrder lets the buyer abandon an order that has not been paid yet.
func (s *Service) CancelOrder(ctx context.Context, principal authz.Principal, id int64) (*domain.Order, error) {
	var cancelled *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := authz.Authorize(principal, authz.ActionCancelOrder, orderResource(order)); err != nil {
			return err
		}
		if order.Status != domain.StatusPendingPayment {
			return fmt.Errorf("%w: order %d is %s", domain.ErrIllegalTransition, id, order.Status)
		}
		if err := s.applyStatus(ctx, order, domain.StatusCancelled, nil); err != nil {
			return err
		}
		cancelled, err = s.orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return cancelled, nil
}

// applyStatus writes the new status and its pet side effect. Re-applying the
// current status only records the payment reference.
func (s *Service) applyStatus(ctx context.Context, order *domain.Order, status domain.Status, ref *string) error {
	if order.Status == status {
		if ref == nil {
			return nil
		}
		return s.orders.UpdateStatus(ctx, order.ID, status, ref)
	}
	if !order.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, order.Status, status)
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, status, ref); err != nil {
		return err
	}
	if effect, ok := domain.PetEffect(status); ok {
		if _, err := s.pets.TransitionPets(ctx, order.PetIDs(), nil, effect); err != nil {
			return err
		}
	}
	return nil
}

func orderResource(order *domain.Order) authz.Resource {
	return authz.Resource{Kind: "order", ID: order.ID, Owners: []string{order.BuyerID}}
}

var _ ports.Service = (*Service)(nil)
