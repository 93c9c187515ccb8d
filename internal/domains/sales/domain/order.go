package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
)

// Status represents the payment and fulfilment state of an order.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusShipped        Status = "shipped"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

var (
	ErrEmptyOrder        = errors.New("order must reference at least one pet")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrIllegalTransition = errors.New("order status transition is not allowed")
	ErrOwnPet            = errors.New("buyer cannot purchase their own pet")
	ErrPetUnavailable    = errors.New("pet is not available")
	ErrEmptyPaymentRef   = errors.New("payment reference must not be blank")
)

var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:        {StatusDelivered, StatusRefunded},
	StatusDelivered:      {StatusRefunded},
}

// ParseStatus validates an order status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPendingPayment, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// CanTransitionTo reports whether next may follow s. Cancelled and refunded are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// PetEffect returns the status the ordered pets take when an order enters s.
func PetEffect(s Status) (catalogdomain.Status, bool) {
	switch s {
	case StatusPaid:
		return catalogdomain.StatusSold, true
	case StatusCancelled, StatusRefunded:
		return catalogdomain.StatusAvailable, true
	}
	return "", false
}

// PetSummary is the catalog view of a pet as seen by an order.
type PetSummary struct {
	ID           int64
	OwnerID      string
	Name         string
	Type         catalogdomain.Type
	Status       catalogdomain.Status
	PriceCents   int64
	PrimaryImage string
}

// Item is one purchased pet with the price captured at purchase time.
type Item struct {
	ID                   int64
	PetID                int64
	PriceAtPurchaseCents int64
	Pet                  *PetSummary
}

// Order is the sales aggregate.
type Order struct {
	ID               int64
	BuyerID          string
	PaymentRef       *string
	TotalAmountCents int64
	Status           Status
	Items            []Item
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder prices a pending order over the locked pets. Every pet must be
// available and none may belong to the buyer. Unavailable pets are reported
// before ownership.
func NewOrder(buyerID string, pets []PetSummary) (*Order, error) {
	if len(pets) == 0 {
		return nil, ErrEmptyOrder
	}
	var unavailable []PetSummary
	for _, pet := range pets {
		if pet.Status != catalogdomain.StatusAvailable {
			unavailable = append(unavailable, pet)
		}
	}
	if len(unavailable) > 0 {
		return nil, &UnavailablePetsError{Pets: unavailable}
	}
	order := &Order{BuyerID: buyerID, Status: StatusPendingPayment, Items: make([]Item, 0, len(pets))}
	for _, pet := range pets {
		if pet.OwnerID == buyerID {
			return nil, fmt.Errorf("%w: pet %d", ErrOwnPet, pet.ID)
		}
		order.Items = append(order.Items, Item{PetID: pet.ID, PriceAtPurchaseCents: pet.PriceCents})
		order.TotalAmountCents += pet.PriceCents
	}
	return order, nil
}

// PetIDs lists the ids of the ordered pets.
func (o *Order) PetIDs() []int64 {
	ids := make([]int64, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.PetID
	}
	return ids
}

// NormalizePaymentRef trims ref and rejects blank references.
func NormalizePaymentRef(ref *string) (*string, error) {
	if ref == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil, ErrEmptyPaymentRef
	}
	return &trimmed, nil
}

// UnavailablePetsError names the pets that blocked an order.
type UnavailablePetsError struct {
	Pets []PetSummary
}

func (e *UnavailablePetsError) Error() string {
	names := make([]string, len(e.Pets))
	for i, p := range e.Pets {
		names[i] = fmt.Sprintf("%s (#%d)", p.Name, p.ID)
	}
	return "pets not available: " + strings.Join(names, ", ")
}

func (e *UnavailablePetsError) Is(target error) bool {
	return target == ErrPetUnavailable
}

// ProblemExtensions exposes the blocked pets to problem responses.
func (e *UnavailablePetsError) ProblemExtensions() map[string]any {
	pets := make([]map[string]any, len(e.Pets))
	for i, p := range e.Pets {
		pets[i] = map[string]any{"id": p.ID, "name": p.Name, "status": string(p.Status)}
	}
	return map[string]any{"unavailablePets": pets}
}
