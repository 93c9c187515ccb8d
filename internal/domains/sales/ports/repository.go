package ports

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicatePaymentRef is returned when a payment reference is already attached to another order.
	ErrDuplicatePaymentRef = errors.New("payment reference already used")
	// ErrIdempotencyConflict indicates the same key was used with a different payload.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
)

// Repository persists orders and their items.
type Repository interface {
	// Create inserts the order and its items and returns it with ids assigned.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// GetByID loads the order with items and pet summaries.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetForUpdate loads the order with items, locking the order row.
	GetForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	// ListByBuyer returns the buyer's orders, newest first.
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	// UpdateStatus writes the status and, when paymentRef is set, the payment reference.
	UpdateStatus(ctx context.Context, id int64, status domain.Status, paymentRef *string) error
}

// PetLedger is the sales view over catalog pets.
type PetLedger interface {
	// LockPets returns the existing pets among ids ordered by id, locked for the
	// rest of the transaction.
	LockPets(ctx context.Context, ids []int64) ([]domain.PetSummary, error)
	// TransitionPets sets the status of ids to to. When from is non-empty only
	// pets currently in one of those statuses change. It returns the rows changed.
	TransitionPets(ctx context.Context, ids []int64, from []catalogdomain.Status, to catalogdomain.Status) (int64, error)
}

// IdempotencyRecord binds a buyer's idempotency key to the order it created.
type IdempotencyRecord struct {
	BuyerID     string
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so retries can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record, or nil when unknown.
	Get(ctx context.Context, buyerID, key string) (*IdempotencyRecord, error)
	// Save stores the record. When the key exists the stored record is returned,
	// together with ErrIdempotencyConflict if it differs from record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
