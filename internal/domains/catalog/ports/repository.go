package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
)

var (
	ErrNotFound = errors.New("pet not found")
	// ErrVersionConflict is returned when the stored version moved on.
	ErrVersionConflict = errors.New("pet was modified concurrently")
	// ErrReferenced is returned when orders or bookings still point at the pet.
	ErrReferenced = errors.New("pet is referenced by orders or bookings")
)

// UpdateOptions selects the optional parts of an update.
type UpdateOptions struct {
	ReplaceImages bool
	WriteStatus   bool
}

// SearchCriteria is a fully resolved search: visibility already applied.
type SearchCriteria struct {
	Type          domain.Type
	MinPriceCents *int64
	MaxPriceCents *int64
	Keyword       string
	Breed         string
	City          string
	OwnerID       string
	Statuses      []domain.Status
	Offset        int
	Limit         int
}

// Repository persists pet listings with their images.
type Repository interface {
	// Search selects the matching ids of one page, then loads those rows with
	// images and owner. The total counts the whole filtered set.
	Search(ctx context.Context, criteria SearchCriteria) ([]domain.Listing, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	// GetForUpdate loads the listing and holds a row lock on the pet until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Listing, error)
	Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	// Update writes pet when the stored version equals expectedVersion and
	// bumps the version. Status and images are written only when opts asks.
	Update(ctx context.Context, pet *domain.Pet, expectedVersion int64, opts UpdateOptions) (*domain.Pet, error)
	// Delete removes favorites and images referencing the pet, then the pet.
	// It fails with ErrReferenced while order items or bookings point at it.
	Delete(ctx context.Context, id int64) error
}
