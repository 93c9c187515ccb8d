package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
)

var ErrPetNotFound = errors.New("pet not found")

// Repository stores (user, pet) favorite pairs.
type Repository interface {
	PetExists(ctx context.Context, petID int64) (bool, error)
	Exists(ctx context.Context, userID string, petID int64) (bool, error)
	// Add inserts the pair and ignores a concurrent duplicate.
	Add(ctx context.Context, userID string, petID int64) error
	Remove(ctx context.Context, userID string, petID int64) error
	// List returns one page of the user's favorites, newest first, with each
	// pet's image urls, and the total number of favorites.
	List(ctx context.Context, userID string, offset, limit int) ([]domain.FavoritePet, int64, error)
}
