package ports

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	Search(ctx context.Context, principal authz.Principal, filter types.SearchFilter) (types.SearchResult, error)
	GetPet(ctx context.Context, id int64) (*domain.Listing, error)
	CreatePet(ctx context.Context, principal authz.Principal, input types.CreatePetInput) (*domain.Listing, error)
	UpdatePet(ctx context.Context, principal authz.Principal, input types.UpdatePetInput) (*domain.Listing, error)
	DeletePet(ctx context.Context, principal authz.Principal, id int64) error
}
