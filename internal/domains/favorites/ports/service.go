package ports

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/page"
)

type Service interface {
	Toggle(ctx context.Context, principal authz.Principal, petID int64) (domain.ToggleResult, error)
	IsFavorite(ctx context.Context, principal authz.Principal, petID int64) (bool, error)
	List(ctx context.Context, principal authz.Principal, req page.Request) (page.Result[domain.FavoritePet], error)
}
