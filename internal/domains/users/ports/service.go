package ports

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/users/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input types.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input types.LoginInput) (*types.LoginResult, error)
	Authenticate(ctx context.Context, token string) (authz.Principal, error)
	Logout(ctx context.Context, principal authz.Principal) error
	GetPublicProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	GetCurrentProfile(ctx context.Context, principal authz.Principal) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, principal authz.Principal, patch domain.ProfilePatch) (*types.UserProfile, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
