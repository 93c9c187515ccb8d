package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/platform/auth"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, tokenID string) (*domain.Session, error)
	Delete(ctx context.Context, tokenID string) error
	// PurgeExpired removes sessions that expired at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(userID string, roles []string) (auth.Token, error)
	Verify(raw string) (*auth.Claims, error)
}

var _ TokenIssuer = (*auth.Issuer)(nil)
