package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/pet-marketplace/internal/domains/users/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

// DefaultSessionTTL provides the fallback session lifetime when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	tokens     ports.TokenIssuer
	hasher     ports.PasswordHasher
	tx         transaction.Manager
	sessionTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

func WithHasher(h ports.PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer, tx transaction.Manager, opts ...Option) *Service {
	if tx == nil {
		tx = transaction.None
	}
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		tokens:     tokens,
		hasher:     BcryptHasher{},
		tx:         tx,
		sessionTTL: DefaultSessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a customer account with an empty profile.
func (s *Service) Register(ctx context.Context, input types.RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(uuid.NewString(), input.Name, input.Email, input.Roles)
	if err != nil {
		return nil, mapError(err)
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, mapError(err)
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	var created *domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
			return ports.ErrEmailTaken
		} else if !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		created, err = s.repo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// Login checks credentials and opens a session keyed by the token id.
func (s *Service) Login(ctx context.Context, input types.LoginInput) (*types.LoginResult, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil || strings.TrimSpace(input.Password) == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, mapError(err)
	}
	if user.Banned {
		return nil, mapError(ErrBanned)
	}
	token, err := s.tokens.Issue(user.ID, user.Roles)
	if err != nil {
		return nil, err
	}
	now := s.now()
	session := domain.Session{TokenID: token.ID, UserID: user.ID, ExpiresAt: now.Add(s.sessionTTL), CreatedAt: now}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	expiresAt := token.ExpiresAt
	if session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}
	return &types.LoginResult{Token: token.Value, ExpiresAt: expiresAt, User: *user}, nil
}

// Authenticate resolves a bearer token into the principal it was issued to.
// The session must still exist and the account must not be banned.
func (s *Service) Authenticate(ctx context.Context, token string) (authz.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return authz.Anonymous, mapError(err)
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return authz.Anonymous, mapError(err)
	}
	if session.UserID != claims.Subject || session.Expired(s.now()) {
		return authz.Anonymous, mapError(ports.ErrSessionNotFound)
	}
	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return authz.Anonymous, mapError(ports.ErrInvalidCredentials)
		}
		return authz.Anonymous, err
	}
	if user.Banned {
		return authz.Anonymous, mapError(ErrBanned)
	}
	principal := authz.Principal{UserID: user.ID, TokenID: claims.ID}
	for _, raw := range user.Roles {
		if role, ok := authz.ParseRole(raw); ok {
			principal.Roles = append(principal.Roles, role)
		}
	}
	return principal, nil
}

// Logout ends the session the principal authenticated with.
func (s *Service) Logout(ctx context.Context, principal authz.Principal) error {
	if err := authz.RequireUser(principal); err != nil {
		return err
	}
	if strings.TrimSpace(principal.TokenID) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, principal.TokenID)
}

func (s *Service) GetPublicProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	return s.loadProfile(ctx, strings.TrimSpace(userID))
}

func (s *Service) GetCurrentProfile(ctx context.Context, principal authz.Principal) (*types.UserProfile, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	return s.loadProfile(ctx, principal.UserID)
}

// UpdateProfile applies a partial update, creating the profile row if needed.
func (s *Service) UpdateProfile(ctx context.Context, principal authz.Principal, patch domain.ProfilePatch) (*types.UserProfile, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, principal.UserID); err != nil {
			return err
		}
		profile, err := s.repo.GetProfile(ctx, principal.UserID)
		if errors.Is(err, ports.ErrNotFound) {
			profile, err = &domain.Profile{UserID: principal.UserID}, nil
		}
		if err != nil {
			return err
		}
		profile.Apply(patch)
		_, err = s.repo.SaveProfile(ctx, profile)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return s.loadProfile(ctx, principal.UserID)
}

// PurgeExpiredSessions deletes every session past its expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

func (s *Service) loadProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	if userID == "" {
		return nil, mapError(ports.ErrNotFound)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		profile = &domain.Profile{UserID: userID}
	case err != nil:
		return nil, err
	}
	return &types.UserProfile{User: *user, Profile: *profile}, nil
}

var _ ports.Service = (*Service)(nil)
