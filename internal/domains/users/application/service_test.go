package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/pet-marketplace/internal/domains/users/adapters/memory"
	"github.com/Apurer/pet-marketplace/internal/domains/users/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	"github.com/Apurer/pet-marketplace/internal/platform/auth"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const password = "correct horse"

type harness struct {
	svc *Service
	db  *memdb.DB
	now *time.Time
}

func newHarness(t *testing.T) harness {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	db := memdb.New().WithClock(clock)
	issuer, err := auth.NewIssuer("test-secret", time.Hour, auth.WithClock(clock))
	require.NoError(t, err)
	svc := NewService(
		memory.NewRepository(db),
		memory.NewSessionStore(db),
		issuer,
		db,
		WithHasher(BcryptHasher{Cost: bcrypt.MinCost}),
		WithSessionTTL(2*time.Hour),
		WithClock(clock),
	)
	return harness{svc: svc, db: db, now: &now}
}

func (h harness) register(t *testing.T, email string, roles ...string) *domain.User {
	t.Helper()
	user, err := h.svc.Register(context.Background(), types.RegisterInput{Name: "Lena", Email: email, Password: password, Roles: roles})
	require.NoError(t, err)
	return user
}

func (h harness) login(t *testing.T, email string) authz.Principal {
	t.Helper()
	result, err := h.svc.Login(context.Background(), types.LoginInput{Email: email, Password: password})
	require.NoError(t, err)
	principal, err := h.svc.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	return principal
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.register(t, "Lena@Example.com", "caretaker")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "lena@example.com", user.Email)
	assert.Equal(t, []string{"customer", "caretaker"}, user.Roles)
	assert.NotEqual(t, password, user.PasswordHash)

	profile, err := h.svc.GetPublicProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{UserID: user.ID}, profile.Profile)

	_, err = h.svc.Register(ctx, types.RegisterInput{Name: "Other", Email: "lena@example.com", Password: password})
	require.ErrorIs(t, err, apperr.ErrConflict)
	_, err = h.svc.Register(ctx, types.RegisterInput{Name: "Other", Email: "other@example.com", Password: "short"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = h.svc.Register(ctx, types.RegisterInput{Name: "Other", Email: "other@example.com", Password: password, Roles: []string{"admin"}})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginAndAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "lena@example.com", "seller")

	result, err := h.svc.Login(ctx, types.LoginInput{Email: " LENA@example.com ", Password: password})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, h.now.Add(time.Hour), result.ExpiresAt)

	principal, err := h.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.True(t, principal.HasRole(authz.RoleSeller))
	assert.NotEmpty(t, principal.TokenID)

	_, err = h.svc.Login(ctx, types.LoginInput{Email: "lena@example.com", Password: "wrong password"})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = h.svc.Login(ctx, types.LoginInput{Email: "ghost@example.com", Password: password})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = h.svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestBannedUsersCannotLogIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "lena@example.com")
	result, err := h.svc.Login(ctx, types.LoginInput{Email: "lena@example.com", Password: password})
	require.NoError(t, err)

	require.NoError(t, h.db.Update(ctx, func(s *memdb.State) error {
		row := s.Users[user.ID]
		row.Banned = true
		s.Users[user.ID] = row
		return nil
	}))

	_, err = h.svc.Login(ctx, types.LoginInput{Email: "lena@example.com", Password: password})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = h.svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "lena@example.com")
	result, err := h.svc.Login(ctx, types.LoginInput{Email: "lena@example.com", Password: password})
	require.NoError(t, err)
	principal, err := h.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, principal))
	_, err = h.svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	require.ErrorIs(t, h.svc.Logout(ctx, authz.Anonymous), apperr.ErrUnauthenticated)
}

func TestExpiredSessionsArePurged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "lena@example.com")
	h.login(t, "lena@example.com")

	*h.now = h.now.Add(3 * time.Hour)
	purged, err := h.svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	purged, err = h.svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "lena@example.com")
	principal := h.login(t, "lena@example.com")

	bio, city := "Cat person", " Gdynia "
	updated, err := h.svc.UpdateProfile(ctx, principal, domain.ProfilePatch{Bio: &bio, AddressCity: &city})
	require.NoError(t, err)
	assert.Equal(t, "Cat person", updated.Profile.Bio)
	assert.Equal(t, "Gdynia", updated.Profile.AddressCity)

	phone := "+48 600 000 000"
	updated, err = h.svc.UpdateProfile(ctx, principal, domain.ProfilePatch{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Cat person", updated.Profile.Bio)
	assert.Equal(t, phone, updated.Profile.PhoneNumber)

	current, err := h.svc.GetCurrentProfile(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, user.Email, current.User.Email)

	_, err = h.svc.GetPublicProfile(ctx, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = h.svc.UpdateProfile(ctx, authz.Anonymous, domain.ProfilePatch{Bio: &bio})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
