//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
	"github.com/Apurer/pet-marketplace/internal/platform/postgres/pgtest"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

func TestCaretaking_BookingLifecycle(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.SeedUser(t, db, "carol", "Kraków", "caretaker")
	pgtest.SeedUser(t, db, "dave", "Gdańsk")
	var petID int64
	require.NoError(t, db.Raw(
		`INSERT INTO pets (owner_id, name, type, attributes, description, price_cents, status, version, created_at, updated_at)
		 VALUES ('dave', 'Rex', 'dog', '{}', '', 0, 'available', 1, now(), now()) RETURNING id`,
	).Scan(&petID).Error)

	repo := NewRepository(db)
	svc := application.NewService(repo, repo, repo, platformpostgres.NewTxManager(db))
	ctx := context.Background()
	carol := authz.Principal{UserID: "carol", Roles: []authz.Role{authz.RoleCaretaker}}
	dave := authz.Principal{UserID: "dave", Roles: []authz.Role{authz.RoleCustomer}}

	service, err := svc.CreateService(ctx, carol, types.CreateServiceInput{Title: "Dog hotel", Type: "boarding", BasePriceCents: 3000})
	require.NoError(t, err)
	require.NotNil(t, service.Provider)
	assert.Equal(t, "Carol", service.Provider.Name)

	listed, err := svc.ListServices(ctx, "boarding")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	booking, err := svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: service.ID, PetID: petID, StartDate: start, EndDate: start.Add(25 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), booking.TotalPriceCents)
	require.NotNil(t, booking.Pet)
	assert.Equal(t, "Rex", booking.Pet.Name)

	_, err = svc.UpdateBookingStatus(ctx, dave, types.UpdateBookingStatusInput{BookingID: booking.ID, Status: "accepted"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	accepted, err := svc.UpdateBookingStatus(ctx, carol, types.UpdateBookingStatusInput{BookingID: booking.ID, Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, accepted.Status)

	_, err = svc.AddLog(ctx, carol, types.AddLogInput{BookingID: booking.ID, Title: "Walk"})
	require.NoError(t, err)
	logs, err := svc.ListLogs(ctx, dave, booking.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	mine, err := svc.GetMyBookings(ctx, carol, "provider")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Customer)
	assert.Equal(t, "Dave", mine[0].Customer.Name)

	none, err := svc.GetMyBookings(ctx, dave, "provider")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCaretaking_Lookups(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.GetService(ctx, 1)
	require.ErrorIs(t, err, ports.ErrServiceNotFound)
	_, err = repo.GetBooking(ctx, 1)
	require.ErrorIs(t, err, ports.ErrBookingNotFound)
	_, err = repo.OwnerOf(ctx, 1)
	require.ErrorIs(t, err, ports.ErrPetNotFound)
	require.ErrorIs(t, repo.UpdateBookingStatus(ctx, 1, domain.BookingAccepted), ports.ErrBookingNotFound)
}
