package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/adapters/memory"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

var (
	carol = authz.Principal{UserID: "carol", Roles: []authz.Role{authz.RoleCaretaker}}
	dave  = authz.Principal{UserID: "dave", Roles: []authz.Role{authz.RoleCustomer}}
	erin  = authz.Principal{UserID: "erin", Roles: []authz.Role{authz.RoleCustomer}}
	admin = authz.Principal{UserID: "root", Roles: []authz.Role{authz.RoleAdmin}}

	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	davesDog  int64 = 1
	erinsCat  int64 = 2
	basePrice int64 = 4000
)

func newTestService(t *testing.T) (*Service, *memdb.DB) {
	t.Helper()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db := memdb.New().WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	require.NoError(t, db.Update(context.Background(), func(s *memdb.State) error {
		s.Users["carol"] = memdb.User{ID: "carol", Name: "Carol"}
		s.Users["dave"] = memdb.User{ID: "dave", Name: "Dave"}
		s.Users["erin"] = memdb.User{ID: "erin", Name: "Erin"}
		s.Pets[davesDog] = memdb.Pet{ID: davesDog, OwnerID: "dave", Name: "Rex", Type: "dog", Status: "available"}
		s.Pets[erinsCat] = memdb.Pet{ID: erinsCat, OwnerID: "erin", Name: "Tom", Type: "cat", Status: "available"}
		return nil
	}))
	repo := memory.NewRepository(db)
	return NewService(repo, repo, repo, db), db
}

func publish(t *testing.T, svc *Service, serviceType string) *domain.CareService {
	t.Helper()
	created, err := svc.CreateService(context.Background(), carol, types.CreateServiceInput{
		Title:          "Dog hotel",
		Type:           serviceType,
		BasePriceCents: basePrice,
	})
	require.NoError(t, err)
	return created
}

func book(t *testing.T, svc *Service, serviceID int64, hours int) *domain.Booking {
	t.Helper()
	booking, err := svc.CreateBooking(context.Background(), dave, types.CreateBookingInput{
		ServiceID: serviceID,
		PetID:     davesDog,
		StartDate: jan1,
		EndDate:   jan1.Add(time.Duration(hours) * time.Hour),
	})
	require.NoError(t, err)
	return booking
}

func TestCreateServiceRequiresCaretaker(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := publish(t, svc, "boarding")
	assert.True(t, created.IsActive)
	assert.Equal(t, domain.DefaultPriceUnit, created.PriceUnit)
	require.NotNil(t, created.Provider)
	assert.Equal(t, "Carol", created.Provider.Name)

	_, err := svc.CreateService(ctx, dave, types.CreateServiceInput{Title: "Walks", Type: "walking", BasePriceCents: 100})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.CreateService(ctx, admin, types.CreateServiceInput{Title: "Vet", Type: "medical_check", BasePriceCents: 100})
	require.NoError(t, err)

	_, err = svc.CreateService(ctx, carol, types.CreateServiceInput{Title: "Spa", Type: "massage"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateService(ctx, authz.Principal{}, types.CreateServiceInput{Title: "Spa", Type: "grooming"})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestListServicesShowsActiveAndFiltersByType(t *testing.T) {
	svc, _ := newTestService(t)
	boarding := publish(t, svc, "boarding")
	grooming := publish(t, svc, "grooming")

	all, err := svc.ListServices(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, grooming.ID, all[0].ID, "newest first")

	onlyBoarding, err := svc.ListServices(context.Background(), "boarding")
	require.NoError(t, err)
	require.Len(t, onlyBoarding, 1)
	assert.Equal(t, boarding.ID, onlyBoarding[0].ID)

	_, err = svc.ListServices(context.Background(), "unicorn")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateBookingPricing(t *testing.T) {
	svc, _ := newTestService(t)
	service := publish(t, svc, "boarding")

	halfDay := book(t, svc, service.ID, 12)
	assert.Equal(t, basePrice, halfDay.TotalPriceCents)
	assert.Equal(t, domain.BookingPending, halfDay.Status)

	dayAndHour := book(t, svc, service.ID, 25)
	assert.Equal(t, 2*basePrice, dayAndHour.TotalPriceCents)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	service := publish(t, svc, "boarding")

	_, err := svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: service.ID, PetID: davesDog, StartDate: jan1, EndDate: jan1.Add(-time.Hour)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: service.ID, PetID: erinsCat, StartDate: jan1, EndDate: jan1.Add(time.Hour)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: service.ID, PetID: 404, StartDate: jan1, EndDate: jan1.Add(time.Hour)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: service.ID, PetID: davesDog, StartDate: jan1, EndDate: jan1.AddDate(1000, 0, 0)})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateBookingForeignPetFailsValidationEvenWithoutService(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateBooking(context.Background(), dave, types.CreateBookingInput{ServiceID: 999, PetID: erinsCat, StartDate: jan1, EndDate: jan1.Add(time.Hour)})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateBookingMissingOrInactiveService(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: 999, PetID: davesDog, StartDate: jan1, EndDate: jan1.Add(time.Hour)})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	service := publish(t, svc, "boarding")
	deactivate(t, db, service.ID)
	_, err = svc.CreateBooking(ctx, dave, types.CreateBookingInput{ServiceID: service.ID, PetID: davesDog, StartDate: jan1, EndDate: jan1.Add(time.Hour)})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func deactivate(t *testing.T, db *memdb.DB, id int64) {
	t.Helper()
	require.NoError(t, db.Update(context.Background(), func(s *memdb.State) error {
		row := s.CareServices[id]
		row.IsActive = false
		s.CareServices[id] = row
		return nil
	}))
}

func TestUpdateBookingStatusProviderOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	booking := book(t, svc, publish(t, svc, "boarding").ID, 24)

	_, err := svc.UpdateBookingStatus(ctx, dave, types.UpdateBookingStatusInput{BookingID: booking.ID, Status: "accepted"})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := svc.UpdateBookingStatus(ctx, carol, types.UpdateBookingStatusInput{BookingID: booking.ID, Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAccepted, updated.Status)

	_, err = svc.UpdateBookingStatus(ctx, carol, types.UpdateBookingStatusInput{BookingID: booking.ID, Status: "completed"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.UpdateBookingStatus(ctx, carol, types.UpdateBookingStatusInput{BookingID: booking.ID, Status: "sleeping"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.UpdateBookingStatus(ctx, carol, types.UpdateBookingStatusInput{BookingID: 999, Status: "accepted"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCareLogsAreAppendOnlyAndProviderWritten(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	booking := book(t, svc, publish(t, svc, "boarding").ID, 48)

	_, err := svc.AddLog(ctx, dave, types.AddLogInput{BookingID: booking.ID, Title: "Walk"})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.AddLog(ctx, carol, types.AddLogInput{BookingID: booking.ID, Title: "  "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	first, err := svc.AddLog(ctx, carol, types.AddLogInput{BookingID: booking.ID, Title: "Morning walk"})
	require.NoError(t, err)
	second, err := svc.AddLog(ctx, carol, types.AddLogInput{BookingID: booking.ID, Title: "Dinner", ImageURL: "dinner.png"})
	require.NoError(t, err)
	assert.Equal(t, "carol", second.AuthorID)

	logs, err := svc.ListLogs(ctx, dave, booking.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, first.ID, logs[1].ID)

	_, err = svc.ListLogs(ctx, erin, booking.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.ListLogs(ctx, admin, booking.ID)
	require.NoError(t, err)
}

func TestGetMyBookings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	service := publish(t, svc, "boarding")
	older := book(t, svc, service.ID, 24)
	newer := book(t, svc, service.ID, 48)

	asCustomer, err := svc.GetMyBookings(ctx, dave, "customer")
	require.NoError(t, err)
	require.Len(t, asCustomer, 2)
	assert.Equal(t, newer.ID, asCustomer[0].ID)
	assert.Equal(t, older.ID, asCustomer[1].ID)
	require.NotNil(t, asCustomer[0].Service)
	assert.Equal(t, "Carol", asCustomer[0].Service.Provider.Name)
	require.NotNil(t, asCustomer[0].Pet)
	assert.Equal(t, "Rex", asCustomer[0].Pet.Name)

	asProvider, err := svc.GetMyBookings(ctx, carol, "provider")
	require.NoError(t, err)
	require.Len(t, asProvider, 2)
	require.NotNil(t, asProvider[0].Customer)
	assert.Equal(t, "Dave", asProvider[0].Customer.Name)

	none, err := svc.GetMyBookings(ctx, erin, "provider")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	_, err = svc.GetMyBookings(ctx, dave, "landlord")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
