package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

var _ ports.Service = (*Service)(nil)

// Service orchestrates care services, bookings, and care logs.
type Service struct {
	services ports.ServiceRepository
	bookings ports.BookingRepository
	pets     ports.PetOwnership
	tx       transaction.Manager
}

func NewService(services ports.ServiceRepository, bookings ports.BookingRepository, pets ports.PetOwnership, tx transaction.Manager) *Service {
	if tx == nil {
		tx = transaction.None
	}
	return &Service{services: services, bookings: bookings, pets: pets, tx: tx}
}

// CreateService publishes an active offer. Only caretakers and admins may publish.
func (s *Service) CreateService(ctx context.Context, principal authz.Principal, input types.CreateServiceInput) (*domain.CareService, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	if !principal.HasRole(authz.RoleCaretaker) && !principal.IsAdmin() {
		return nil, apperr.Forbidden("only caretakers can publish services")
	}
	serviceType, err := domain.ParseServiceType(input.Type)
	if err != nil {
		return nil, mapError(err)
	}
	svc, err := domain.NewCareService(principal.UserID, input.Title, input.Description, serviceType, input.BasePriceCents, input.PriceUnit)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.services.CreateService(ctx, svc)
	return created, mapError(err)
}

func (s *Service) ListServices(ctx context.Context, serviceType string) ([]domain.CareService, error) {
	var filter domain.ServiceType
	if serviceType != "" {
		t, err := domain.ParseServiceType(serviceType)
		if err != nil {
			return nil, mapError(err)
		}
		filter = t
	}
	services, err := s.services.ListActiveServices(ctx, filter)
	return services, mapError(err)
}

// CreateBooking books a service for one of the customer's own pets. The date
// range and the pet are checked before the service, so an invalid pet fails
// validation whatever the state of the service.
func (s *Service) CreateBooking(ctx context.Context, principal authz.Principal, input types.CreateBookingInput) (*domain.Booking, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, mapError(domain.ErrInvalidDateRange)
	}
	ownerID, err := s.pets.OwnerOf(ctx, input.PetID)
	switch {
	case errors.Is(err, ports.ErrPetNotFound):
		return nil, mapError(fmt.Errorf("%w: pet %d not found", domain.ErrInvalidPet, input.PetID))
	case err != nil:
		return nil, err
	case ownerID != principal.UserID:
		return nil, mapError(fmt.Errorf("%w: pet %d", domain.ErrInvalidPet, input.PetID))
	}
	svc, err := s.services.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, mapError(err)
	}
	booking, err := domain.NewBooking(principal.UserID, svc, input.PetID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.bookings.CreateBooking(ctx, booking)
	return created, mapError(err)
}

// UpdateBookingStatus lets the provider of the booked service move the booking on.
func (s *Service) UpdateBookingStatus(ctx context.Context, principal authz.Principal, input types.UpdateBookingStatusInput) (*domain.Booking, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	next, err := domain.ParseBookingStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	var updated *domain.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetBooking(ctx, input.BookingID)
		if err != nil {
			return mapError(err)
		}
		if err := authz.Authorize(principal, authz.ActionUpdateBooking, bookingResource(booking, booking.ProviderID())); err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(next) {
			return mapError(fmt.Errorf("%w: %s to %s", domain.ErrIllegalTransition, booking.Status, next))
		}
		if err := s.bookings.UpdateBookingStatus(ctx, booking.ID, next); err != nil {
			return mapError(err)
		}
		updated, err = s.bookings.GetBooking(ctx, booking.ID)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddLog appends a care log. Logs are never edited or removed.
func (s *Service) AddLog(ctx context.Context, principal authz.Principal, input types.AddLogInput) (*domain.CareLog, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetBooking(ctx, input.BookingID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := authz.Authorize(principal, authz.ActionAddCareLog, bookingResource(booking, booking.ProviderID())); err != nil {
		return nil, err
	}
	entry, err := domain.NewCareLog(booking.ID, principal.UserID, input.Title, input.Description, input.ImageURL)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.bookings.AddLog(ctx, entry)
	return created, mapError(err)
}

// ListLogs shows a booking's diary to its customer and its provider.
func (s *Service) ListLogs(ctx context.Context, principal authz.Principal, bookingID int64) ([]domain.CareLog, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := authz.Authorize(principal, authz.ActionViewCareLogs, bookingResource(booking, booking.CustomerID, booking.ProviderID())); err != nil {
		return nil, err
	}
	logs, err := s.bookings.ListLogs(ctx, booking.ID)
	return logs, mapError(err)
}

// GetMyBookings lists the bookings a user made (customer) or received
// through their services (provider), newest first.
func (s *Service) GetMyBookings(ctx context.Context, principal authz.Principal, role string) ([]domain.Booking, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	viewer, err := domain.ParseViewerRole(role)
	if err != nil {
		return nil, mapError(err)
	}
	if viewer == domain.ViewAsCustomer {
		bookings, err := s.bookings.ListBookingsByCustomer(ctx, principal.UserID)
		return bookings, mapError(err)
	}
	serviceIDs, err := s.services.ServiceIDsByProvider(ctx, principal.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	if len(serviceIDs) == 0 {
		return []domain.Booking{}, nil
	}
	bookings, err := s.bookings.ListBookingsByServices(ctx, serviceIDs)
	return bookings, mapError(err)
}

func bookingResource(b *domain.Booking, owners ...string) authz.Resource {
	return authz.Resource{Kind: "booking", ID: b.ID, Owners: owners}
}
