package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
)

var (
	ErrServiceNotFound = errors.New("care service not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPetNotFound     = errors.New("pet not found")
)

// ServiceRepository persists care service offers.
type ServiceRepository interface {
	CreateService(ctx context.Context, service *domain.CareService) (*domain.CareService, error)
	GetService(ctx context.Context, id int64) (*domain.CareService, error)
	// ListActiveServices returns active services with their provider, newest
	// first. An empty serviceType matches every type.
	ListActiveServices(ctx context.Context, serviceType domain.ServiceType) ([]domain.CareService, error)
	ServiceIDsByProvider(ctx context.Context, providerID string) ([]int64, error)
}

// BookingRepository persists bookings and their care logs. Loaded bookings
// carry their service, pet, and customer.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error)
	ListBookingsByServices(ctx context.Context, serviceIDs []int64) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	AddLog(ctx context.Context, log *domain.CareLog) (*domain.CareLog, error)
	// ListLogs returns the logs of a booking, newest first.
	ListLogs(ctx context.Context, bookingID int64) ([]domain.CareLog, error)
}

// PetOwnership resolves who owns a catalog pet.
type PetOwnership interface {
	OwnerOf(ctx context.Context, petID int64) (string, error)
}
