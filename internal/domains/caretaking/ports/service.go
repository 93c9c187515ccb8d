package ports

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

// Service exposes caretaking use cases to adapters.
type Service interface {
	CreateService(ctx context.Context, principal authz.Principal, input types.CreateServiceInput) (*domain.CareService, error)
	ListServices(ctx context.Context, serviceType string) ([]domain.CareService, error)
	CreateBooking(ctx context.Context, principal authz.Principal, input types.CreateBookingInput) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, principal authz.Principal, input types.UpdateBookingStatusInput) (*domain.Booking, error)
	AddLog(ctx context.Context, principal authz.Principal, input types.AddLogInput) (*domain.CareLog, error)
	ListLogs(ctx context.Context, principal authz.Principal, bookingID int64) ([]domain.CareLog, error)
	GetMyBookings(ctx context.Context, principal authz.Principal, role string) ([]domain.Booking, error)
}
