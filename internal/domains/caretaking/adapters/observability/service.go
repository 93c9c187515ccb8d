package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const tracerName = "github.com/Apurer/pet-marketplace/internal/domains/caretaking/adapters/observability/service"

// Service decorates the caretaking service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateService(ctx context.Context, principal authz.Principal, input types.CreateServiceInput) (*domain.CareService, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.CreateService", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.String("service.type", input.Type),
	))
	defer span.End()
	created, err := s.inner.CreateService(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create care service", slog.String("provider", principal.UserID))
	}
	s.metrics.recordServiceCreated(ctx, string(created.Type))
	s.logInfo(ctx, "care service created", slog.Int64("service.id", created.ID))
	return created, nil
}

func (s *Service) ListServices(ctx context.Context, serviceType string) ([]domain.CareService, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.ListServices", trace.WithAttributes(attribute.String("service.type", serviceType)))
	defer span.End()
	services, err := s.inner.ListServices(ctx, serviceType)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list care services")
	}
	return services, nil
}

func (s *Service) CreateBooking(ctx context.Context, principal authz.Principal, input types.CreateBookingInput) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.CreateBooking", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.Int64("service.id", input.ServiceID),
		attribute.Int64("pet.id", input.PetID),
	))
	defer span.End()
	booking, err := s.inner.CreateBooking(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create booking", slog.Int64("service.id", input.ServiceID), slog.Int64("pet.id", input.PetID))
	}
	s.metrics.recordBookingCreated(ctx)
	s.logInfo(ctx, "booking created", slog.Int64("booking.id", booking.ID), slog.Int64("totalCents", booking.TotalPriceCents))
	return booking, nil
}

func (s *Service) UpdateBookingStatus(ctx context.Context, principal authz.Principal, input types.UpdateBookingStatusInput) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.UpdateBookingStatus", trace.WithAttributes(
		attribute.Int64("booking.id", input.BookingID),
		attribute.String("booking.status", input.Status),
	))
	defer span.End()
	booking, err := s.inner.UpdateBookingStatus(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update booking status", slog.Int64("booking.id", input.BookingID))
	}
	s.metrics.recordStatusChange(ctx, string(booking.Status))
	return booking, nil
}

func (s *Service) AddLog(ctx context.Context, principal authz.Principal, input types.AddLogInput) (*domain.CareLog, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.AddLog", trace.WithAttributes(attribute.Int64("booking.id", input.BookingID)))
	defer span.End()
	entry, err := s.inner.AddLog(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add care log", slog.Int64("booking.id", input.BookingID))
	}
	return entry, nil
}

func (s *Service) ListLogs(ctx context.Context, principal authz.Principal, bookingID int64) ([]domain.CareLog, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.ListLogs", trace.WithAttributes(attribute.Int64("booking.id", bookingID)))
	defer span.End()
	logs, err := s.inner.ListLogs(ctx, principal, bookingID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list care logs", slog.Int64("booking.id", bookingID))
	}
	return logs, nil
}

func (s *Service) GetMyBookings(ctx context.Context, principal authz.Principal, role string) ([]domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "CaretakingService.GetMyBookings", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.String("booking.role", role),
	))
	defer span.End()
	bookings, err := s.inner.GetMyBookings(ctx, principal, role)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list bookings", slog.String("role", role))
	}
	span.SetAttributes(attribute.Int("booking.count", len(bookings)))
	return bookings, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

type serviceMetrics struct {
	servicesCreated metric.Int64Counter
	bookingsCreated metric.Int64Counter
	statusChanges   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	services, _ := m.Int64Counter("caretaking.service.services_created", metric.WithDescription("Number of care services published"))
	bookings, _ := m.Int64Counter("caretaking.service.bookings_created", metric.WithDescription("Number of bookings created"))
	changes, _ := m.Int64Counter("caretaking.service.booking_status_changes", metric.WithDescription("Number of booking status updates"))
	return serviceMetrics{servicesCreated: services, bookingsCreated: bookings, statusChanges: changes}
}

func (m serviceMetrics) recordServiceCreated(ctx context.Context, serviceType string) {
	if m.servicesCreated != nil {
		m.servicesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("service.type", serviceType)))
	}
}

func (m serviceMetrics) recordBookingCreated(ctx context.Context) {
	if m.bookingsCreated != nil {
		m.bookingsCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status string) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("booking.status", status)))
	}
}

var _ ports.Service = (*Service)(nil)
