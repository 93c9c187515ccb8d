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

	"github.com/Apurer/pet-marketplace/internal/domains/sales/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/sales/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const tracerName = "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/observability/service"

// Service decorates the sales service with tracing, logging, and metrics.
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

func (s *Service) CreateOrder(ctx context.Context, principal authz.Principal, input types.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CreateOrder", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.Int("order.pet_count", len(input.PetIDs)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()
	order, err := s.inner.CreateOrder(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("buyer", principal.UserID))
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "order created", slog.Int64("order.id", order.ID), slog.Int64("totalCents", order.TotalAmountCents))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, principal authz.Principal, id int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()
	order, err := s.inner.GetOrder(ctx, principal, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.Int64("order.id", id))
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, principal authz.Principal) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListOrders", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	orders, err := s.inner.ListOrders(ctx, principal)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("buyer", principal.UserID))
	}
	span.SetAttributes(attribute.Int("order.count", len(orders)))
	return orders, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, principal authz.Principal, input types.UpdateOrderStatusInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.UpdateOrderStatus", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.String("order.status", input.Status),
	))
	defer span.End()
	order, err := s.inner.UpdateOrderStatus(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.Int64("order.id", input.OrderID), slog.String("status", input.Status))
	}
	s.metrics.recordStatusChange(ctx, string(order.Status))
	s.logInfo(ctx, "order status updated", slog.Int64("order.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, principal authz.Principal, id int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CancelOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()
	order, err := s.inner.CancelOrder(ctx, principal, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.Int64("order.id", id))
	}
	s.metrics.recordStatusChange(ctx, string(order.Status))
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", id))
	return order, nil
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
	created       metric.Int64Counter
	statusChanges metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("sales.service.orders_created", metric.WithDescription("Number of orders placed"))
	changes, _ := m.Int64Counter("sales.service.order_status_changes", metric.WithDescription("Number of order status updates"))
	return serviceMetrics{created: created, statusChanges: changes}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status string) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", status)))
	}
}

var _ ports.Service = (*Service)(nil)
