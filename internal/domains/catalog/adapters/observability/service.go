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

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const tracerName = "github.com/Apurer/pet-marketplace/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
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

// New wraps the core catalog service.
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

func (s *Service) Search(ctx context.Context, principal authz.Principal, filter types.SearchFilter) (types.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Search", trace.WithAttributes(
		attribute.String("catalog.filter.type", filter.Type),
		attribute.Bool("catalog.filter.owner_view", filter.ViewAsOwner),
		attribute.Int("catalog.page", filter.Page),
	))
	defer span.End()
	result, err := s.inner.Search(ctx, principal, filter)
	if err != nil {
		return result, s.handleError(ctx, span, err, "catalog search failed", slog.Bool("ownerView", filter.ViewAsOwner))
	}
	span.SetAttributes(attribute.Int64("catalog.result.total", result.Total))
	return result, nil
}

func (s *Service) GetPet(ctx context.Context, id int64) (*domain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetPet", trace.WithAttributes(attribute.Int64("pet.id", id)))
	defer span.End()
	listing, err := s.inner.GetPet(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get pet", slog.Int64("pet.id", id))
	}
	return listing, nil
}

func (s *Service) CreatePet(ctx context.Context, principal authz.Principal, input types.CreatePetInput) (*domain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreatePet", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.String("pet.type", input.Type),
	))
	defer span.End()
	s.logInfo(ctx, "creating pet listing", slog.String("owner", principal.UserID), slog.String("type", input.Type))
	listing, err := s.inner.CreatePet(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create pet", slog.String("owner", principal.UserID))
	}
	s.metrics.recordCreated(ctx, string(listing.Pet.Type))
	s.logInfo(ctx, "pet listing created", slog.Int64("pet.id", listing.Pet.ID))
	return listing, nil
}

func (s *Service) UpdatePet(ctx context.Context, principal authz.Principal, input types.UpdatePetInput) (*domain.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdatePet", trace.WithAttributes(
		attribute.Int64("pet.id", input.PetID),
		attribute.String("user.id", principal.UserID),
	))
	defer span.End()
	listing, err := s.inner.UpdatePet(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update pet", slog.Int64("pet.id", input.PetID))
	}
	s.metrics.recordUpdated(ctx)
	return listing, nil
}

func (s *Service) DeletePet(ctx context.Context, principal authz.Principal, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeletePet", trace.WithAttributes(
		attribute.Int64("pet.id", id),
		attribute.String("user.id", principal.UserID),
	))
	defer span.End()
	if err := s.inner.DeletePet(ctx, principal, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete pet", slog.Int64("pet.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "pet listing deleted", slog.Int64("pet.id", id))
	return nil
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
	created metric.Int64Counter
	updated metric.Int64Counter
	deleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("catalog.service.pets_created", metric.WithDescription("Number of pet listings created"))
	updated, _ := m.Int64Counter("catalog.service.pets_updated", metric.WithDescription("Number of pet listings updated"))
	deleted, _ := m.Int64Counter("catalog.service.pets_deleted", metric.WithDescription("Number of pet listings deleted"))
	return serviceMetrics{created: created, updated: updated, deleted: deleted}
}

func (m serviceMetrics) recordCreated(ctx context.Context, petType string) {
	if m.created != nil {
		m.created.Add(ctx, 1, metric.WithAttributes(attribute.String("pet.type", petType)))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.updated != nil {
		m.updated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.deleted != nil {
		m.deleted.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
