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

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/favorites/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/page"
)

const tracerName = "github.com/Apurer/pet-marketplace/internal/domains/favorites/adapters/observability/service"

// Service decorates the favorites service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	toggles metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.toggles, _ = m.Int64Counter("favorites.service.toggles", metric.WithDescription("Number of favorite toggles by result"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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

func (s *Service) Toggle(ctx context.Context, principal authz.Principal, petID int64) (domain.ToggleResult, error) {
	ctx, span := s.tracer.Start(ctx, "FavoritesService.Toggle", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.Int64("pet.id", petID),
	))
	defer span.End()
	result, err := s.inner.Toggle(ctx, principal, petID)
	if err != nil {
		return "", s.handleError(ctx, span, err, "failed to toggle favorite", slog.Int64("pet.id", petID))
	}
	span.SetAttributes(attribute.String("favorites.result", string(result)))
	if s.toggles != nil {
		s.toggles.Add(ctx, 1, metric.WithAttributes(attribute.String("result", string(result))))
	}
	return result, nil
}

func (s *Service) IsFavorite(ctx context.Context, principal authz.Principal, petID int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "FavoritesService.IsFavorite", trace.WithAttributes(attribute.Int64("pet.id", petID)))
	defer span.End()
	ok, err := s.inner.IsFavorite(ctx, principal, petID)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to check favorite", slog.Int64("pet.id", petID))
	}
	return ok, nil
}

func (s *Service) List(ctx context.Context, principal authz.Principal, req page.Request) (page.Result[domain.FavoritePet], error) {
	ctx, span := s.tracer.Start(ctx, "FavoritesService.List", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.Int("page", req.Page),
	))
	defer span.End()
	result, err := s.inner.List(ctx, principal, req)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list favorites", slog.String("user.id", principal.UserID))
	}
	span.SetAttributes(attribute.Int64("favorites.total", result.Total))
	return result, nil
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

var _ ports.Service = (*Service)(nil)
