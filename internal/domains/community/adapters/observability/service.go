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

	"github.com/Apurer/pet-marketplace/internal/domains/community/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const tracerName = "github.com/Apurer/pet-marketplace/internal/domains/community/adapters/observability/service"

// Service decorates the community service with tracing, logging, and metrics.
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

func (s *Service) CreatePost(ctx context.Context, principal authz.Principal, input types.CreatePostInput) (*domain.Post, error) {
	ctx, span := s.tracer.Start(ctx, "CommunityService.CreatePost", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	post, err := s.inner.CreatePost(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create post", slog.String("author", principal.UserID))
	}
	s.metrics.recordPostCreated(ctx)
	s.logInfo(ctx, "post created", slog.Int64("post.id", post.ID))
	return post, nil
}

func (s *Service) AddComment(ctx context.Context, principal authz.Principal, input types.AddCommentInput) (*domain.Comment, error) {
	ctx, span := s.tracer.Start(ctx, "CommunityService.AddComment", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.Int64("post.id", input.PostID),
	))
	defer span.End()
	comment, err := s.inner.AddComment(ctx, principal, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add comment", slog.Int64("post.id", input.PostID))
	}
	return comment, nil
}

func (s *Service) DeletePost(ctx context.Context, principal authz.Principal, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CommunityService.DeletePost", trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.Int64("post.id", id),
	))
	defer span.End()
	if err := s.inner.DeletePost(ctx, principal, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete post", slog.Int64("post.id", id))
	}
	s.logInfo(ctx, "post deleted", slog.Int64("post.id", id), slog.String("by", principal.UserID))
	return nil
}

func (s *Service) ListPosts(ctx context.Context, filterType string) (types.Feed, error) {
	ctx, span := s.tracer.Start(ctx, "CommunityService.ListPosts", trace.WithAttributes(attribute.String("post.filter", filterType)))
	defer span.End()
	feed, err := s.inner.ListPosts(ctx, filterType)
	if err != nil {
		return types.Feed{}, s.handleError(ctx, span, err, "failed to list posts")
	}
	if feed.IgnoredFilter != "" && s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "ignoring unknown post filter", slog.String("filter", feed.IgnoredFilter))
	}
	span.SetAttributes(attribute.Int("post.count", len(feed.Posts)))
	return feed, nil
}

func (s *Service) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, span := s.tracer.Start(ctx, "CommunityService.GetPost", trace.WithAttributes(attribute.Int64("post.id", id)))
	defer span.End()
	post, err := s.inner.GetPost(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get post", slog.Int64("post.id", id))
	}
	return post, nil
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
	postsCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	posts, _ := m.Int64Counter("community.service.posts_created", metric.WithDescription("Number of community posts created"))
	return serviceMetrics{postsCreated: posts}
}

func (m serviceMetrics) recordPostCreated(ctx context.Context) {
	if m.postsCreated != nil {
		m.postsCreated.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
