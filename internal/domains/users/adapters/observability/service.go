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

	"github.com/Apurer/pet-marketplace/internal/domains/users/application/types"
	userdomain "github.com/Apurer/pet-marketplace/internal/domains/users/domain"
	userports "github.com/Apurer/pet-marketplace/internal/domains/users/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const tracerName = "github.com/Apurer/pet-marketplace/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
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

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, input types.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register")
	defer span.End()
	user, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "user registered", slog.String("user.id", user.ID))
	return user, nil
}

func (s *Service) Login(ctx context.Context, input types.LoginInput) (*types.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	result, err := s.inner.Login(ctx, input)
	if err != nil {
		s.metrics.recordLogin(ctx, "failure")
		s.recordFailure(ctx, span, err, "login refused")
		return nil, err
	}
	s.metrics.recordLogin(ctx, "success")
	span.SetAttributes(attribute.String("user.id", result.User.ID))
	s.logInfo(ctx, "user logged in", slog.String("user.id", result.User.ID))
	return result, nil
}

// Authenticate runs on every protected request and only logs at debug level.
func (s *Service) Authenticate(ctx context.Context, token string) (authz.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	principal, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelDebug, "token rejected", slog.String("error", err.Error()))
		return principal, err
	}
	span.SetAttributes(attribute.String("user.id", principal.UserID))
	return principal, nil
}

func (s *Service) Logout(ctx context.Context, principal authz.Principal) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	if err := s.inner.Logout(ctx, principal); err != nil {
		return s.handleError(ctx, span, err, "failed to log out", slog.String("user.id", principal.UserID))
	}
	s.logInfo(ctx, "user logged out", slog.String("user.id", principal.UserID))
	return nil
}

func (s *Service) GetPublicProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetPublicProfile", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	profile, err := s.inner.GetPublicProfile(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load profile", slog.String("user.id", userID))
	}
	return profile, nil
}

func (s *Service) GetCurrentProfile(ctx context.Context, principal authz.Principal) (*types.UserProfile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetCurrentProfile", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	profile, err := s.inner.GetCurrentProfile(ctx, principal)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load current profile", slog.String("user.id", principal.UserID))
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, principal authz.Principal, patch userdomain.ProfilePatch) (*types.UserProfile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.String("user.id", principal.UserID)))
	defer span.End()
	profile, err := s.inner.UpdateProfile(ctx, principal, patch)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user.id", principal.UserID))
	}
	s.logInfo(ctx, "profile updated", slog.String("user.id", principal.UserID))
	return profile, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.PurgeExpiredSessions")
	defer span.End()
	purged, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	span.SetAttributes(attribute.Int64("session.purged", purged))
	s.logInfo(ctx, "expired sessions purged", slog.Int64("count", purged))
	return purged, nil
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

func (s *Service) recordFailure(ctx context.Context, span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.String("error", err.Error()))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

type serviceMetrics struct {
	registered metric.Int64Counter
	logins     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of accounts registered"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of login attempts"))
	return serviceMetrics{registered: registered, logins: logins}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context, result string) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
