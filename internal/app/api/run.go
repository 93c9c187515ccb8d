package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	marketplaceserver "github.com/Apurer/pet-marketplace/go"
	salesworkflows "github.com/Apurer/pet-marketplace/internal/domains/sales/adapters/workflows"
	"github.com/Apurer/pet-marketplace/internal/platform/auth"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	"github.com/Apurer/pet-marketplace/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-marketplace/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

const serviceName = "pet-marketplace-api"

// Run boots the marketplace HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos, err := BuildRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupRepos()

	issuer, err := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to build token issuer: %w", err)
	}
	services := NewServices(repos, ServiceOptions{
		Instruments: instruments,
		Tokens:      issuer,
		SessionTTL:  cfg.SessionTTL,
	})
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running checkout inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		services.Checkout = salesworkflows.NewTemporalCheckout(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := marketplaceserver.NewRouter(Handlers(services))
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("marketplace API listening", slog.String("addr", addr), slog.String("environment", cfg.Environment))
	if err := router.Run(addr); err != nil {
		logger.Error("marketplace API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// BuildRepositories connects to Postgres when configured and migrates the
// schema. Without a reachable database every domain shares one in-memory store.
func BuildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (Repositories, func(), error) {
	db, cleanup := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return MemoryRepositories(memdb.New()), cleanup, nil
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return Repositories{}, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("repositories configured with postgres")
	return PostgresRepositories(db), cleanup, nil
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

// ConnectTemporalClient dials Temporal with tracing and the process logger.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	return connectTemporalClient(cfg, instruments)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
