package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-marketplace/internal/app/api"
	orderactivities "github.com/Apurer/pet-marketplace/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/pet-marketplace/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/pet-marketplace/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "pet-marketplace-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos, err := api.BuildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupRepos()
	if cfg.PostgresDSN == "" {
		logger.Warn("worker running on the in-memory store; orders will not be visible to the API process")
	}
	services := api.NewServices(repos, api.ServiceOptions{Instruments: instruments})
	orderActivities := orderactivities.NewActivities(services.Sales)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.CheckoutTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.CheckoutWorkflow, workflow.RegisterOptions{Name: orderworkflows.CheckoutWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.CheckoutTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
