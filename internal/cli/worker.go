package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"daily-refresher/internal/infra/worker"
	"daily-refresher/internal/observability/logging"
	pkgconfig "daily-refresher/internal/pkg/config"
	"daily-refresher/internal/usecase/refresh"
)

const shutdownTimeout = 30 * time.Second

func newWorkerCommand(app *App) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run refreshes on a cron schedule",
		Long: `Run the refresher as a long-lived process. A refresh is triggered on
CRON_SCHEDULE (default "0 9 * * *") in WORKER_TIMEZONE. Health probes are
served on WORKER_HEALTH_PORT and Prometheus metrics on METRICS_PORT.

The process stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd, app, runOnStart)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "trigger one refresh right after startup")
	return cmd
}

func runWorker(cmd *cobra.Command, app *App, runOnStart bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := logging.FromContext(ctx)

	metrics := worker.NewWorkerMetrics(app.Registerer)
	cfg, _ := worker.LoadConfigFromEnv(logger, metrics)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("worker configuration: %w", err)
	}

	store, err := app.openStore(logger, pkgconfig.NewConfigMetrics(app.Registerer, "refresher"))
	if err != nil {
		return err
	}
	// The vault and presenter are bound at startup; later settings changes
	// reach the summarizer, selection and pipeline on the next tick.
	settings := store.Snapshot()
	pres, err := newPresenter(cmd.OutOrStdout(), outputText, settings)
	if err != nil {
		return err
	}
	svc, err := refresh.NewService(app.newVault(settings), pres, summarizerFactory)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}

	scheduler := worker.NewScheduler(cfg, store, svc, metrics, logger)
	health := worker.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	metricsServer := worker.NewMetricsServer(fmt.Sprintf(":%d", cfg.MetricsPort), app.Gatherer, logger)

	serveCtx, cancelServe := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	serverErr := make(chan error, 2)
	for _, start := range []func(context.Context) error{health.Start, metricsServer.Start} {
		start := start
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := start(serveCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if err := scheduler.Start(ctx); err != nil {
		cancelServe()
		wg.Wait()
		return err
	}
	health.SetReady(true)
	logger.Info("worker started", slog.Time("next_run", scheduler.Next()))

	if runOnStart {
		go scheduler.RunOnce(ctx)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serverErr:
		logger.Error("server failed, shutting down", slog.Any("error", runErr))
	}

	health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler stop failed", slog.Any("error", err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		logger.Error("refresh service stop failed", slog.Any("error", err))
	}
	cancelServe()
	wg.Wait()
	logger.Info("worker stopped")
	return runErr
}
