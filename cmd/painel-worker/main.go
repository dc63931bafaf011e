package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"painel/internal/amqp"
	"painel/internal/cli"
	"painel/internal/dashboard"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/theme"
	"painel/internal/worker"
)

const metricsAddr = ":9091"

func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting painel-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	surface, err := dashboard.NewFileSurface(cfg.SnapshotDir)
	if err != nil {
		logger.Error("Failed to prepare snapshot directory", log.FieldError, err, "dir", cfg.SnapshotDir)
		os.Exit(1)
	}

	themes := theme.NewStore(cfg.ThemeFile)
	if err := themes.Load(); err != nil {
		logger.Warn("Failed to load theme preference, using default", log.FieldError, err)
	}

	m := metrics.New()
	api := dashboard.NewAPIClient(cfg.APIBaseURL, &http.Client{Timeout: 30 * time.Second})
	orchestrator := dashboard.New(api, surface, themes,
		dashboard.WithConcurrency(cfg.RenderConcurrency),
		dashboard.WithMetrics(m),
		dashboard.WithLogger(logger),
		dashboard.WithReadinessHook(func(ctx context.Context) error {
			return themes.Load()
		}))
	alerts := worker.NewAlertWorker(orchestrator, api, m, logger)

	metricsSrv := &http.Server{Addr: metricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", log.FieldError, err)
		}
	}()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(ctx context.Context) {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown error", log.FieldError, err)
		}
	})

	if _, err := alerts.StartupSnapshot(ctx); err != nil {
		// Don't exit; alerts still refresh their own charts
		logger.Warn("Startup snapshot failed", log.FieldError, err)
	}

	if err := amqpClient.ConsumeBudgetAlerts(ctx, alerts.HandleBudgetAlert); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped")
}
