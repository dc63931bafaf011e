package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"painel/internal/backend"
	"painel/internal/cli"
	apphttp "painel/internal/http"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/theme"
)

const writeRateLimit = 60

func main() {
	cfg, logger := cli.Bootstrap()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).Create(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	themes := theme.NewStore(cfg.ThemeFile)
	if err := themes.Load(); err != nil {
		logger.Warn("Failed to load theme preference, using default", log.FieldError, err)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Budget:         be.Service,
		Themes:         themes,
		Metrics:        metrics.New(),
		Logger:         logger,
		CacheSize:      cfg.ChartCacheSize,
		CacheTTL:       cfg.ChartCacheTTL,
		WriteRateLimit: writeRateLimit,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := be.Close(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	})

	logger.Info("Starting painel server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldTheme, themes.Current().Name,
		"amqp_enabled", be.AMQP != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to start", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
}
