package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sergss/geomark/internal/batch"
	"github.com/sergss/geomark/internal/cache"
	"github.com/sergss/geomark/internal/config"
	"github.com/sergss/geomark/internal/geocoding"
	"github.com/sergss/geomark/internal/metrics"
	"github.com/sergss/geomark/internal/presenter"
	"github.com/sergss/geomark/internal/repository"
	"github.com/sergss/geomark/internal/server"
	"github.com/sergss/geomark/internal/settings"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Search history is optional; without a database the runs are simply not recorded.
	var history repository.Interface = repository.Noop{}
	var dbPinger server.Pinger
	if cfg.DatabaseURL != "" {
		dtb, err := repository.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()
		history = repository.NewRepository(dtb, logger)
		dbPinger = dtb
		logger.InfoContext(ctx, "Search history enabled")
	}

	// The geocode cache is optional as well.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisStore
		logger.InfoContext(ctx, "Geocode cache enabled", "addr", cfg.RedisAddr)
	}

	// Providers are built per run from the key currently in the settings
	// store, so a key saved through the API takes effect immediately.
	newProvider := func(apiKey string) (geocoding.Provider, error) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:      geocoding.ProviderType(cfg.ProviderType),
			APIKey:    apiKey,
			RateLimit: cfg.RateLimit,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		if store != nil {
			const cacheTTL = 24 * time.Hour
			return cache.NewCachedProvider(provider, store, cacheTTL, logger), nil
		}
		return provider, nil
	}

	view := presenter.NewViewState()
	runner := batch.NewRunner(logger, view, history, appMetrics, cfg.JobDelay, cfg.FitMargin)

	settingsStore := settings.NewStore(cfg.SettingsPath)

	srv := server.New(ctx, server.Deps{
		Logger:       logger,
		Runner:       runner,
		View:         view,
		Settings:     settingsStore,
		History:      history,
		Metrics:      appMetrics,
		NewProvider:  newProvider,
		ProviderName: cfg.ProviderType,
		DB:           dbPinger,
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		"provider", cfg.ProviderType, "port", cfg.Port)

	readTimeout := 5
	writeTimeout := 60
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(reg),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorContext(ctx, "HTTP server failed", "error", err)
			stop()
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownTimeout := 5 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(ctx, "HTTP server shutdown failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			tint.NewHandler(os.Stdout, &tint.Options{
				Level:      slog.LevelDebug,
				TimeFormat: time.Kitchen,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		logger.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return logger
}
