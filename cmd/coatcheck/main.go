package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coatcheck/coatcheck-service/internal/adapter/dynamo"
	httpadapter "github.com/coatcheck/coatcheck-service/internal/adapter/http"
	"github.com/coatcheck/coatcheck-service/internal/adapter/weather"
	"github.com/coatcheck/coatcheck-service/internal/comments"
	"github.com/coatcheck/coatcheck-service/internal/config"
	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ddb, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create dynamodb client", "error", err)
		os.Exit(1)
	}
	store := dynamo.NewStore(ddb, cfg.CommentsTable, logger, metrics)
	commentSvc := comments.NewService(store, logger, metrics)

	// Coat advice is feature-flagged via WEATHER_ENABLED / WEATHER_API_KEY.
	var provider domain.WeatherProvider
	if cfg.WeatherEnabled {
		client := weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, metrics, logger)
		provider = weather.NewCachedProvider(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("coat advice enabled", "cache_size", cfg.WeatherCacheSize, "cache_ttl", cfg.WeatherCacheTTL)
	} else {
		logger.Info("coat advice disabled")
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		Comments:       commentSvc,
		Weather:        provider,
		Ready:          store,
		Metrics:        metrics,
		Logger:         logger,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
