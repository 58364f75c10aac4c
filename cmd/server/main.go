package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/Clark-Hu/movies-service/internal/config"
	httpserver "github.com/Clark-Hu/movies-service/internal/http"
	"github.com/Clark-Hu/movies-service/internal/movieinfo"
	"github.com/Clark-Hu/movies-service/internal/movies"
	"github.com/Clark-Hu/movies-service/internal/retry"
	"github.com/Clark-Hu/movies-service/internal/reviews"
	"github.com/Clark-Hu/movies-service/internal/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      parseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
	})).With("service", "movies-api")
	slog.SetDefault(logger)

	timeout := time.Duration(cfg.UpstreamTimeoutSecs) * time.Second
	httpClient := upstream.NewHTTPClient(timeout)

	policy := retry.NewPolicy(upstream.IsServerError)
	policy.MaxRetries = uint64(cfg.RetryMaxRetries)
	policy.Delay = time.Duration(cfg.RetryDelayMillis) * time.Millisecond

	infoCaller := upstream.NewCaller(upstream.Options{
		Name:         "movieinfo",
		Timeout:      timeout,
		RateLimitRPS: cfg.UpstreamRateLimitRPS,
		Client:       httpClient,
		Logger:       logger,
	})
	infoClient, err := movieinfo.NewHTTPClient(cfg.MoviesInfoURL, infoCaller, policy, logger)
	if err != nil {
		logger.Error("init movie info client", "error", err)
		os.Exit(1)
	}

	reviewsCaller := upstream.NewCaller(upstream.Options{
		Name:         "reviews",
		Timeout:      timeout,
		RateLimitRPS: cfg.UpstreamRateLimitRPS,
		Client:       httpClient,
		Logger:       logger,
	})
	reviewsClient, err := reviews.NewHTTPClient(cfg.ReviewsURL, reviewsCaller, policy, logger)
	if err != nil {
		logger.Error("init reviews client", "error", err)
		os.Exit(1)
	}

	svc := movies.NewService(infoClient, reviewsClient, movies.Options{
		Parallel: cfg.AggregateParallel,
		Logger:   logger,
	})
	server := httpserver.New(cfg, svc, logger)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("movies api stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("movies api stopped")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
