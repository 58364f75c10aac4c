package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port                 string
	MoviesInfoURL        string
	ReviewsURL           string
	UpstreamTimeoutSecs  int
	RetryMaxRetries      int
	RetryDelayMillis     int
	UpstreamRateLimitRPS float64
	AggregateParallel    bool
	ReadTimeoutSecs      int
	WriteTimeoutSecs     int
	IdleTimeoutSecs      int
	LogLevel             string
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		MoviesInfoURL:        os.Getenv("MOVIES_INFO_URL"),
		ReviewsURL:           os.Getenv("REVIEWS_URL"),
		UpstreamTimeoutSecs:  getEnvInt("UPSTREAM_TIMEOUT_SECS", 5),
		RetryMaxRetries:      getEnvInt("RETRY_MAX_RETRIES", 3),
		RetryDelayMillis:     getEnvInt("RETRY_DELAY_MS", 1000),
		UpstreamRateLimitRPS: getEnvFloat("UPSTREAM_RATE_LIMIT_RPS", 0),
		AggregateParallel:    getEnvBool("AGGREGATE_PARALLEL", false),
		ReadTimeoutSecs:      getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:     getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:      getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if cfg.MoviesInfoURL == "" {
		return Config{}, fmt.Errorf("MOVIES_INFO_URL is required")
	}
	if err := validateURL(cfg.MoviesInfoURL); err != nil {
		return Config{}, fmt.Errorf("MOVIES_INFO_URL: %w", err)
	}
	if cfg.ReviewsURL == "" {
		return Config{}, fmt.Errorf("REVIEWS_URL is required")
	}
	if err := validateURL(cfg.ReviewsURL); err != nil {
		return Config{}, fmt.Errorf("REVIEWS_URL: %w", err)
	}
	if cfg.UpstreamTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("UPSTREAM_TIMEOUT_SECS must be positive")
	}
	if cfg.RetryMaxRetries < 0 {
		return Config{}, fmt.Errorf("RETRY_MAX_RETRIES must be non-negative")
	}
	if cfg.RetryDelayMillis <= 0 {
		return Config{}, fmt.Errorf("RETRY_DELAY_MS must be positive")
	}
	if cfg.UpstreamRateLimitRPS < 0 {
		return Config{}, fmt.Errorf("UPSTREAM_RATE_LIMIT_RPS must be non-negative")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return cfg, nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
