package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DynamoDB comment table configuration.
	CommentsTable  string
	AWSRegion      string
	DynamoEndpoint string // non-empty points at a local DynamoDB

	// Weather (coat advice) configuration.
	WeatherAPIKey    string
	WeatherEnabled   bool
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int

	// Per-IP rate limiting for the public API.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	weatherCacheTTL, err := parseDuration("WEATHER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	weatherAPIKey := os.Getenv("WEATHER_API_KEY")
	weatherEnabled := weatherAPIKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CommentsTable:  envOrDefault("COMMENTS_TABLE", "Comments"),
		AWSRegion:      envOrDefault("AWS_REGION", "eu-west-2"),
		DynamoEndpoint: os.Getenv("DYNAMO_ENDPOINT"),

		WeatherAPIKey:    weatherAPIKey,
		WeatherEnabled:   weatherEnabled,
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  weatherCacheTTL,
		WeatherCacheSize: parseIntOrDefault("WEATHER_CACHE_SIZE", 1000),

		RateLimitRPS:   parseFloatOrDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst: parseIntOrDefault("RATE_LIMIT_BURST", 30),
	}

	if cfg.CommentsTable == "" {
		return nil, errors.New("COMMENTS_TABLE is required")
	}
	if cfg.WeatherEnabled && cfg.WeatherAPIKey == "" {
		return nil, errors.New("WEATHER_ENABLED is true but WEATHER_API_KEY is not set")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, errors.New("rate limit settings must be positive")
	}

	return cfg, nil
}

// envOrDefault returns the environment variable value, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDuration parses a duration environment variable, requiring a positive value.
func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntOrDefault(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseFloatOrDefault(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
