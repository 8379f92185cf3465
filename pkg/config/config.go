package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string
	LogLevel       string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// RedisURL enables the shared replay ledger. Empty means an in-process ledger.
	RedisURL string

	Market22 Market22Config

	// AdminJWTSecret signs bearer tokens for the read-only admin endpoints.
	// Empty disables those endpoints.
	AdminJWTSecret string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type Market22Config struct {
	// WebhookSecret is provisioned per product in the Market22 dashboard.
	WebhookSecret string

	// ReplayWindow bounds the accepted clock skew of x-market22-timestamp.
	ReplayWindow time.Duration

	// MaxBodyBytes caps the webhook request body.
	MaxBodyBytes int64

	// APIKey and APIBaseURL enable re-fetching authoritative order state after a delivery.
	APIKey     string
	APIBaseURL string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		LogLevel:       env("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "market22hooks"),
			User:     env("DB_USER", "market22hooks"),
			Password: env("DB_PASSWORD", "market22hooks"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),
		Market22: Market22Config{
			WebhookSecret: os.Getenv("MARKET22_WEBHOOK_SECRET"),
			ReplayWindow:  envDuration("MARKET22_REPLAY_WINDOW", 3*time.Minute),
			MaxBodyBytes:  envInt64("WEBHOOK_MAX_BODY_BYTES", 1<<20),
			APIKey:        os.Getenv("MARKET22_API_KEY"),
			APIBaseURL:    env("MARKET22_API_BASE_URL", "https://api.market22.com/v1"),
		},
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
	}
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
