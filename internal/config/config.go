// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Reference data
	RefdataOverlayPath    string        // Optional JSON overlay for the blacklist/trusted registry
	RefdataReloadInterval time.Duration // 0 disables periodic reloads

	// Scan settings
	HistoryLimit int // Max history rows loaded per scan

	// Security
	RateLimitRPS int
	AdminSecret  string // Admin API secret

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint (optional, tracing disabled if not set)
}

const (
	DefaultPort         = "8080"
	DefaultEnv          = "development"
	DefaultLogLevel     = "info"
	DefaultRateLimit    = 100
	DefaultHistoryLimit = 500
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", DefaultPort),
		Env:                   getEnv("ENV", DefaultEnv),
		LogLevel:              getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:           os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		RefdataOverlayPath:    os.Getenv("REFDATA_OVERLAY_PATH"),
		RefdataReloadInterval: getEnvDuration("REFDATA_RELOAD_INTERVAL", 0),
		HistoryLimit:          int(getEnvInt64("HISTORY_LIMIT", DefaultHistoryLimit)),
		RateLimitRPS:          int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
		AdminSecret:           os.Getenv("ADMIN_SECRET"),
		OTLPEndpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are sane
func (c *Config) Validate() error {
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.RefdataOverlayPath != "" {
		if _, err := os.Stat(c.RefdataOverlayPath); err != nil {
			return fmt.Errorf("REFDATA_OVERLAY_PATH: %w", err)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
