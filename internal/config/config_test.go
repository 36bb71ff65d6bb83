package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "PORT", "")
	setEnv(t, "HISTORY_LIMIT", "")
	setEnv(t, "RATE_LIMIT_RPS", "")
	setEnv(t, "REFDATA_OVERLAY_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitRPS)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9090")
	setEnv(t, "HISTORY_LIMIT", "100")
	setEnv(t, "RATE_LIMIT_RPS", "25")
	setEnv(t, "ADMIN_SECRET", "s3cret")
	setEnv(t, "REFDATA_RELOAD_INTERVAL", "5m")
	setEnv(t, "REFDATA_OVERLAY_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 25, cfg.RateLimitRPS)
	assert.Equal(t, "s3cret", cfg.AdminSecret)
	assert.Equal(t, 5*time.Minute, cfg.RefdataReloadInterval)
}

func TestLoad_MissingOverlayFile(t *testing.T) {
	setEnv(t, "REFDATA_OVERLAY_PATH", "/nonexistent/overlay.json")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REFDATA_OVERLAY_PATH")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "valid config",
			config:  Config{HistoryLimit: 500, RateLimitRPS: 100},
			wantErr: "",
		},
		{
			name:    "zero history limit",
			config:  Config{HistoryLimit: 0, RateLimitRPS: 100},
			wantErr: "HISTORY_LIMIT",
		},
		{
			name:    "negative rate limit",
			config:  Config{HistoryLimit: 500, RateLimitRPS: -1},
			wantErr: "RATE_LIMIT_RPS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestGetEnv(t *testing.T) {
	setEnv(t, "TEST_VAR", "custom_value")

	assert.Equal(t, "custom_value", getEnv("TEST_VAR", "default"))
	assert.Equal(t, "default", getEnv("NONEXISTENT_VAR", "default"))
}

func TestGetEnvInt64(t *testing.T) {
	setEnv(t, "TEST_INT", "42")
	setEnv(t, "TEST_INVALID", "not_a_number")

	assert.Equal(t, int64(42), getEnvInt64("TEST_INT", 0))
	assert.Equal(t, int64(99), getEnvInt64("NONEXISTENT_VAR", 99))
	assert.Equal(t, int64(99), getEnvInt64("TEST_INVALID", 99)) // Falls back on parse error
}

func TestGetEnvDuration(t *testing.T) {
	setEnv(t, "TEST_DUR", "30s")
	setEnv(t, "TEST_DUR_BAD", "eventually")

	assert.Equal(t, 30*time.Second, getEnvDuration("TEST_DUR", 0))
	assert.Equal(t, time.Minute, getEnvDuration("NONEXISTENT_VAR", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DUR_BAD", time.Minute))
}
