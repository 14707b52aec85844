package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1024, cfg.Server.MaxConns)

	assert.Equal(t, "Sandstorm", cfg.Shell.ProductName)
	assert.Equal(t, "http:", cfg.Shell.Protocol)
	assert.Equal(t, "*.local.sandstorm.io:6080", cfg.Shell.WildcardHost)

	assert.Equal(t, "localhost:50051", cfg.Remote.SessionAddr)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Empty(t, cfg.Store.Seed)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                    "9000",
		"HOST":                    "127.0.0.1",
		"MAX_CONNS":               "0",
		"PRODUCT_NAME":            "Sandcastle",
		"PROTOCOL":                "https:",
		"WILDCARD_HOST":           "*.example.org",
		"SESSION_ADDR":            "sessions:50051",
		"REMOTE_TIMEOUT":          "5s",
		"STORE_DRIVER":            "sqlite",
		"STORE_PATH":              "/tmp/shell.db",
		"STORE_SEED":              "fixtures.yaml",
		"LOG_LEVEL":               "debug",
		"LOG_DEV":                 "true",
		"RATE_LIMIT_RPS":          "500",
		"RATE_LIMIT_BURST":        "1000",
		"RATE_LIMIT_ENABLED":      "false",
		"RATE_LIMIT_GLOBAL_RPS":   "2000",
		"RATE_LIMIT_GLOBAL_BURST": "4000",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 0, cfg.Server.MaxConns)
	assert.Equal(t, "Sandcastle", cfg.Shell.ProductName)
	assert.Equal(t, "https:", cfg.Shell.Protocol)
	assert.Equal(t, "*.example.org", cfg.Shell.WildcardHost)
	assert.Equal(t, "sessions:50051", cfg.Remote.SessionAddr)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/shell.db", cfg.Store.Path)
	assert.Equal(t, "fixtures.yaml", cfg.Store.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2000, cfg.RateLimit.GlobalRPS)
	assert.Equal(t, 4000, cfg.RateLimit.GlobalBurst)
}

func TestLoadRejectsNegativeGlobalLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_GLOBAL_RPS", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("REMOTE_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
