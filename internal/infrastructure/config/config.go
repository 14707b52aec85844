package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all shell configuration.
type Config struct {
	Server    ServerConfig
	Shell     ShellConfig
	Remote    RemoteConfig
	Store     StoreConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// MaxConns caps concurrent client connections; zero means unlimited
	MaxConns int `envconfig:"MAX_CONNS" default:"1024"`
}

// ShellConfig holds presentation settings.
type ShellConfig struct {
	ProductName  string `envconfig:"PRODUCT_NAME" default:"Sandstorm"`
	Protocol     string `envconfig:"PROTOCOL" default:"http:"`
	WildcardHost string `envconfig:"WILDCARD_HOST" default:"*.local.sandstorm.io:6080"`
}

// RemoteConfig holds the addresses of the session server.
type RemoteConfig struct {
	SessionAddr  string        `envconfig:"SESSION_ADDR" default:"localhost:50051"`
	FeedURL      string        `envconfig:"FEED_URL" default:"ws://localhost:6080/_feed"`
	TokenInfoURL string        `envconfig:"TOKENINFO_URL" default:"http://localhost:6080/_tokeninfo"`
	Timeout      time.Duration `envconfig:"REMOTE_TIMEOUT" default:"30s"`
}

// StoreConfig selects and configures the data store.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"memory"`
	Path   string `envconfig:"STORE_PATH" default:"shell.db"`
	Seed   string `envconfig:"STORE_SEED"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`

	// GlobalRPS caps the whole server on top of the per-client limit; zero disables it
	GlobalRPS   int `envconfig:"RATE_LIMIT_GLOBAL_RPS" default:"0"`
	GlobalBurst int `envconfig:"RATE_LIMIT_GLOBAL_BURST" default:"0"`
}

// Store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.GlobalRPS < 0 || c.RateLimit.GlobalBurst < 0 {
		return fmt.Errorf("global rate limit must not be negative")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8000",
			Host:     "0.0.0.0",
			MaxConns: 1024,
		},
		Shell: ShellConfig{
			ProductName:  "Sandstorm",
			Protocol:     "http:",
			WildcardHost: "*.local.sandstorm.io:6080",
		},
		Remote: RemoteConfig{
			SessionAddr:  "localhost:50051",
			FeedURL:      "ws://localhost:6080/_feed",
			TokenInfoURL: "http://localhost:6080/_tokeninfo",
			Timeout:      30 * time.Second,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   "shell.db",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
