package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

// Config holds the runtime configuration read from the environment
type Config struct {
	Port     string `env:"API_PORT" envDefault:"80"`
	Host     string `env:"API_HOST"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Catalogue document
	Source       string        `env:"CATALOGUE_SOURCE,required,notEmpty"`
	RecordsPath  string        `env:"CATALOGUE_RECORDS_PATH"`
	FetchRetries int           `env:"CATALOGUE_FETCH_RETRIES" envDefault:"0"`
	FetchTimeout time.Duration `env:"CATALOGUE_FETCH_TIMEOUT" envDefault:"30s"`

	// Session storage: PostgreSQL when DATABASE_URL is set, else redis when
	// REDIS_URL is set, else process memory
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	JWTSecret   string `env:"ELAUTE_JWT_SECRET"`
	OTelEnabled bool   `env:"OTEL_ENABLED" envDefault:"false"`
}

// Load parses the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.RecordsPath == "" {
		cfg.RecordsPath = catalogue.DefaultRecordsPath
	}
	return cfg, nil
}

// Addr is the listen address of the server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// PublicURL is the server URL advertised in the API documentation
func (c *Config) PublicURL() string {
	if c.Host != "" {
		return c.Host
	}
	return "http://localhost" + c.Addr()
}

// Level returns the configured log level, defaulting to info
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// FetchOptions returns the options of the catalogue fetch
func (c *Config) FetchOptions() catalogue.FetchOptions {
	return catalogue.FetchOptions{
		Retries: c.FetchRetries,
		Timeout: c.FetchTimeout,
		Logger:  slog.Default(),
	}
}
