// Package config holds service configuration with three-layer priority:
// defaults (lowest), a YAML file and environment variables (middle), and
// functional options (highest).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the catalog service.
type Config struct {
	// Name identifies the service in logs and telemetry.
	Name string `yaml:"name"`

	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Inventory InventoryConfig `yaml:"inventory"`
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects and tunes the persistence backend.
type DatabaseConfig struct {
	// Driver is "postgres" or "memory". The in-memory backend exists for
	// development and tests; it keeps full transactional semantics.
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig selects the query cache backend.
type CacheConfig struct {
	// Backend is "memory", "redis", or "none".
	Backend   string        `yaml:"backend"`
	RedisURL  string        `yaml:"redis_url"`
	Namespace string        `yaml:"namespace"`
	TTL       time.Duration `yaml:"ttl"`
}

// TelemetryConfig controls metric export.
type TelemetryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Interval time.Duration `yaml:"interval"`
	Insecure bool          `yaml:"insecure"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// InventoryConfig tunes inventory endpoints.
type InventoryConfig struct {
	// LowStockThreshold is the default threshold for the low-inventory
	// listing when the caller does not pass one.
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

// Option mutates the configuration after file and environment layers apply.
type Option func(*Config)

// WithPort overrides the HTTP port.
func WithPort(port int) Option {
	return func(c *Config) { c.HTTP.Port = port }
}

// WithDSN overrides the database DSN and selects the postgres driver.
func WithDSN(dsn string) Option {
	return func(c *Config) {
		c.Database.Driver = "postgres"
		c.Database.DSN = dsn
	}
}

// WithMemoryBackends selects the in-memory store and cache, for development.
func WithMemoryBackends() Option {
	return func(c *Config) {
		c.Database.Driver = "memory"
		c.Cache.Backend = "memory"
	}
}

// New builds the configuration: defaults, then the YAML file at path (skipped
// when path is empty), then environment variables, then options. The result
// is validated.
func New(path string, opts ...Option) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Name: "product-catalog",
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			Namespace: "catalog:cache",
			TTL:       5 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Interval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Inventory: InventoryConfig{
			LowStockThreshold: 10,
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Name, "CATALOG_NAME")
	setInt(&cfg.HTTP.Port, "CATALOG_PORT")
	setString(&cfg.Database.Driver, "CATALOG_DB_DRIVER")
	setString(&cfg.Database.DSN, "CATALOG_DB_DSN")
	setInt(&cfg.Database.MaxOpenConns, "CATALOG_DB_MAX_OPEN_CONNS")
	setString(&cfg.Cache.Backend, "CATALOG_CACHE_BACKEND")
	setString(&cfg.Cache.RedisURL, "CATALOG_CACHE_REDIS_URL")
	setDuration(&cfg.Cache.TTL, "CATALOG_CACHE_TTL")
	setBool(&cfg.Telemetry.Enabled, "CATALOG_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "CATALOG_TELEMETRY_ENDPOINT")
	setString(&cfg.Logging.Level, "CATALOG_LOG_LEVEL")
	setInt(&cfg.Inventory.LowStockThreshold, "CATALOG_LOW_STOCK_THRESHOLD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative")
	}
	return nil
}
