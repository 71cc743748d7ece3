package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Barttorvik ratings feed
	TorvikBaseURL    string        `envconfig:"TORVIK_BASE_URL" default:"https://barttorvik.com"`
	TorvikTimeout    time.Duration `envconfig:"TORVIK_TIMEOUT" default:"30s"`
	TorvikMaxRetries int           `envconfig:"TORVIK_MAX_RETRIES" default:"5"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaam_v5"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ncaam_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Readiness gate
	GateTimezone string `envconfig:"GATE_TIMEZONE" default:"America/Chicago"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	RatingsSyncCron    string `envconfig:"RATINGS_SYNC_CRON" default:"0 2 * * *"`
	GateCheckInterval  int    `envconfig:"GATE_CHECK_INTERVAL" default:"900"` // seconds

	// Seed aliases
	SeedAliasesEnabled bool   `envconfig:"SEED_ALIASES_ENABLED" default:"true"`
	SeedAliasSource    string `envconfig:"SEED_ALIAS_SOURCE" default:"the_odds_api"`

	// Caching TTL (in seconds)
	CacheTTLResolution int `envconfig:"CACHE_TTL_RESOLUTION" default:"3600"` // 1 hour
	CacheTTLGate       int `envconfig:"CACHE_TTL_GATE" default:"300"`        // 5 minutes

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if _, err := time.LoadLocation(c.GateTimezone); err != nil {
		return fmt.Errorf("GATE_TIMEZONE %q is not a valid IANA timezone: %w", c.GateTimezone, err)
	}

	if c.GateCheckInterval <= 0 {
		return fmt.Errorf("GATE_CHECK_INTERVAL must be positive")
	}

	return nil
}

// GateLocation returns the operational timezone the readiness gate
// evaluates slate dates in. Validate has already checked it parses.
func (c *Config) GateLocation() *time.Location {
	loc, err := time.LoadLocation(c.GateTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
