package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Storage drivers selectable with EVENT_STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string

	EventStoreDriver string
	DatabaseURL      string
	SQLitePath       string

	DefaultTenant        string
	DeliveryMaxAttempts  int
	DeliveryRetryBackoff time.Duration

	RequestTimeout     time.Duration
	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("EVENT_STORE_DRIVER", DriverMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("DEFAULT_TENANT", "default")
	v.SetDefault("DELIVERY_MAX_ATTEMPTS", 5)
	v.SetDefault("DELIVERY_RETRY_BACKOFF", "50ms")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT", "100-S")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.AutomaticEnv()

	cfg := &Config{
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		EventStoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("EVENT_STORE_DRIVER"))),
		DatabaseURL:         v.GetString("PGSQL_URL"),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		DefaultTenant:       strings.TrimSpace(v.GetString("DEFAULT_TENANT")),
		DeliveryMaxAttempts: v.GetInt("DELIVERY_MAX_ATTEMPTS"),
		RateLimit:           v.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	var err error
	if cfg.DeliveryRetryBackoff, err = parseDuration(v, "DELIVERY_RETRY_BACKOFF"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration(v, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.EventStoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown EVENT_STORE_DRIVER %q (want %s, %s or %s)", c.EventStoreDriver, DriverMemory, DriverSQLite, DriverPostgres)
	}
	if c.DefaultTenant == "" {
		return fmt.Errorf("DEFAULT_TENANT cannot be empty")
	}
	if c.DeliveryMaxAttempts < 1 {
		return fmt.Errorf("DELIVERY_MAX_ATTEMPTS must be at least 1, got %d", c.DeliveryMaxAttempts)
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", c.RateLimit, err)
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative", key)
	}
	return d, nil
}
