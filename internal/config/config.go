package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from the environment.
// The watchlist document (instruments, thresholds, portfolio) lives in a
// separate YAML file referenced by WatchlistPath.
type Config struct {
	Environment string
	LogLevel    string

	WatchlistPath string
	RefreshCron   string
	RunOnStart    bool
	FetchPeriods  int

	Provider ProviderConfig
	API      APIConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

// ProviderConfig holds market data provider configuration
type ProviderConfig struct {
	Name    string // "yahoo" or "mock"
	Timeout time.Duration
}

// APIConfig holds REST API configuration
type APIConfig struct {
	Port      int
	JWTSecret string // empty disables bearer auth
}

// RedisConfig holds the optional alert digest publisher configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

// DatabaseConfig holds the optional Postgres alert history configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Load loads configuration from environment variables.
// It automatically loads a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		WatchlistPath: getEnv("WATCHLIST_PATH", "watchlist.yaml"),
		RefreshCron:   getEnv("REFRESH_CRON", "@every 1h"),
		RunOnStart:    getEnvAsBool("RUN_ON_START", true),
		FetchPeriods:  getEnvAsInt("FETCH_PERIODS", 300),
		Provider: ProviderConfig{
			Name:    getEnv("PROVIDER", "yahoo"),
			Timeout: getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
		},
		API: APIConfig{
			Port:      getEnvAsInt("API_PORT", 8080),
			JWTSecret: getEnv("API_JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_ALERT_CHANNEL", "alerts.digest"),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "market_pulse"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WatchlistPath == "" {
		return fmt.Errorf("WATCHLIST_PATH is required")
	}
	if c.RefreshCron == "" {
		return fmt.Errorf("REFRESH_CRON is required")
	}
	if c.FetchPeriods < 1 {
		return fmt.Errorf("FETCH_PERIODS must be positive, got %d", c.FetchPeriods)
	}
	switch c.Provider.Name {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider.Name)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.API.Port)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
