// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/food-delivery-platform/backend/internal/shared/messaging"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port          string
	StorageDriver string
	Database      DatabaseConfig
	RabbitMQ      *messaging.RabbitMQConfig
	EventsEnabled bool
	Redis         RedisConfig
	Routing       RoutingConfig
	Log           LogConfig
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// DSN is the lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig is optional; an empty Addr disables the itinerary cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// RoutingConfig is optional; an empty BaseURL selects the offline planner.
type RoutingConfig struct {
	BaseURL string
	APIKey  string
	Profile string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env if present and then the environment. Malformed values are
// reported together.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var errs *multierror.Error

	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		StorageDriver: strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StoragePostgres)),
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvOrDefault("DB_NAME", "food_delivery"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		RabbitMQ: messaging.NewRabbitMQConfig(),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Routing: RoutingConfig{
			BaseURL: os.Getenv("ROUTING_BASE_URL"),
			APIKey:  os.Getenv("ROUTING_API_KEY"),
			Profile: getEnvOrDefault("ROUTING_PROFILE", "driving-car"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		},
	}

	var err error
	if cfg.Database.AutoMigrate, err = strconv.ParseBool(getEnvOrDefault("DB_AUTO_MIGRATE", "true")); err != nil {
		errs = multierror.Append(errs, errors.New("DB_AUTO_MIGRATE must be a boolean"))
	}
	if cfg.EventsEnabled, err = strconv.ParseBool(getEnvOrDefault("EVENTS_ENABLED", "false")); err != nil {
		errs = multierror.Append(errs, errors.New("EVENTS_ENABLED must be a boolean"))
	}
	if cfg.Redis.DB, err = strconv.Atoi(getEnvOrDefault("REDIS_DB", "0")); err != nil {
		errs = multierror.Append(errs, errors.New("REDIS_DB must be an integer"))
	}
	if cfg.Redis.CacheTTL, err = time.ParseDuration(getEnvOrDefault("ITINERARY_CACHE_TTL", "10m")); err != nil {
		errs = multierror.Append(errs, errors.New("ITINERARY_CACHE_TTL must be a duration"))
	}

	switch cfg.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		errs = multierror.Append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.StorageDriver))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = multierror.Append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.Log.Format))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
