package config_test

import (
	"testing"
	"time"

	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"DB_AUTO_MIGRATE", "EVENTS_ENABLED", "REDIS_ADDR", "REDIS_DB", "ITINERARY_CACHE_TTL",
		"ROUTING_BASE_URL", "ROUTING_PROFILE", "LOG_LEVEL", "LOG_FORMAT", "RABBITMQ_HOST",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "driving-car", cfg.Routing.Profile)
	assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=food_delivery sslmode=disable", cfg.Database.DSN())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ITINERARY_CACHE_TTL", "30s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestFromEnv_ReportsEveryBadValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("DB_AUTO_MIGRATE", "sometimes")

	_, err := config.FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
	assert.Contains(t, err.Error(), "REDIS_DB")
	assert.Contains(t, err.Error(), "DB_AUTO_MIGRATE")
}
