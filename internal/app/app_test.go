package app_test

import (
	"context"
	"testing"

	"github.com/food-delivery-platform/backend/internal/app"
	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log := app.NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = app.NewLogger(config.LogConfig{Level: "nonsense", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestNewWithMemoryStorage(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := &config.Config{StorageDriver: config.StorageMemory}

	a, err := app.New(cfg, log)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Store)
	require.NoError(t, a.Store.Ping(context.Background()))
	assert.NotEmpty(t, hook.AllEntries())

	item, err := a.Catalog.CreateItem(context.Background(), domain.NewItem{
		Name: "Salad", Type: domain.ItemTypeStarter, Price: decimal.NewFromInt(4), Stock: 2, Availability: true,
	})
	require.NoError(t, err)

	found, err := a.Catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salad", found.Name)
}

func TestNewWithStoreSharesTheStore(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := memory.NewStore()

	a := app.NewWithStore(&config.Config{StorageDriver: config.StorageMemory}, log, store)
	_, err := a.Catalog.CreateItem(context.Background(), domain.NewItem{
		Name: "Tea", Type: domain.ItemTypeDrink, Price: decimal.NewFromInt(2), Stock: 1, Availability: true,
	})
	require.NoError(t, err)

	items, err := store.Items().FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, a.Close())
}
