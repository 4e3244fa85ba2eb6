// Package app is the composition root: it turns a Config into a store, the
// collaborators, and the services every boundary shares.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/food-delivery-platform/backend/internal/credentials"
	"github.com/food-delivery-platform/backend/internal/database"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/food-delivery-platform/backend/internal/repository/memory"
	"github.com/food-delivery-platform/backend/internal/repository/postgres"
	"github.com/food-delivery-platform/backend/internal/routing"
	"github.com/food-delivery-platform/backend/internal/service"
	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/food-delivery-platform/backend/internal/shared/messaging"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Store  repository.Store

	Catalog    *service.CatalogService
	Orders     *service.OrderService
	Deliveries *service.DeliveryService
	Users      *service.UserService
	Addresses  *service.AddressService

	closers []func() error
}

func NewLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// New opens the configured store and collaborators. Close releases them.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	publisher, err := a.openPublisher()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.wire(store, publisher, a.openPlanner())
	return a, nil
}

// NewWithStore wires the services over an existing store with no event
// broker and the offline planner.
func NewWithStore(cfg *config.Config, log *logrus.Logger, store repository.Store) *App {
	a := &App{Config: cfg, Log: log, closers: []func() error{store.Close}}
	a.wire(store, events.NopPublisher{}, routing.NewMockPlanner())
	return a
}

func (a *App) wire(store repository.Store, publisher events.Publisher, planner routing.Planner) {
	a.Store = store

	a.Catalog = service.NewCatalogService(store, a.Log)
	a.Orders = service.NewOrderService(store, publisher, a.Log)
	a.Deliveries = service.NewDeliveryService(store, planner, publisher, a.Log)
	a.Users = service.NewUserService(store, credentials.NewBcryptHasher(bcrypt.DefaultCost), a.Log)
	a.Addresses = service.NewAddressService(store, a.Log)
}

func (a *App) openStore() (repository.Store, error) {
	if a.Config.StorageDriver == config.StorageMemory {
		a.Log.Warn("Using in-memory storage, data is lost on exit")
		return memory.NewStore(), nil
	}

	db, err := database.Connect(a.Config.Database, a.Log)
	if err != nil {
		return nil, err
	}
	if a.Config.Database.AutoMigrate {
		if err := database.Migrate(db, false, a.Log); err != nil {
			db.Close()
			return nil, err
		}
	}
	return postgres.NewStore(db), nil
}

func (a *App) openPublisher() (events.Publisher, error) {
	if !a.Config.EventsEnabled {
		a.Log.Info("Event publishing disabled")
		return events.NopPublisher{}, nil
	}

	client := messaging.NewRabbitMQClient(a.Config.RabbitMQ, a.Log)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("rabbitmq connection error: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return messaging.NewPublisher(client, a.Log), nil
}

func (a *App) openPlanner() routing.Planner {
	var planner routing.Planner
	if a.Config.Routing.BaseURL != "" {
		planner = routing.NewHTTPPlanner(a.Config.Routing.BaseURL, a.Config.Routing.APIKey, a.Config.Routing.Profile, nil)
		a.Log.WithField("base_url", a.Config.Routing.BaseURL).Info("Routing through HTTP planner")
	} else {
		planner = routing.NewMockPlanner()
		a.Log.Info("Routing through offline planner")
	}

	if a.Config.Redis.Addr == "" {
		return planner
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		a.Log.WithError(err).Warn("Redis unreachable, itineraries will be planned uncached until it recovers")
	}
	a.closers = append(a.closers, client.Close)
	return routing.NewCachedPlanner(planner, client, a.Config.Redis.CacheTTL, a.Log)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	a.closers = nil
	return errs.ErrorOrNil()
}
