package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/food-delivery-platform/backend/internal/credentials"
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/food-delivery-platform/backend/internal/repository/memory"
	"github.com/food-delivery-platform/backend/internal/routing"
	"github.com/food-delivery-platform/backend/internal/service"
	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t events.EventType) []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.DomainEvent
	for _, e := range p.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctx        context.Context
	store      repository.Store
	logs       *test.Hook
	published  *recordingPublisher
	planner    *routing.MockPlanner
	catalog    *service.CatalogService
	orders     *service.OrderService
	deliveries *service.DeliveryService
	users      *service.UserService
	addresses  *service.AddressService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.NewStore())
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	pub := &recordingPublisher{}
	planner := routing.NewMockPlanner()
	return &fixture{
		ctx:        context.Background(),
		store:      store,
		logs:       hook,
		published:  pub,
		planner:    planner,
		catalog:    service.NewCatalogService(store, log),
		orders:     service.NewOrderService(store, pub, log),
		deliveries: service.NewDeliveryService(store, planner, pub, log),
		users:      service.NewUserService(store, credentials.NewBcryptHasher(4), log),
		addresses:  service.NewAddressService(store, log),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) item(t *testing.T, name string, itemType domain.ItemType, price string, stock int) *domain.Item {
	t.Helper()
	item, err := f.catalog.CreateItem(f.ctx, domain.NewItem{
		Name:         name,
		Type:         itemType,
		Price:        dec(price),
		Stock:        stock,
		Availability: stock > 0,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) customer(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := f.users.Register(f.ctx, domain.Registration{
		Username: username,
		Password: "secret123",
		Type:     domain.UserTypeCustomer,
		Customer: &domain.CustomerProfile{FirstName: "Ada", LastName: "L", Email: username + "@example.com"},
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) driver(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := f.users.Register(f.ctx, domain.Registration{
		Username:    username,
		Password:    "secret123",
		Type:        domain.UserTypeDriver,
		VehicleType: "bike",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) address(t *testing.T, street string) *domain.Address {
	t.Helper()
	address, err := f.addresses.GetOrCreate(f.ctx, domain.Address{
		City:         "Lyon",
		PostalCode:   "69001",
		StreetName:   street,
		StreetNumber: "1",
	})
	require.NoError(t, err)
	return address
}

// order creates a pending order holding one line per item.
func (f *fixture) order(t *testing.T, customer *domain.User, address *domain.Address, items ...*domain.Item) *domain.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(f.ctx, customer.ID, address.ID)
	require.NoError(t, err)
	for _, item := range items {
		order, err = f.orders.AddItemToOrder(f.ctx, order.ID, item.ID)
		require.NoError(t, err)
	}
	return order
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	item, err := f.store.Items().FindByID(f.ctx, id)
	require.NoError(t, err)
	return item.Stock
}

func (f *fixture) orderStatus(t *testing.T, id uuid.UUID) domain.OrderStatus {
	t.Helper()
	order, err := f.store.Orders().FindByID(f.ctx, id)
	require.NoError(t, err)
	return order.Status
}

// faultyStore fails the delivered transition of one order and passes
// everything else through, inside transactions too.
type faultyStore struct {
	repository.Store
	failOrder uuid.UUID
}

func (s *faultyStore) Orders() repository.OrderRepository {
	return &faultyOrders{OrderRepository: s.Store.Orders(), failOrder: s.failOrder}
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(&faultyStore{Store: tx, failOrder: s.failOrder})
	})
}

type faultyOrders struct {
	repository.OrderRepository
	failOrder uuid.UUID
}

var errDiskFull = errors.New("disk full")

func (r *faultyOrders) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	if id == r.failOrder && to == domain.OrderStatusDelivered {
		return false, errDiskFull
	}
	return r.OrderRepository.TransitionStatus(ctx, id, from, to)
}

// interleavingStore runs a competing operation at a chosen point of a
// service call. Hooks only fire outside transactions.
type interleavingStore struct {
	repository.Store
	beforeItemWrite   func()
	afterDeliveryLoad func()
}

func (s *interleavingStore) Items() repository.ItemRepository {
	return &interleavingItems{ItemRepository: s.Store.Items(), hook: s}
}

func (s *interleavingStore) Deliveries() repository.DeliveryRepository {
	return &interleavingDeliveries{DeliveryRepository: s.Store.Deliveries(), hook: s}
}

type interleavingItems struct {
	repository.ItemRepository
	hook *interleavingStore
}

func (r *interleavingItems) UpdateIfStock(ctx context.Context, item *domain.Item, expectedStock int) (bool, error) {
	if r.hook.beforeItemWrite != nil {
		r.hook.beforeItemWrite()
	}
	return r.ItemRepository.UpdateIfStock(ctx, item, expectedStock)
}

type interleavingDeliveries struct {
	repository.DeliveryRepository
	hook *interleavingStore
}

func (r *interleavingDeliveries) FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	d, err := r.DeliveryRepository.FindByID(ctx, id)
	if err == nil && r.hook.afterDeliveryLoad != nil {
		r.hook.afterDeliveryLoad()
	}
	return d, err
}
