// Package memory is an in-process Store used by tests and the memory storage
// driver. All access is serialised behind one mutex; a failed transaction
// restores the snapshot taken when it began.
package memory

import (
	"context"
	"sync"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/google/uuid"
)

type state struct {
	items      map[uuid.UUID]*domain.Item
	bundles    map[uuid.UUID]domain.Bundle
	orders     map[uuid.UUID]*domain.Order
	deliveries map[uuid.UUID]*domain.Delivery
	users      map[uuid.UUID]*domain.User
	addresses  map[uuid.UUID]*domain.Address
}

func newState() *state {
	return &state{
		items:      make(map[uuid.UUID]*domain.Item),
		bundles:    make(map[uuid.UUID]domain.Bundle),
		orders:     make(map[uuid.UUID]*domain.Order),
		deliveries: make(map[uuid.UUID]*domain.Delivery),
		users:      make(map[uuid.UUID]*domain.User),
		addresses:  make(map[uuid.UUID]*domain.Address),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, v := range s.items {
		c.items[id] = cloneItem(v)
	}
	for id, v := range s.bundles {
		c.bundles[id] = cloneBundle(v)
	}
	for id, v := range s.orders {
		c.orders[id] = cloneOrder(v)
	}
	for id, v := range s.deliveries {
		c.deliveries[id] = cloneDelivery(v)
	}
	for id, v := range s.users {
		c.users[id] = cloneUser(v)
	}
	for id, v := range s.addresses {
		c.addresses[id] = cloneAddress(v)
	}
	return c
}

type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newState()}
}

// lock is a no-op inside a transaction, which already holds the mutex.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Items() repository.ItemRepository { return &itemRepo{s} }
func (s *Store) Bundles() repository.BundleRepository { return &bundleRepo{s} }
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s} }
func (s *Store) Deliveries() repository.DeliveryRepository { return &deliveryRepo{s} }
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }
func (s *Store) Addresses() repository.AddressRepository { return &addressRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }
