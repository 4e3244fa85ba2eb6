// Package repository declares the persistence collaborators the services
// depend on. Lookups of missing rows, and updates or deletes that touch no
// row, report domain.ErrNotFound.
package repository

import (
	"context"
	"time"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
)

type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	// FindByIDs skips ids that do not resolve; callers compare lengths.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error)
	FindAll(ctx context.Context) ([]*domain.Item, error)
	FindByType(ctx context.Context, itemType domain.ItemType) ([]*domain.Item, error)
	Add(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	// UpdateIfStock writes item only while the stored stock still equals
	// expectedStock. It reports whether the row changed.
	UpdateIfStock(ctx context.Context, item *domain.Item, expectedStock int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementStock removes quantity units only if at least that many remain,
	// turning availability off at zero. It reports whether the row changed.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}

type BundleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Bundle, error)
	FindAll(ctx context.Context) ([]domain.Bundle, error)
	Add(ctx context.Context, bundle domain.Bundle) error
	Update(ctx context.Context, bundle domain.Bundle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error)
	FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	Add(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	// TransitionStatus moves the order from one status to another only if it
	// is still in the from status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error)
	// AppendLine adds a line only while the order is pending.
	AppendLine(ctx context.Context, id uuid.UUID, line domain.OrderLine) (bool, error)
	// DeleteIfStatus removes the order only if it is in the given status.
	DeleteIfStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (bool, error)
}

type DeliveryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error)
	FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error)
	FindInProgressByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error)
	Add(ctx context.Context, delivery *domain.Delivery) error
	Update(ctx context.Context, delivery *domain.Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkDelivered moves the delivery to delivered only if it is still in
	// progress.
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindAll returns every user when userType is empty.
	FindAll(ctx context.Context, userType domain.UserType) ([]*domain.User, error)
	Add(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetDriverAvailability flips a driver's flag only if it currently equals from.
	SetDriverAvailability(ctx context.Context, id uuid.UUID, from, to bool) (bool, error)
}

type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Address, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Address, error)
	// FindMatching looks an address up by its components.
	FindMatching(ctx context.Context, address *domain.Address) (*domain.Address, error)
	Add(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store groups the repositories and runs multi-step writes atomically.
type Store interface {
	Items() ItemRepository
	Bundles() BundleRepository
	Orders() OrderRepository
	Deliveries() DeliveryRepository
	Users() UserRepository
	Addresses() AddressRepository
	// WithinTx runs fn against a transactional view of the store. Every write
	// made through that view is discarded if fn returns an error.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
