package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
)

type itemRepo struct{ s *Store }

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	defer r.s.lock()()
	item, ok := r.s.data.items[id]
	if !ok {
		return nil, domain.NotFoundf("item %s", id)
	}
	return cloneItem(item), nil
}

func (r *itemRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	defer r.s.lock()()
	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.s.data.items[id]; ok {
			items = append(items, cloneItem(item))
		}
	}
	return items, nil
}

func (r *itemRepo) FindAll(ctx context.Context) ([]*domain.Item, error) {
	return r.filter(func(*domain.Item) bool { return true }), nil
}

func (r *itemRepo) FindByType(ctx context.Context, itemType domain.ItemType) ([]*domain.Item, error) {
	return r.filter(func(i *domain.Item) bool { return i.Type == itemType }), nil
}

func (r *itemRepo) filter(keep func(*domain.Item) bool) []*domain.Item {
	defer r.s.lock()()
	items := make([]*domain.Item, 0, len(r.s.data.items))
	for _, item := range r.s.data.items {
		if keep(item) {
			items = append(items, cloneItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

func (r *itemRepo) Add(ctx context.Context, item *domain.Item) error {
	defer r.s.lock()()
	if _, exists := r.s.data.items[item.ID]; exists {
		return fmt.Errorf("item %s already exists", item.ID)
	}
	r.s.data.items[item.ID] = cloneItem(item)
	return nil
}

func (r *itemRepo) Update(ctx context.Context, item *domain.Item) error {
	defer r.s.lock()()
	if _, exists := r.s.data.items[item.ID]; !exists {
		return domain.NotFoundf("item %s", item.ID)
	}
	r.s.data.items[item.ID] = cloneItem(item)
	return nil
}

func (r *itemRepo) UpdateIfStock(ctx context.Context, item *domain.Item, expectedStock int) (bool, error) {
	defer r.s.lock()()
	current, exists := r.s.data.items[item.ID]
	if !exists {
		return false, domain.NotFoundf("item %s", item.ID)
	}
	if current.Stock != expectedStock {
		return false, nil
	}
	r.s.data.items[item.ID] = cloneItem(item)
	return true, nil
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, exists := r.s.data.items[id]; !exists {
		return domain.NotFoundf("item %s", id)
	}
	delete(r.s.data.items, id)
	return nil
}

func (r *itemRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	defer r.s.lock()()
	item, ok := r.s.data.items[id]
	if !ok {
		return false, domain.NotFoundf("item %s", id)
	}
	if err := item.Consume(quantity); err != nil {
		return false, nil
	}
	return true, nil
}

type bundleRepo struct{ s *Store }

func (r *bundleRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Bundle, error) {
	defer r.s.lock()()
	b, ok := r.s.data.bundles[id]
	if !ok {
		return nil, domain.NotFoundf("bundle %s", id)
	}
	return cloneBundle(b), nil
}

func (r *bundleRepo) FindAll(ctx context.Context) ([]domain.Bundle, error) {
	defer r.s.lock()()
	bundles := make([]domain.Bundle, 0, len(r.s.data.bundles))
	for _, b := range r.s.data.bundles {
		bundles = append(bundles, cloneBundle(b))
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Info().Name < bundles[j].Info().Name })
	return bundles, nil
}

func (r *bundleRepo) Add(ctx context.Context, bundle domain.Bundle) error {
	defer r.s.lock()()
	id := bundle.Info().ID
	if _, exists := r.s.data.bundles[id]; exists {
		return fmt.Errorf("bundle %s already exists", id)
	}
	r.s.data.bundles[id] = cloneBundle(bundle)
	return nil
}

func (r *bundleRepo) Update(ctx context.Context, bundle domain.Bundle) error {
	defer r.s.lock()()
	id := bundle.Info().ID
	if _, exists := r.s.data.bundles[id]; !exists {
		return domain.NotFoundf("bundle %s", id)
	}
	r.s.data.bundles[id] = cloneBundle(bundle)
	return nil
}

func (r *bundleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, exists := r.s.data.bundles[id]; !exists {
		return domain.NotFoundf("bundle %s", id)
	}
	delete(r.s.data.bundles, id)
	return nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	defer r.s.lock()()
	order, ok := r.s.data.orders[id]
	if !ok {
		return nil, domain.NotFoundf("order %s", id)
	}
	return cloneOrder(order), nil
}

func (r *orderRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (r *orderRepo) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (r *orderRepo) filter(keep func(*domain.Order) bool) []*domain.Order {
	defer r.s.lock()()
	orders := make([]*domain.Order, 0)
	for _, o := range r.s.data.orders {
		if keep(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	return orders
}

func (r *orderRepo) Add(ctx context.Context, order *domain.Order) error {
	defer r.s.lock()()
	if _, exists := r.s.data.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.s.data.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	defer r.s.lock()()
	if _, exists := r.s.data.orders[order.ID]; !exists {
		return domain.NotFoundf("order %s", order.ID)
	}
	r.s.data.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, exists := r.s.data.orders[id]; !exists {
		return domain.NotFoundf("order %s", id)
	}
	delete(r.s.data.orders, id)
	return nil
}

func (r *orderRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	defer r.s.lock()()
	order, ok := r.s.data.orders[id]
	if !ok {
		return false, domain.NotFoundf("order %s", id)
	}
	if order.Status != from {
		return false, nil
	}
	order.UpdateStatus(to)
	return true, nil
}

func (r *orderRepo) AppendLine(ctx context.Context, id uuid.UUID, line domain.OrderLine) (bool, error) {
	defer r.s.lock()()
	order, ok := r.s.data.orders[id]
	if !ok {
		return false, domain.NotFoundf("order %s", id)
	}
	if order.AddLine(line) != nil {
		return false, nil
	}
	last := &order.Lines[len(order.Lines)-1]
	last.ItemIDs = cloneIDs(line.ItemIDs)
	return true, nil
}

func (r *orderRepo) DeleteIfStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (bool, error) {
	defer r.s.lock()()
	order, ok := r.s.data.orders[id]
	if !ok {
		return false, domain.NotFoundf("order %s", id)
	}
	if order.Status != status {
		return false, nil
	}
	delete(r.s.data.orders, id)
	return true, nil
}

type deliveryRepo struct{ s *Store }

func (r *deliveryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	defer r.s.lock()()
	d, ok := r.s.data.deliveries[id]
	if !ok {
		return nil, domain.NotFoundf("delivery %s", id)
	}
	return cloneDelivery(d), nil
}

func (r *deliveryRepo) FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error) {
	return r.filter(func(d *domain.Delivery) bool { return d.DriverID == driverID }), nil
}

func (r *deliveryRepo) FindInProgressByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error) {
	return r.filter(func(d *domain.Delivery) bool { return d.DriverID == driverID && d.IsActive() }), nil
}

func (r *deliveryRepo) filter(keep func(*domain.Delivery) bool) []*domain.Delivery {
	defer r.s.lock()()
	deliveries := make([]*domain.Delivery, 0)
	for _, d := range r.s.data.deliveries {
		if keep(d) {
			deliveries = append(deliveries, cloneDelivery(d))
		}
	}
	sort.Slice(deliveries, func(i, j int) bool { return deliveries[i].CreatedAt.After(deliveries[j].CreatedAt) })
	return deliveries
}

func (r *deliveryRepo) Add(ctx context.Context, delivery *domain.Delivery) error {
	defer r.s.lock()()
	if _, exists := r.s.data.deliveries[delivery.ID]; exists {
		return fmt.Errorf("delivery %s already exists", delivery.ID)
	}
	r.s.data.deliveries[delivery.ID] = cloneDelivery(delivery)
	return nil
}

func (r *deliveryRepo) Update(ctx context.Context, delivery *domain.Delivery) error {
	defer r.s.lock()()
	if _, exists := r.s.data.deliveries[delivery.ID]; !exists {
		return domain.NotFoundf("delivery %s", delivery.ID)
	}
	r.s.data.deliveries[delivery.ID] = cloneDelivery(delivery)
	return nil
}

func (r *deliveryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, exists := r.s.data.deliveries[id]; !exists {
		return domain.NotFoundf("delivery %s", id)
	}
	delete(r.s.data.deliveries, id)
	return nil
}

func (r *deliveryRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	defer r.s.lock()()
	d, ok := r.s.data.deliveries[id]
	if !ok {
		return false, domain.NotFoundf("delivery %s", id)
	}
	if d.Complete(at) != nil {
		return false, nil
	}
	return true, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, domain.NotFoundf("user %s", id)
	}
	return cloneUser(u), nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Username, username) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NotFoundf("user %q", username)
}

func (r *userRepo) FindAll(ctx context.Context, userType domain.UserType) ([]*domain.User, error) {
	defer r.s.lock()()
	users := make([]*domain.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		if userType == "" || u.Type == userType {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *userRepo) Add(ctx context.Context, user *domain.User) error {
	defer r.s.lock()()
	if _, exists := r.s.data.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	r.s.data.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	defer r.s.lock()()
	if _, exists := r.s.data.users[user.ID]; !exists {
		return domain.NotFoundf("user %s", user.ID)
	}
	r.s.data.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, exists := r.s.data.users[id]; !exists {
		return domain.NotFoundf("user %s", id)
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *userRepo) SetDriverAvailability(ctx context.Context, id uuid.UUID, from, to bool) (bool, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return false, domain.NotFoundf("user %s", id)
	}
	if !u.IsDriver() || u.Driver.Availability != from {
		return false, nil
	}
	u.Driver.Availability = to
	return true, nil
}

type addressRepo struct{ s *Store }

func (r *addressRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	defer r.s.lock()()
	a, ok := r.s.data.addresses[id]
	if !ok {
		return nil, domain.NotFoundf("address %s", id)
	}
	return cloneAddress(a), nil
}

func (r *addressRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Address, error) {
	defer r.s.lock()()
	addresses := make([]*domain.Address, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.s.data.addresses[id]; ok {
			addresses = append(addresses, cloneAddress(a))
		}
	}
	return addresses, nil
}

func (r *addressRepo) FindMatching(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	defer r.s.lock()()
	for _, a := range r.s.data.addresses {
		if a.SameComponents(address) {
			return cloneAddress(a), nil
		}
	}
	return nil, domain.NotFoundf("address matching %q", address.PostalLine())
}

func (r *addressRepo) Add(ctx context.Context, address *domain.Address) error {
	defer r.s.lock()()
	if _, exists := r.s.data.addresses[address.ID]; exists {
		return fmt.Errorf("address %s already exists", address.ID)
	}
	r.s.data.addresses[address.ID] = cloneAddress(address)
	return nil
}

func (r *addressRepo) Update(ctx context.Context, address *domain.Address) error {
	defer r.s.lock()()
	if _, exists := r.s.data.addresses[address.ID]; !exists {
		return domain.NotFoundf("address %s", address.ID)
	}
	r.s.data.addresses[address.ID] = cloneAddress(address)
	return nil
}

func (r *addressRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, exists := r.s.data.addresses[id]; !exists {
		return domain.NotFoundf("address %s", id)
	}
	delete(r.s.data.addresses, id)
	return nil
}
