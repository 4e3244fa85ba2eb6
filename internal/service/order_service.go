package service

import (
	"context"
	"errors"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	store     repository.Store
	publisher events.Publisher
	log       logrus.FieldLogger
}

func NewOrderService(store repository.Store, publisher events.Publisher, log logrus.FieldLogger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		store:     store,
		publisher: publisher,
		log:       log.WithField("service", "order"),
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, customerID, addressID uuid.UUID) (*domain.Order, error) {
	customer, err := s.store.Users().FindByID(ctx, customerID)
	if err != nil {
		return nil, domain.Persistence("load customer", err)
	}
	if !customer.IsCustomer() {
		return nil, domain.InvalidArgumentf("user %s is a %s, not a customer", customerID, customer.Type)
	}
	if _, err := s.store.Addresses().FindByID(ctx, addressID); err != nil {
		return nil, domain.Persistence("load address", err)
	}

	order := domain.NewOrder(customerID, addressID)
	if err := s.store.Orders().Add(ctx, order); err != nil {
		return nil, domain.Persistence("create order", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
	}).Info("Order created")
	return order, nil
}

// AddBundleToOrder appends a catalog bundle. Discounted bundles are composed
// from selections, one item per required type; other variants take none.
func (s *OrderService) AddBundleToOrder(ctx context.Context, orderID, bundleID uuid.UUID, selections []uuid.UUID) (*domain.Order, error) {
	if _, err := s.pendingOrder(ctx, orderID); err != nil {
		return nil, err
	}

	bundle, err := s.store.Bundles().FindByID(ctx, bundleID)
	if err != nil {
		return nil, domain.Persistence("load bundle", err)
	}

	switch b := bundle.(type) {
	case *domain.DiscountedBundle:
		items, err := s.findSelections(ctx, selections)
		if err != nil {
			return nil, err
		}
		if bundle, err = b.Fill(items); err != nil {
			return nil, err
		}
	default:
		if len(selections) > 0 {
			return nil, domain.InvalidArgumentf("bundle %q is %s and takes no selections", b.Info().Name, b.Kind())
		}
	}

	return s.appendLine(ctx, orderID, bundle)
}

// AddItemToOrder adds a single item as a one-item line.
func (s *OrderService) AddItemToOrder(ctx context.Context, orderID, itemID uuid.UUID) (*domain.Order, error) {
	if _, err := s.pendingOrder(ctx, orderID); err != nil {
		return nil, err
	}

	item, err := s.store.Items().FindByID(ctx, itemID)
	if err != nil {
		return nil, domain.Persistence("load item", err)
	}
	bundle, err := domain.NewOneItemBundle(item)
	if err != nil {
		return nil, err
	}
	bundle.ID = uuid.Nil

	return s.appendLine(ctx, orderID, bundle)
}

func (s *OrderService) appendLine(ctx context.Context, orderID uuid.UUID, bundle domain.Bundle) (*domain.Order, error) {
	line, err := domain.NewOrderLine(bundle)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.Orders().AppendLine(ctx, orderID, line)
	if err != nil {
		return nil, domain.Persistence("add order line", err)
	}
	if !ok {
		return nil, domain.InvalidStatef("order %s is no longer pending", orderID)
	}

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.Persistence("reload order", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"bundle":   line.Name,
		"kind":     line.Kind,
		"price":    line.Price.String(),
	}).Info("Bundle added to order")
	return order, nil
}

// ValidateOrder commits stock for every unit the order needs and marks it
// validated. Either all of it happens or none of it does.
func (s *OrderService) ValidateOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var validated *domain.Order

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return domain.Persistence("load order", err)
		}
		if err := order.CanValidate(); err != nil {
			return err
		}

		claimed, err := tx.Orders().TransitionStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusValidated)
		if err != nil {
			return domain.Persistence("claim order", err)
		}
		if !claimed {
			return domain.InvalidStatef("order %s is no longer pending", orderID)
		}

		// Lines may have been appended between the first read and the claim.
		if order, err = tx.Orders().FindByID(ctx, orderID); err != nil {
			return domain.Persistence("reload order", err)
		}
		if len(order.Lines) == 0 {
			return domain.InvalidStatef("order %s has no bundles", orderID)
		}

		if err := s.commitStock(ctx, tx, order.RequiredQuantities()); err != nil {
			return err
		}
		validated = order
		return nil
	})
	if err != nil {
		var shortage *domain.InsufficientStockError
		if errors.As(err, &shortage) {
			s.log.WithFields(logrus.Fields{
				"order_id":  orderID,
				"item_id":   shortage.ItemID,
				"shortfall": shortage.Shortfall(),
			}).Warn("Order validation rejected")
		}
		return nil, err
	}

	quantities := validated.RequiredQuantities()
	units := 0
	for _, q := range quantities {
		units += q
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"units":    units,
		"total":    validated.Total().String(),
	}).Info("Order validated")

	publish(ctx, s.log, s.publisher, events.OrderValidatedEvent, orderID, events.OrderValidatedPayload{
		OrderID:    orderID,
		CustomerID: validated.CustomerID,
		Total:      validated.Total(),
		Units:      units,
	})
	return validated, nil
}

// commitStock checks every item first so the reported shortage is the first
// one in id order, then decrements in that same order.
func (s *OrderService) commitStock(ctx context.Context, tx repository.Store, quantities map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	domain.SortItemIDs(ids)

	found, err := tx.Items().FindByIDs(ctx, ids)
	if err != nil {
		return domain.Persistence("load order items", err)
	}
	items := make(map[uuid.UUID]*domain.Item, len(found))
	for _, item := range found {
		items[item.ID] = item
	}

	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			return domain.Consistencyf("order references item %s which no longer exists", id)
		}
		if !item.CanSupply(quantities[id]) {
			return &domain.InsufficientStockError{
				ItemID:    id,
				ItemName:  item.Name,
				Requested: quantities[id],
				Available: item.Stock,
			}
		}
	}

	for _, id := range ids {
		ok, err := tx.Items().DecrementStock(ctx, id, quantities[id])
		if err != nil {
			return domain.Persistence("decrement stock", err)
		}
		if ok {
			continue
		}

		current, err := tx.Items().FindByID(ctx, id)
		if err != nil {
			return domain.Persistence("reload item", err)
		}
		return &domain.InsufficientStockError{
			ItemID:    id,
			ItemName:  current.Name,
			Requested: quantities[id],
			Available: current.Stock,
		}
	}
	return nil
}

// CancelOrder deletes a pending order. Validated orders already hold stock and
// cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return domain.Persistence("load order", err)
	}
	if err := order.CanCancel(); err != nil {
		return err
	}

	deleted, err := s.store.Orders().DeleteIfStatus(ctx, orderID, domain.OrderStatusPending)
	if err != nil {
		return domain.Persistence("cancel order", err)
	}
	if !deleted {
		return domain.InvalidStatef("order %s is no longer pending", orderID)
	}

	s.log.WithField("order_id", orderID).Info("Order cancelled")
	publish(ctx, s.log, s.publisher, events.OrderCancelledEvent, orderID, events.OrderCancelledPayload{
		OrderID:    orderID,
		CustomerID: order.CustomerID,
	})
	return nil
}

func (s *OrderService) GetOrderDetails(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.Persistence("load order", err)
	}
	return order, nil
}

func (s *OrderService) ListOrdersForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	customer, err := s.store.Users().FindByID(ctx, customerID)
	if err != nil {
		return nil, domain.Persistence("load customer", err)
	}
	if !customer.IsCustomer() {
		return nil, domain.InvalidArgumentf("user %s is a %s, not a customer", customerID, customer.Type)
	}

	orders, err := s.store.Orders().FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, domain.Persistence("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) pendingOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.Persistence("load order", err)
	}
	if order.Status != domain.OrderStatusPending {
		return nil, domain.InvalidStatef("order %s is %s, only pending orders accept bundles", orderID, order.Status)
	}
	return order, nil
}

// findSelections resolves selected items in the given order. Every id must exist.
func (s *OrderService) findSelections(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return nil, domain.InvalidArgumentf("discounted bundles need item selections")
	}

	found, err := s.store.Items().FindByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Persistence("load selections", err)
	}
	byID := make(map[uuid.UUID]*domain.Item, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, domain.NotFoundf("item %s", id)
		}
		items = append(items, item)
	}
	return items, nil
}
