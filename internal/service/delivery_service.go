package service

import (
	"context"
	"errors"
	"time"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/food-delivery-platform/backend/internal/routing"
	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

type DeliveryService struct {
	store     repository.Store
	planner   routing.Planner
	publisher events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewDeliveryService(store repository.Store, planner routing.Planner, publisher events.Publisher,
	log logrus.FieldLogger) *DeliveryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DeliveryService{
		store:     store,
		planner:   planner,
		publisher: publisher,
		log:       log.WithField("service", "delivery"),
		now:       time.Now,
	}
}

// CreateAndAssignDelivery groups orders into one delivery for a driver. The
// flow decides which order status may be picked up. Order transitions, the
// delivery row and the driver claim commit together.
func (s *DeliveryService) CreateAndAssignDelivery(ctx context.Context, flow domain.AssignmentFlow,
	orderIDs []uuid.UUID, driverID uuid.UUID) (*domain.Delivery, error) {
	required, err := flow.RequiredOrderStatus()
	if err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return nil, domain.InvalidArgumentf("a delivery needs at least one order")
	}
	seen := make(map[uuid.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if _, dup := seen[id]; dup {
			return nil, domain.InvalidArgumentf("order %s is listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	driver, err := s.loadDriver(ctx, s.store, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.DriverAvailable() {
		return nil, domain.InvalidStatef("driver %s is not available", driverID)
	}
	if active, err := s.activeDelivery(ctx, s.store, driverID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, domain.InvalidStatef("driver %s already has delivery %s in progress", driverID, active.ID)
	}

	var delivery *domain.Delivery
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		for _, id := range orderIDs {
			order, err := tx.Orders().FindByID(ctx, id)
			if err != nil {
				return domain.Persistence("load order", err)
			}
			if order.Status != required {
				return domain.InvalidStatef("order %s is %s, flow %s needs %s", id, order.Status, flow, required)
			}
			moved, err := tx.Orders().TransitionStatus(ctx, id, required, domain.OrderStatusInProgress)
			if err != nil {
				return domain.Persistence("assign order", err)
			}
			if !moved {
				return domain.InvalidStatef("order %s is no longer %s", id, required)
			}
		}

		delivery = domain.NewAssignedDelivery(driverID, orderIDs)
		if err := tx.Deliveries().Add(ctx, delivery); err != nil {
			return domain.Persistence("create delivery", err)
		}

		claimed, err := tx.Users().SetDriverAvailability(ctx, driverID, true, false)
		if err != nil {
			return domain.Persistence("claim driver", err)
		}
		if !claimed {
			return domain.InvalidStatef("driver %s is no longer available", driverID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"delivery_id": delivery.ID,
		"driver_id":   driverID,
		"orders":      len(orderIDs),
		"flow":        flow,
	}).Info("Delivery assigned")

	publish(ctx, s.log, s.publisher, events.DeliveryAssignedEvent, delivery.ID, events.DeliveryAssignedPayload{
		DeliveryID: delivery.ID,
		DriverID:   driverID,
		OrderIDs:   delivery.OrderIDs,
		Flow:       string(flow),
	})
	return delivery, nil
}

// CompleteDelivery marks the delivery delivered and frees the driver. Only one
// caller can move a delivery out of in_progress; later ones get InvalidState.
// Member orders are advanced afterwards; an order that cannot be advanced is
// logged and reported in the event, never returned as an error.
func (s *DeliveryService) CompleteDelivery(ctx context.Context, deliveryID uuid.UUID) (*domain.Delivery, error) {
	delivery, err := s.store.Deliveries().FindByID(ctx, deliveryID)
	if err != nil {
		return nil, domain.Persistence("load delivery", err)
	}
	if err := delivery.Complete(s.now()); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		completed, err := tx.Deliveries().MarkDelivered(ctx, deliveryID, *delivery.DeliveryTime)
		if err != nil {
			return domain.Persistence("complete delivery", err)
		}
		if !completed {
			return domain.InvalidStatef("delivery %s is no longer in_progress", deliveryID)
		}
		freed, err := tx.Users().SetDriverAvailability(ctx, delivery.DriverID, false, true)
		if err != nil {
			return domain.Persistence("release driver", err)
		}
		if !freed {
			s.log.WithField("driver_id", delivery.DriverID).Warn("Driver was already available at delivery completion")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stale := s.advanceOrders(ctx, delivery)

	s.log.WithFields(logrus.Fields{
		"delivery_id": deliveryID,
		"driver_id":   delivery.DriverID,
		"orders":      len(delivery.OrderIDs),
	}).Info("Delivery completed")

	publish(ctx, s.log, s.publisher, events.DeliveryCompletedEvent, deliveryID, events.DeliveryCompletedPayload{
		DeliveryID:  deliveryID,
		DriverID:    delivery.DriverID,
		OrderIDs:    delivery.OrderIDs,
		DeliveredAt: *delivery.DeliveryTime,
		StaleOrders: stale,
	})
	return delivery, nil
}

func (s *DeliveryService) advanceOrders(ctx context.Context, delivery *domain.Delivery) []uuid.UUID {
	var (
		errs  *multierror.Error
		stale []uuid.UUID
	)
	for _, id := range delivery.OrderIDs {
		moved, err := s.store.Orders().TransitionStatus(ctx, id, domain.OrderStatusInProgress, domain.OrderStatusDelivered)
		switch {
		case err != nil:
			errs = multierror.Append(errs, domain.Persistence("deliver order "+id.String(), err))
		case !moved:
			errs = multierror.Append(errs, domain.InvalidStatef("order %s was not in_progress", id))
		default:
			continue
		}
		stale = append(stale, id)
	}

	if err := errs.ErrorOrNil(); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"delivery_id": delivery.ID,
			"stale":       len(stale),
		}).Error("Some orders could not be marked delivered")
	}
	return stale
}

// GetItinerary plans the route for the driver's active delivery. It returns
// nil when the driver has nothing in progress.
func (s *DeliveryService) GetItinerary(ctx context.Context, driverID uuid.UUID) (*routing.Itinerary, error) {
	if _, err := s.loadDriver(ctx, s.store, driverID); err != nil {
		return nil, err
	}
	delivery, err := s.activeDelivery(ctx, s.store, driverID)
	if err != nil || delivery == nil {
		return nil, err
	}

	addressIDs := make([]uuid.UUID, 0, len(delivery.OrderIDs))
	for _, id := range delivery.OrderIDs {
		order, err := s.store.Orders().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Consistencyf("delivery %s references order %s which no longer exists", delivery.ID, id)
			}
			return nil, domain.Persistence("load order", err)
		}
		addressIDs = append(addressIDs, order.AddressID)
	}

	found, err := s.store.Addresses().FindByIDs(ctx, addressIDs)
	if err != nil {
		return nil, domain.Persistence("load addresses", err)
	}
	byID := make(map[uuid.UUID]*domain.Address, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	stops := make([]string, 0, len(addressIDs))
	visited := make(map[string]struct{}, len(addressIDs))
	for _, id := range addressIDs {
		address, ok := byID[id]
		if !ok {
			return nil, domain.Consistencyf("delivery %s references address %s which no longer exists", delivery.ID, id)
		}
		line := address.PostalLine()
		if _, dup := visited[line]; dup {
			continue
		}
		visited[line] = struct{}{}
		stops = append(stops, line)
	}

	itinerary, err := s.planner.Plan(ctx, stops)
	if err != nil {
		return nil, domain.Persistence("plan itinerary", err)
	}

	s.log.WithFields(logrus.Fields{
		"driver_id":   driverID,
		"delivery_id": delivery.ID,
		"provider":    itinerary.Provider,
	}).Debugf("Itinerary planned: %s", itinerary.Summary())
	return itinerary, nil
}

// ListPendingOrders lists what drivers may claim.
func (s *DeliveryService) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.ListAssignableOrders(ctx, domain.FlowDriverClaim)
}

func (s *DeliveryService) ListAssignableOrders(ctx context.Context, flow domain.AssignmentFlow) ([]*domain.Order, error) {
	status, err := flow.RequiredOrderStatus()
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().FindByStatus(ctx, status)
	if err != nil {
		return nil, domain.Persistence("list orders", err)
	}
	return orders, nil
}

// GetAssignedDelivery returns nil when the driver has no delivery in progress.
func (s *DeliveryService) GetAssignedDelivery(ctx context.Context, driverID uuid.UUID) (*domain.Delivery, error) {
	if _, err := s.loadDriver(ctx, s.store, driverID); err != nil {
		return nil, err
	}
	return s.activeDelivery(ctx, s.store, driverID)
}

func (s *DeliveryService) GetDeliveryDetails(ctx context.Context, deliveryID uuid.UUID) (*domain.Delivery, error) {
	delivery, err := s.store.Deliveries().FindByID(ctx, deliveryID)
	if err != nil {
		return nil, domain.Persistence("load delivery", err)
	}
	return delivery, nil
}

func (s *DeliveryService) ListDeliveriesForDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error) {
	if _, err := s.loadDriver(ctx, s.store, driverID); err != nil {
		return nil, err
	}
	deliveries, err := s.store.Deliveries().FindByDriver(ctx, driverID)
	if err != nil {
		return nil, domain.Persistence("list deliveries", err)
	}
	return deliveries, nil
}

func (s *DeliveryService) loadDriver(ctx context.Context, store repository.Store, driverID uuid.UUID) (*domain.User, error) {
	user, err := store.Users().FindByID(ctx, driverID)
	if err != nil {
		return nil, domain.Persistence("load driver", err)
	}
	if !user.IsDriver() {
		return nil, domain.InvalidArgumentf("user %s is a %s, not a driver", driverID, user.Type)
	}
	return user, nil
}

func (s *DeliveryService) activeDelivery(ctx context.Context, store repository.Store, driverID uuid.UUID) (*domain.Delivery, error) {
	active, err := store.Deliveries().FindInProgressByDriver(ctx, driverID)
	if err != nil {
		return nil, domain.Persistence("load active delivery", err)
	}
	if len(active) == 0 {
		return nil, nil
	}
	return active[0], nil
}
