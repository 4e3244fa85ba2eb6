// Package events defines the domain events the services emit after a state
// change has been committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	// Order Events
	OrderValidatedEvent EventType = "order.validated"
	OrderCancelledEvent EventType = "order.cancelled"

	// Delivery Events
	DeliveryAssignedEvent  EventType = "delivery.assigned"
	DeliveryCompletedEvent EventType = "delivery.completed"
)

type DomainEvent struct {
	ID            uuid.UUID       `json:"id"`
	EventType     EventType       `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"` // order or delivery id
	Payload       json.RawMessage `json:"payload"`
	Timestamp     time.Time       `json:"timestamp"`
	Service       string          `json:"service"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
}

func NewEvent(eventType EventType, service string, aggregateID uuid.UUID, payload interface{}) (DomainEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return DomainEvent{}, fmt.Errorf("event payload serialization error: %w", err)
	}
	return DomainEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		Payload:       body,
		Timestamp:     time.Now(),
		Service:       service,
		CorrelationID: uuid.New(),
	}, nil
}

// Decode unmarshals the payload into v.
func (e DomainEvent) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%s payload deserialization error: %w", e.EventType, err)
	}
	return nil
}

// Publisher delivers events to whoever listens. Services treat publishing as
// best effort and never fail a committed operation because of it.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, DomainEvent) error { return nil }

type OrderValidatedPayload struct {
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	Units      int             `json:"units"`
}

type OrderCancelledPayload struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

type DeliveryAssignedPayload struct {
	DeliveryID uuid.UUID   `json:"delivery_id"`
	DriverID   uuid.UUID   `json:"driver_id"`
	OrderIDs   []uuid.UUID `json:"order_ids"`
	Flow       string      `json:"flow"`
}

type DeliveryCompletedPayload struct {
	DeliveryID  uuid.UUID   `json:"delivery_id"`
	DriverID    uuid.UUID   `json:"driver_id"`
	OrderIDs    []uuid.UUID `json:"order_ids"`
	DeliveredAt time.Time   `json:"delivered_at"`
	// StaleOrders lists member orders whose status could not be advanced.
	StaleOrders []uuid.UUID `json:"stale_orders,omitempty"`
}
