// Package notification turns domain events into messages for customers and
// drivers. Delivery is a structured log line; no provider is wired.
package notification

import (
	"fmt"
	"strings"

	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceDriver   Audience = "driver"
)

type Notification struct {
	Audience    Audience
	RecipientID uuid.UUID
	Subject     string
	Message     string
}

// RoutingKeys are the events the notifier subscribes to.
var RoutingKeys = []string{
	string(events.OrderValidatedEvent),
	string(events.OrderCancelledEvent),
	string(events.DeliveryAssignedEvent),
	string(events.DeliveryCompletedEvent),
}

type Notifier struct {
	log logrus.FieldLogger
}

func NewNotifier(log logrus.FieldLogger) *Notifier {
	return &Notifier{log: log.WithField("service", "notifier")}
}

// Handle matches messaging.EventHandler. Undecodable payloads are returned as
// errors so the consumer can retry or dead-letter them.
func (n *Notifier) Handle(event events.DomainEvent) error {
	notification, err := Render(event)
	if err != nil {
		return err
	}
	if notification == nil {
		n.log.WithField("event_type", event.EventType).Debug("Event ignored")
		return nil
	}

	n.log.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"event_type":   event.EventType,
		"audience":     notification.Audience,
		"recipient_id": notification.RecipientID,
		"subject":      notification.Subject,
	}).Infof("Notification sent: %s", notification.Message)
	return nil
}

// Render builds the notification for an event, or nil for events nobody is
// told about.
func Render(event events.DomainEvent) (*Notification, error) {
	switch event.EventType {
	case events.OrderValidatedEvent:
		var p events.OrderValidatedPayload
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		return &Notification{
			Audience:    AudienceCustomer,
			RecipientID: p.CustomerID,
			Subject:     "Order confirmed",
			Message: fmt.Sprintf("Your order %s (%d items, %s) is confirmed and waiting for a driver.",
				short(p.OrderID), p.Units, p.Total.StringFixed(2)),
		}, nil

	case events.OrderCancelledEvent:
		var p events.OrderCancelledPayload
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		return &Notification{
			Audience:    AudienceCustomer,
			RecipientID: p.CustomerID,
			Subject:     "Order cancelled",
			Message:     fmt.Sprintf("Your order %s was cancelled.", short(p.OrderID)),
		}, nil

	case events.DeliveryAssignedEvent:
		var p events.DeliveryAssignedPayload
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		return &Notification{
			Audience:    AudienceDriver,
			RecipientID: p.DriverID,
			Subject:     "New delivery",
			Message:     fmt.Sprintf("Delivery %s: %s.", short(p.DeliveryID), plural(len(p.OrderIDs), "order")),
		}, nil

	case events.DeliveryCompletedEvent:
		var p events.DeliveryCompletedPayload
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		message := fmt.Sprintf("Delivery %s completed at %s.", short(p.DeliveryID), p.DeliveredAt.Format("15:04"))
		if len(p.StaleOrders) > 0 {
			ids := make([]string, len(p.StaleOrders))
			for i, id := range p.StaleOrders {
				ids[i] = short(id)
			}
			message += " Orders still shown in progress: " + strings.Join(ids, ", ") + "."
		}
		return &Notification{
			Audience:    AudienceDriver,
			RecipientID: p.DriverID,
			Subject:     "Delivery completed",
			Message:     message,
		}, nil
	}
	return nil, nil
}

func short(id uuid.UUID) string {
	return id.String()[:8]
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
