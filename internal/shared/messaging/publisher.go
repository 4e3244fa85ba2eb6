package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Publisher struct {
	client *RabbitMQClient
	log    logrus.FieldLogger
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(client *RabbitMQClient, log logrus.FieldLogger) *Publisher {
	return &Publisher{
		client: client,
		log:    log.WithField("component", "publisher"),
	}
}

// RoutingKey is the topic an event is published under, e.g. "order.validated".
func RoutingKey(event events.DomainEvent) string {
	return string(event.EventType)
}

// NewPublishing fills in missing ids and timestamps and encodes the event.
func NewPublishing(event events.DomainEvent) (amqp.Publishing, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("event serialization error: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			"aggregate_id":   event.AggregateID.String(),
			"correlation_id": event.CorrelationID.String(),
			"service":        event.Service,
			"event_type":     string(event.EventType),
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("there is no connection to RabbitMQ")
	}

	msg, err := NewPublishing(event)
	if err != nil {
		return err
	}

	routingKey := RoutingKey(event)
	err = p.client.Channel().Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		msg,
	)
	if err != nil {
		return fmt.Errorf("event publish error: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"routing_key":  routingKey,
		"aggregate_id": event.AggregateID,
	}).Debug("Event published")
	return nil
}

func (p *Publisher) PublishWithRetry(ctx context.Context, event events.DomainEvent, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if err := p.Publish(ctx, event); err != nil {
			lastErr = err
			p.log.WithError(err).Warnf("Publish error (retry %d/%d)", i+1, maxRetries)

			if i < maxRetries-1 {
				select {
				case <-time.After(time.Second * time.Duration(i+1)):
				case <-ctx.Done():
					return ctx.Err()
				}
				continue
			}
		} else {
			return nil
		}
	}

	return fmt.Errorf("event publish failed after %d attempts: %w", maxRetries, lastErr)
}
