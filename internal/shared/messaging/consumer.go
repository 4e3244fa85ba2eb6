package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const maxRedeliveries = 3

type EventHandler func(event events.DomainEvent) error

type Consumer struct {
	client      *RabbitMQClient
	log         logrus.FieldLogger
	queueName   string
	serviceName string
}

func NewConsumer(client *RabbitMQClient, log logrus.FieldLogger, queueName, serviceName string) *Consumer {
	return &Consumer{
		client:      client,
		log:         log.WithFields(logrus.Fields{"component": "consumer", "queue": queueName}),
		queueName:   queueName,
		serviceName: serviceName,
	}
}

func (c *Consumer) ConsumeEvents(routingKeys []string, handler EventHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("there is no connection to RabbitMQ")
	}

	channel := c.client.Channel()

	queue, err := channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("queue declare error: %w", err)
	}

	for _, routingKey := range routingKeys {
		err = channel.QueueBind(
			queue.Name,               // queue name
			routingKey,               // routing key
			c.client.config.Exchange, // exchange
			false,                    // no-wait
			nil,                      // arguments
		)
		if err != nil {
			return fmt.Errorf("queue bind error (%s): %w", routingKey, err)
		}
		c.log.WithField("routing_key", routingKey).Info("Queue bound")
	}

	messages, err := channel.Consume(
		queue.Name,    // queue
		c.serviceName, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("consume start error: %w", err)
	}

	c.log.Info("Consuming events")

	go func() {
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					c.log.Warn("Delivery channel closed")
					return
				}
				c.handleMessage(msg, handler)
			case <-c.client.Done():
				c.log.Info("Consumer stopped")
				return
			}
		}
	}()

	return nil
}

func (c *Consumer) handleMessage(msg amqp.Delivery, handler EventHandler) {
	var event events.DomainEvent

	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.log.WithError(err).Error("Event deserialize error")
		msg.Nack(false, false)
		return
	}

	entry := c.log.WithFields(logrus.Fields{"event_type": event.EventType, "aggregate_id": event.AggregateID})

	if err := handler(event); err != nil {
		entry.WithError(err).Warn("Event process error")

		if ShouldRetry(msg.Headers) {
			c.republish(msg, entry)
		} else {
			entry.Error("Max retries reached, dropping event")
			msg.Nack(false, false)
		}
		return
	}

	msg.Ack(false)
	entry.Debug("Event processed")
}

// ShouldRetry reads the broker's x-death bookkeeping and our own redelivery
// counter.
func ShouldRetry(headers amqp.Table) bool {
	if xDeath, ok := headers["x-death"]; ok {
		if deathArray, ok := xDeath.([]interface{}); ok && len(deathArray) > 0 {
			if death, ok := deathArray[0].(amqp.Table); ok {
				if count, ok := death["count"].(int64); ok && count >= maxRedeliveries {
					return false
				}
			}
		}
	}
	if count, ok := headers["x-redelivered"].(int32); ok && count >= maxRedeliveries {
		return false
	}
	return true
}

func (c *Consumer) republish(msg amqp.Delivery, entry logrus.FieldLogger) {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	count, _ := headers["x-redelivered"].(int32)
	headers["x-redelivered"] = count + 1

	time.Sleep(2 * time.Second)

	err := c.client.Channel().Publish(
		msg.Exchange,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			DeliveryMode: msg.DeliveryMode,
			Headers:      headers,
		},
	)
	if err != nil {
		entry.WithError(err).Error("Retry publish error")
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
	entry.Info("Event re-published")
}
