// Package messaging carries domain events over a RabbitMQ topic exchange.
package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type RabbitMQClient struct {
	config     *RabbitMQConfig
	log        logrus.FieldLogger
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.RWMutex
	isClosing  bool
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewRabbitMQClient(config *RabbitMQConfig, log logrus.FieldLogger) *RabbitMQClient {
	ctx, cancel := context.WithCancel(context.Background())

	return &RabbitMQClient{
		config: config,
		log:    log.WithField("component", "rabbitmq"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RabbitMQClient) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for i := 0; i < r.config.RetryCount; i++ {
		r.connection, err = amqp.DialConfig(r.config.ConnectionURL(), amqp.Config{
			Dial: amqp.DefaultDial(r.config.ConnectionTimeout),
		})
		if err != nil {
			r.log.WithError(err).Warnf("RabbitMQ connection error (attempt %d/%d)", i+1, r.config.RetryCount)
			if i < r.config.RetryCount-1 {
				time.Sleep(r.config.RetryDelay)
				continue
			}
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}

		r.channel, err = r.connection.Channel()
		if err != nil {
			r.connection.Close()
			return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
		}

		err = r.channel.ExchangeDeclare(
			r.config.Exchange, // name
			"topic",           // type
			true,              // durable
			false,             // auto-deleted
			false,             // internal
			false,             // no-wait
			nil,               // arguments
		)
		if err != nil {
			r.channel.Close()
			r.connection.Close()
			return fmt.Errorf("failed to create exchange: %w", err)
		}

		r.log.WithField("host", r.config.Host).Info("Connected to RabbitMQ")

		go r.handleReconnection(r.connection)

		return nil
	}

	return err
}

func (r *RabbitMQClient) handleReconnection(conn *amqp.Connection) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case err := <-notifyClose:
		if r.closing() {
			return
		}
		r.log.WithField("reason", err).Warn("RabbitMQ connection lost, reconnecting")
		time.Sleep(time.Second * 2)
		if reconnectErr := r.Connect(); reconnectErr != nil {
			r.log.WithError(reconnectErr).Error("RabbitMQ reconnect failed")
		}
	case <-r.ctx.Done():
	}
}

func (r *RabbitMQClient) closing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isClosing
}

func (r *RabbitMQClient) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// Done is closed when the client shuts down.
func (r *RabbitMQClient) Done() <-chan struct{} {
	return r.ctx.Done()
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosing {
		return nil
	}

	r.isClosing = true
	r.cancel()

	var result *multierror.Error

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("channel close error: %w", err))
		}
	}

	if r.connection != nil {
		if err := r.connection.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("connection close error: %w", err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		r.log.WithError(err).Error("Failed to close RabbitMQ cleanly")
		return err
	}
	r.log.Info("RabbitMQ connection closed")
	return nil
}

func (r *RabbitMQClient) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.connection != nil && !r.connection.IsClosed()
}
