// Package service implements the catalog, ordering, delivery, user and
// address use cases over a repository.Store. Services hold no request state
// and are safe for concurrent use.
//
// Domain rule violations come back as errors wrapping the domain sentinels.
// Anything else a collaborator reports is wrapped as domain.ErrPersistence.
package service

import (
	"context"

	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const serviceName = "food-delivery"

// publish is best effort; the state change it announces is already committed.
func publish(ctx context.Context, log logrus.FieldLogger, pub events.Publisher,
	eventType events.EventType, aggregateID uuid.UUID, payload interface{}) {
	event, err := events.NewEvent(eventType, serviceName, aggregateID, payload)
	if err != nil {
		log.WithError(err).WithField("event_type", eventType).Error("Event build error")
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event_type":   eventType,
			"aggregate_id": aggregateID,
		}).Warn("Event publish error")
	}
}
