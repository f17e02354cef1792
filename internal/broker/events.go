package broker

import (
	"context"

	"baselinker-sync/internal/models"
	"baselinker-sync/internal/util"

	"go.uber.org/zap"
)

// EventPublisher adapts the Kafka producer to the sync engine's notifier
// contract. Publishing is best-effort: a failed publish never fails the
// sync that detected the orders.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		logger:   util.GetLogger(),
	}
}

// NotifyNewOrders publishes a NEW_ORDERS_DETECTED event for the batch.
func (e *EventPublisher) NotifyNewOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	event := models.NewOrdersDetected(orders)
	if err := e.producer.PublishEvent(ctx, event.EventID, event); err != nil {
		return err
	}

	util.NewOrderEventsPublished.Inc()
	e.logger.Info("New-order event published",
		zap.String("event_id", event.EventID),
		zap.Int("count", event.Count))
	return nil
}
