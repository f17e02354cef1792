package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeNewOrders = "NEW_ORDERS_DETECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSummary carries the order fields the notification consumers need
type OrderSummary struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	DateCreated time.Time       `json:"date_created"`
}

// NewOrdersDetectedEvent published when a delta sync merges orders that
// were not in the snapshot before
type NewOrdersDetectedEvent struct {
	BaseEvent
	Count  int            `json:"count"`
	Orders []OrderSummary `json:"orders"`
}

// NewOrdersDetected builds the event for a batch of freshly merged orders
func NewOrdersDetected(orders []Order) *NewOrdersDetectedEvent {
	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			TotalAmount: o.TotalAmount,
			Currency:    o.Currency,
			DateCreated: o.DateCreated,
		})
	}
	return &NewOrdersDetectedEvent{
		BaseEvent: BaseEvent{
			EventID:   uuid.New().String(),
			EventType: EventTypeNewOrders,
			Timestamp: time.Now(),
		},
		Count:  len(summaries),
		Orders: summaries,
	}
}
