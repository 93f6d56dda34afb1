package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names an order lifecycle event.
type OrderEventType string

const (
	OrderEventCreated             OrderEventType = "ORDER_CREATED"
	OrderEventStatusChanged       OrderEventType = "ORDER_STATUS_CHANGED"
	OrderEventGatewayNotification OrderEventType = "GATEWAY_NOTIFICATION"
)

// OrderEvent is published after an order write commits.
type OrderEvent struct {
	Type       OrderEventType  `json:"type"`
	OrderType  PurchaseType    `json:"order_type"`
	OrderKey   string          `json:"order_key"`
	UserID     string          `json:"user_id,omitempty"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds an event describing o's current state.
func NewOrderEvent(t OrderEventType, o *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:       t,
		OrderType:  o.Type,
		OrderKey:   o.Key().String(),
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: at.UTC(),
	}
}
