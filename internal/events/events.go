// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/go-sql-shop/internal/models"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type       string            `json:"type"`
	OrderID    int64             `json:"order_id"`
	Owner      int64             `json:"owner"`
	Status     string            `json:"status"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Items      []models.LineItem `json:"items"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		Owner:      order.Owner,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		Items:      order.Items,
		OccurredAt: order.LastUpdated,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
