package shop

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/apperr"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/events"
	"github.com/safar/go-sql-shop/internal/models"
	"github.com/safar/go-sql-shop/internal/store"
)

const (
	DefaultOrderPageSize = 20
	MaxOrderPageSize     = 100
)

type OrderManager struct {
	db        *sql.DB
	logger    *zap.Logger
	publisher events.Publisher
}

func NewOrderManager(db *sql.DB, logger *zap.Logger, publisher events.Publisher) *OrderManager {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderManager{db: db, logger: logger, publisher: publisher}
}

// PlaceFromCart snapshots the owner's cart into a new order with status
// "placed". The cart is left as it is and stock is not decremented.
func (m *OrderManager) PlaceFromCart(ctx context.Context, owner int64) (*models.Order, error) {
	var order *models.Order

	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		cart, err := store.LockCartByOwner(ctx, tx, owner)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperr.Validation("items", "cannot place an order from an empty cart")
		}

		order, err = store.CreateOrder(ctx, tx, cart.Owner, cart.TotalPrice, models.OrderStatusPlaced)
		if err != nil {
			return err
		}

		order.Items, err = store.CopyCartItemsToOrder(ctx, tx, cart.ID, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("order placed",
		zap.Int64("owner", owner),
		zap.Int64("order_id", order.ID),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
		zap.Int("lines", len(order.Items)))
	m.publish(ctx, events.TypeOrderPlaced, order)
	return order, nil
}

// UpdateStatus moves an order to status on behalf of requester, who must own it.
func (m *OrderManager) UpdateStatus(ctx context.Context, orderID, requester int64, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)

	var order *models.Order
	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := store.LockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if current.Owner != requester {
			return apperr.Forbidden("you do not have permission to perform this action")
		}
		if status == "" {
			return apperr.BadRequest("status", "only the order status can be updated and it must not be empty")
		}
		if utf8.RuneCountInString(status) > models.MaxOrderStatusLength {
			return apperr.Validationf("status", "ensure this field has no more than %d characters", models.MaxOrderStatusLength)
		}

		order, err = store.UpdateOrderStatus(ctx, tx, orderID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.Int64("owner", requester),
		zap.String("status", order.Status))
	m.publish(ctx, events.TypeOrderStatusChanged, order)
	return order, nil
}

func (m *OrderManager) Get(ctx context.Context, orderID, requester int64) (*models.Order, error) {
	order, err := store.GetOrder(ctx, m.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.Owner != requester {
		return nil, apperr.Forbidden("you do not have permission to perform this action")
	}
	return order, nil
}

// List pages through the owner's orders, newest first.
func (m *OrderManager) List(ctx context.Context, owner int64, cursor string, limit int) (*store.CursorPage, error) {
	if _, err := store.DecodeCursor(cursor); err != nil {
		return nil, apperr.BadRequest("cursor", "invalid cursor")
	}
	if limit < 1 || limit > MaxOrderPageSize {
		limit = DefaultOrderPageSize
	}

	return store.ListOrdersCursor(ctx, m.db, owner, cursor, limit)
}

// publish runs after commit; a failed publish is logged, the order stands.
func (m *OrderManager) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := m.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		m.logger.Error("publish order event",
			zap.String("type", eventType),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}
