package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, owner_id, total_price, status, ordered_at, last_updated, version`

func scanOrder(row rowScanner, order *models.Order) error {
	return row.Scan(
		&order.ID,
		&order.Owner,
		&order.TotalPrice,
		&order.Status,
		&order.OrderedAt,
		&order.LastUpdated,
		&order.Version,
	)
}

func CreateOrder(ctx context.Context, q database.Querier, ownerID int64, totalPrice decimal.Decimal, status string) (*models.Order, error) {
	order := &models.Order{}

	query := `
		INSERT INTO orders (owner_id, total_price, status, ordered_at, last_updated, version)
		VALUES ($1, $2, $3, NOW(), NOW(), 1)
		RETURNING ` + orderColumns

	if err := scanOrder(q.QueryRowContext(ctx, query, ownerID, totalPrice, status), order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Items = []models.LineItem{}

	return order, nil
}

// CopyCartItemsToOrder writes one order join row per cart join row, with the
// same item and quantity, and returns the copied lines.
func CopyCartItemsToOrder(ctx context.Context, q database.Querier, cartID, orderID int64) ([]models.LineItem, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO order_items (order_id, item_id, quantity)
		 SELECT $1, item_id, quantity FROM cart_items WHERE cart_id = $2`,
		orderID, cartID)
	if err != nil {
		return nil, fmt.Errorf("copy cart items: %w", err)
	}

	lines, err := orderItems(ctx, q, []int64{orderID})
	if err != nil {
		return nil, err
	}

	return lines[orderID], nil
}

func GetOrder(ctx context.Context, q database.Querier, id int64) (*models.Order, error) {
	return getOrder(ctx, q, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// LockOrder reads the order holding its row lock until tx ends.
func LockOrder(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	return getOrder(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func getOrder(ctx context.Context, q database.Querier, query string, id int64) (*models.Order, error) {
	order := &models.Order{}

	if err := scanOrder(q.QueryRowContext(ctx, query, id), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	lines, err := orderItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = lines[id]

	return order, nil
}

func UpdateOrderStatus(ctx context.Context, q database.Querier, id int64, status string) (*models.Order, error) {
	order := &models.Order{}

	query := `
		UPDATE orders
		SET status = $1, last_updated = NOW(), version = version + 1
		WHERE id = $2
		RETURNING ` + orderColumns

	if err := scanOrder(q.QueryRowContext(ctx, query, status, id), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	lines, err := orderItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = lines[id]

	return order, nil
}

// orderItems loads the join rows of several orders at once. Every requested
// id is present in the result, possibly with an empty slice.
func orderItems(ctx context.Context, q database.Querier, orderIDs []int64) (map[int64][]models.LineItem, error) {
	lines := make(map[int64][]models.LineItem, len(orderIDs))
	for _, id := range orderIDs {
		lines[id] = []models.LineItem{}
	}
	if len(orderIDs) == 0 {
		return lines, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT order_id, item_id, quantity FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, item_id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var line models.LineItem
		if err := rows.Scan(&orderID, &line.ItemID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		lines[orderID] = append(lines[orderID], line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

func ListOrdersCursor(ctx context.Context, q database.Querier, ownerID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE owner_id = $1
		  AND (ordered_at, id) < ($2, $3)
		ORDER BY ordered_at DESC, id DESC
		LIMIT $4`

	rows, err := q.QueryContext(ctx, query, ownerID, cursorData.OrderedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	ids := make([]int64, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	lines, err := orderItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = lines[orders[i].ID]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			OrderedAt: lastOrder.OrderedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
