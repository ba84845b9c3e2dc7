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

func GetCartByOwner(ctx context.Context, q database.Querier, ownerID int64) (*models.Cart, error) {
	return getCart(ctx, q, ownerID, `
		SELECT id, owner_id, total_price FROM carts WHERE owner_id = $1`)
}

// LockCartByOwner reads the owner's cart and its lines while holding a share
// lock, so the lines cannot be replaced until tx ends.
func LockCartByOwner(ctx context.Context, tx *sql.Tx, ownerID int64) (*models.Cart, error) {
	return getCart(ctx, tx, ownerID, `
		SELECT id, owner_id, total_price FROM carts WHERE owner_id = $1 FOR SHARE`)
}

func getCart(ctx context.Context, q database.Querier, ownerID int64, query string) (*models.Cart, error) {
	cart := &models.Cart{}

	err := q.QueryRowContext(ctx, query, ownerID).Scan(&cart.ID, &cart.Owner, &cart.TotalPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	items, err := cartItems(ctx, q, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

func cartItems(ctx context.Context, q database.Querier, cartID int64) ([]models.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT item_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY item_id`,
		cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ItemID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// UpsertCart creates the owner's cart with totalPrice or overwrites the total
// of the existing one. The cart row stays locked for the rest of tx, which
// serializes concurrent writers of the same owner's cart.
func UpsertCart(ctx context.Context, tx *sql.Tx, ownerID int64, totalPrice decimal.Decimal) (int64, bool, error) {
	var cartID int64
	var created bool

	err := tx.QueryRowContext(ctx,
		`INSERT INTO carts (owner_id, total_price, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (owner_id) DO UPDATE
		 SET total_price = EXCLUDED.total_price, updated_at = NOW()
		 RETURNING id, (xmax = 0) AS created`,
		ownerID, totalPrice).Scan(&cartID, &created)
	if err != nil {
		return 0, false, fmt.Errorf("upsert cart: %w", err)
	}

	return cartID, created, nil
}

// ReplaceCartItems deletes every join row of the cart and inserts lines.
func ReplaceCartItems(ctx context.Context, tx *sql.Tx, cartID int64, lines []models.LineItem) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	itemIDs := make([]int64, len(lines))
	quantities := make([]int64, len(lines))
	for i, line := range lines {
		itemIDs[i] = line.ItemID
		quantities[i] = int64(line.Quantity)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, item_id, quantity)
		 SELECT $1, item_id, quantity
		 FROM unnest($2::bigint[], $3::integer[]) AS t(item_id, quantity)`,
		cartID, pq.Array(itemIDs), pq.Array(quantities))
	if err != nil {
		return fmt.Errorf("insert cart items: %w", err)
	}

	return nil
}
