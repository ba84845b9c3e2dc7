package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
)

func GetWishlistByOwner(ctx context.Context, q database.Querier, ownerID int64) (*models.Wishlist, error) {
	return getWishlist(ctx, q, ownerID, `
		SELECT id, owner_id, last_updated FROM wishlists WHERE owner_id = $1`)
}

// LockWishlistByOwner reads the owner's wishlist holding its row lock until
// the surrounding transaction ends.
func LockWishlistByOwner(ctx context.Context, tx *sql.Tx, ownerID int64) (*models.Wishlist, error) {
	return getWishlist(ctx, tx, ownerID, `
		SELECT id, owner_id, last_updated FROM wishlists WHERE owner_id = $1 FOR UPDATE`)
}

func getWishlist(ctx context.Context, q database.Querier, ownerID int64, query string) (*models.Wishlist, error) {
	wishlist := &models.Wishlist{}

	err := q.QueryRowContext(ctx, query, ownerID).Scan(&wishlist.ID, &wishlist.Owner, &wishlist.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrWishlistNotFound
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT item_id FROM wishlist_items WHERE wishlist_id = $1 ORDER BY item_id`,
		wishlist.ID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist items: %w", err)
	}
	defer rows.Close()

	wishlist.Items = []int64{}
	for rows.Next() {
		var itemID int64
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		wishlist.Items = append(wishlist.Items, itemID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return wishlist, nil
}

// UpsertWishlist creates the owner's wishlist or bumps last_updated on the
// existing one. Either way the row stays locked for the rest of tx.
func UpsertWishlist(ctx context.Context, tx *sql.Tx, ownerID int64) (*models.Wishlist, bool, error) {
	wishlist := &models.Wishlist{}
	var created bool

	err := tx.QueryRowContext(ctx,
		`INSERT INTO wishlists (owner_id, last_updated)
		 VALUES ($1, NOW())
		 ON CONFLICT (owner_id) DO UPDATE SET last_updated = NOW()
		 RETURNING id, owner_id, last_updated, (xmax = 0) AS created`,
		ownerID).Scan(&wishlist.ID, &wishlist.Owner, &wishlist.LastUpdated, &created)
	if err != nil {
		return nil, false, fmt.Errorf("upsert wishlist: %w", err)
	}

	return wishlist, created, nil
}

// SetWishlistItems replaces the wishlist's item set and bumps last_updated.
func SetWishlistItems(ctx context.Context, q database.Querier, wishlistID int64, itemIDs []int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1`, wishlistID)
	if err != nil {
		return fmt.Errorf("clear wishlist items: %w", err)
	}

	if len(itemIDs) > 0 {
		_, err = q.ExecContext(ctx,
			`INSERT INTO wishlist_items (wishlist_id, item_id)
			 SELECT $1, item_id FROM unnest($2::bigint[]) AS t(item_id)
			 ON CONFLICT DO NOTHING`,
			wishlistID, pq.Array(itemIDs))
		if err != nil {
			return fmt.Errorf("insert wishlist items: %w", err)
		}
	}

	_, err = q.ExecContext(ctx, `UPDATE wishlists SET last_updated = NOW() WHERE id = $1`, wishlistID)
	if err != nil {
		return fmt.Errorf("touch wishlist: %w", err)
	}

	return nil
}
