package shop

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
	"github.com/safar/go-sql-shop/internal/store"
)

// WishlistManager owns each user's wishlist. Every operation is scoped to the
// owner id passed in, which callers take from the authenticated identity.
type WishlistManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewWishlistManager(db *sql.DB, logger *zap.Logger) *WishlistManager {
	return &WishlistManager{db: db, logger: logger}
}

func (m *WishlistManager) Get(ctx context.Context, owner int64) (*models.Wishlist, error) {
	var wishlist *models.Wishlist
	err := database.WithTransaction(ctx, m.db, database.ReadOnlyTxOptions(), func(tx *sql.Tx) error {
		var err error
		wishlist, err = store.GetWishlistByOwner(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wishlist, nil
}

// Upsert sets the owner's wishlist to exactly items, creating the wishlist on
// first use. The bool reports whether it was created.
func (m *WishlistManager) Upsert(ctx context.Context, owner int64, items []int64) (*models.Wishlist, bool, error) {
	var wishlist *models.Wishlist
	var created bool
	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if err := ensureItemsExist(ctx, tx, items); err != nil {
			return err
		}
		items := dedupeIDs(items)

		current, isNew, err := store.UpsertWishlist(ctx, tx, owner)
		if err != nil {
			return err
		}
		created = isNew

		if err := store.SetWishlistItems(ctx, tx, current.ID, items); err != nil {
			return err
		}

		wishlist, err = store.GetWishlistByOwner(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	m.logger.Info("wishlist saved",
		zap.Int64("owner", owner),
		zap.Int64("wishlist_id", wishlist.ID),
		zap.Int("items", len(wishlist.Items)),
		zap.Bool("created", created))
	return wishlist, created, nil
}

// AddItems unions items into the existing wishlist.
func (m *WishlistManager) AddItems(ctx context.Context, owner int64, items []int64) (*models.Wishlist, error) {
	return m.edit(ctx, owner, "wishlist items added", func(tx *sql.Tx, current []int64) ([]int64, error) {
		if err := ensureItemsExist(ctx, tx, items); err != nil {
			return nil, err
		}
		return unionIDs(current, items), nil
	})
}

// RemoveItems drops items from the existing wishlist. Ids that are not on the
// wishlist are ignored.
func (m *WishlistManager) RemoveItems(ctx context.Context, owner int64, items []int64) (*models.Wishlist, error) {
	return m.edit(ctx, owner, "wishlist items removed", func(_ *sql.Tx, current []int64) ([]int64, error) {
		return differenceIDs(current, items), nil
	})
}

func (m *WishlistManager) edit(ctx context.Context, owner int64, msg string, next func(*sql.Tx, []int64) ([]int64, error)) (*models.Wishlist, error) {
	var wishlist *models.Wishlist

	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := store.LockWishlistByOwner(ctx, tx, owner)
		if err != nil {
			return err
		}

		items, err := next(tx, current.Items)
		if err != nil {
			return err
		}

		if err := store.SetWishlistItems(ctx, tx, current.ID, items); err != nil {
			return err
		}

		wishlist, err = store.GetWishlistByOwner(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info(msg, zap.Int64("owner", owner), zap.Int("items", len(wishlist.Items)))
	return wishlist, nil
}
