package shop

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
	"github.com/safar/go-sql-shop/internal/pricing"
	"github.com/safar/go-sql-shop/internal/store"
)

// CartManager owns each user's cart. Writes always replace the whole cart.
type CartManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCartManager(db *sql.DB, logger *zap.Logger) *CartManager {
	return &CartManager{db: db, logger: logger}
}

// GetDetail reads the cart row and its lines from one snapshot, so the total
// always matches the lines returned with it.
func (m *CartManager) GetDetail(ctx context.Context, owner int64) (*models.Cart, error) {
	var cart *models.Cart
	err := database.WithTransaction(ctx, m.db, database.ReadOnlyTxOptions(), func(tx *sql.Tx) error {
		var err error
		cart, err = store.GetCartByOwner(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// CreateOrReplace prices lines against current stock and makes them the
// entire content of the owner's cart. Nothing is written unless every line
// validates. The bool reports whether the cart was created.
func (m *CartManager) CreateOrReplace(ctx context.Context, owner int64, lines []pricing.LineRequest) (*models.Cart, bool, error) {
	var cart *models.Cart
	var created bool

	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		lookup := pricing.LookupFunc(func(ctx context.Context, id int64) (*models.Item, error) {
			return store.GetItem(ctx, tx, id)
		})

		quote, err := pricing.Validate(ctx, lookup, lines)
		if err != nil {
			return err
		}

		cartID, isNew, err := store.UpsertCart(ctx, tx, owner, quote.TotalPrice)
		if err != nil {
			return err
		}
		created = isNew

		items := quote.LineItems()
		if err := store.ReplaceCartItems(ctx, tx, cartID, items); err != nil {
			return err
		}

		cart = &models.Cart{
			ID:         cartID,
			Owner:      owner,
			TotalPrice: quote.TotalPrice,
			Items:      items,
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	m.logger.Info("cart saved",
		zap.Int64("owner", owner),
		zap.Int64("cart_id", cart.ID),
		zap.String("total_price", cart.TotalPrice.StringFixed(2)),
		zap.Int("lines", len(cart.Items)),
		zap.Bool("created", created))
	return cart, created, nil
}
