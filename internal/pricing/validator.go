// Package pricing turns requested (item, quantity) pairs into priced lines,
// checking each against the item's current stock.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/safar/go-sql-shop/internal/apperr"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
)

type LineRequest struct {
	ItemID   int64
	Quantity int
}

type ItemLookup interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
}

// LookupFunc adapts a plain function to ItemLookup.
type LookupFunc func(ctx context.Context, id int64) (*models.Item, error)

func (f LookupFunc) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return f(ctx, id)
}

type Line struct {
	Item      *models.Item
	Quantity  int
	LineTotal decimal.Decimal
}

type Quote struct {
	Lines      []Line
	TotalPrice decimal.Decimal
}

// LineItems returns the quote as join rows, in request order.
func (q *Quote) LineItems() []models.LineItem {
	items := make([]models.LineItem, 0, len(q.Lines))
	for _, line := range q.Lines {
		items = append(items, models.LineItem{ItemID: line.Item.ID, Quantity: line.Quantity})
	}
	return items
}

type ItemNotFoundError struct {
	Index  int
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item with id %d does not exist", e.ItemID)
}

func (e *ItemNotFoundError) Unwrap() error {
	return database.ErrItemNotFound
}

func (e *ItemNotFoundError) FieldName() string {
	return fmt.Sprintf("items[%d].item_id", e.Index)
}

type InsufficientInventoryError struct {
	Index     int
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("quantity %d for item %d is higher than item inventory (%d)",
		e.Requested, e.ItemID, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return database.ErrInsufficientStock
}

func (e *InsufficientInventoryError) FieldName() string {
	return fmt.Sprintf("items[%d].quantity", e.Index)
}

// Validate resolves every request in order and stops at the first failure.
// It has no side effects; a nil error means every line passed.
func Validate(ctx context.Context, lookup ItemLookup, reqs []LineRequest) (*Quote, error) {
	quote := &Quote{
		Lines:      make([]Line, 0, len(reqs)),
		TotalPrice: decimal.Zero,
	}
	seen := make(map[int64]struct{}, len(reqs))

	for i, req := range reqs {
		if req.Quantity < 1 {
			return nil, apperr.Validationf(fmt.Sprintf("items[%d].quantity", i),
				"quantity must be at least 1, got %d", req.Quantity)
		}
		if _, dup := seen[req.ItemID]; dup {
			return nil, apperr.Validationf(fmt.Sprintf("items[%d].item_id", i),
				"item %d appears more than once", req.ItemID)
		}
		seen[req.ItemID] = struct{}{}

		item, err := lookup.GetItem(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, database.ErrItemNotFound) {
				return nil, &ItemNotFoundError{Index: i, ItemID: req.ItemID}
			}
			return nil, fmt.Errorf("resolve item %d: %w", req.ItemID, err)
		}

		if req.Quantity > item.Quantity {
			return nil, &InsufficientInventoryError{
				Index:     i,
				ItemID:    req.ItemID,
				Requested: req.Quantity,
				Available: item.Quantity,
			}
		}

		lineTotal := item.SellPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		quote.TotalPrice = quote.TotalPrice.Add(lineTotal)
		quote.Lines = append(quote.Lines, Line{Item: item, Quantity: req.Quantity, LineTotal: lineTotal})
	}

	if quote.TotalPrice.GreaterThan(models.MaxMoneyAmount) {
		return nil, apperr.Validationf("items", "total price %s exceeds the maximum of %s",
			quote.TotalPrice.StringFixed(2), models.MaxMoneyAmount.StringFixed(2))
	}

	return quote, nil
}
