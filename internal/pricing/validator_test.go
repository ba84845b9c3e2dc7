package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/go-sql-shop/internal/apperr"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
)

type catalog map[int64]*models.Item

func (c catalog) GetItem(_ context.Context, id int64) (*models.Item, error) {
	item, ok := c[id]
	if !ok {
		return nil, database.ErrItemNotFound
	}
	return item, nil
}

func newCatalog() catalog {
	return catalog{
		1: {ID: 1, Title: "Shirt", Quantity: 5, SellPrice: decimal.RequireFromString("10.00")},
		2: {ID: 2, Title: "Socks", Quantity: 100, SellPrice: decimal.RequireFromString("2.35")},
		3: {ID: 3, Title: "Sold out", Quantity: 0, SellPrice: decimal.RequireFromString("99.99")},
	}
}

func TestValidateSingleLine(t *testing.T) {
	quote, err := Validate(context.Background(), newCatalog(), []LineRequest{{ItemID: 1, Quantity: 3}})
	require.NoError(t, err)

	assert.True(t, quote.TotalPrice.Equal(decimal.RequireFromString("30.00")), "total %s", quote.TotalPrice)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, []models.LineItem{{ItemID: 1, Quantity: 3}}, quote.LineItems())
}

func TestValidateTotalIsExactSum(t *testing.T) {
	quote, err := Validate(context.Background(), newCatalog(), []LineRequest{
		{ItemID: 2, Quantity: 3},
		{ItemID: 1, Quantity: 5},
	})
	require.NoError(t, err)

	// 2.35 * 3 + 10.00 * 5
	assert.Equal(t, "57.05", quote.TotalPrice.StringFixed(2))
	assert.Equal(t, int64(2), quote.Lines[0].Item.ID)
	assert.Equal(t, "7.05", quote.Lines[0].LineTotal.StringFixed(2))
}

func TestValidateEmptyRequest(t *testing.T) {
	quote, err := Validate(context.Background(), newCatalog(), nil)
	require.NoError(t, err)
	assert.True(t, quote.TotalPrice.IsZero())
	assert.Empty(t, quote.LineItems())
}

func TestValidateQuantityAtStockLimit(t *testing.T) {
	_, err := Validate(context.Background(), newCatalog(), []LineRequest{{ItemID: 1, Quantity: 5}})
	assert.NoError(t, err)
}

func TestValidateInsufficientInventory(t *testing.T) {
	_, err := Validate(context.Background(), newCatalog(), []LineRequest{
		{ItemID: 2, Quantity: 1},
		{ItemID: 1, Quantity: 6},
	})

	var invErr *InsufficientInventoryError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, int64(1), invErr.ItemID)
	assert.Equal(t, 6, invErr.Requested)
	assert.Equal(t, 5, invErr.Available)
	assert.ErrorIs(t, err, database.ErrInsufficientStock)
	assert.Equal(t, "items[1].quantity", apperr.FieldOf(err))
}

func TestValidateSoldOutItem(t *testing.T) {
	_, err := Validate(context.Background(), newCatalog(), []LineRequest{{ItemID: 3, Quantity: 1}})
	assert.ErrorIs(t, err, database.ErrInsufficientStock)
}

func TestValidateItemNotFoundIsTerminal(t *testing.T) {
	calls := 0
	lookup := LookupFunc(func(ctx context.Context, id int64) (*models.Item, error) {
		calls++
		return newCatalog().GetItem(ctx, id)
	})

	_, err := Validate(context.Background(), lookup, []LineRequest{
		{ItemID: 1, Quantity: 1},
		{ItemID: 42, Quantity: 1},
		{ItemID: 2, Quantity: 1},
	})

	var nfErr *ItemNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(42), nfErr.ItemID)
	assert.ErrorIs(t, err, database.ErrItemNotFound)
	assert.Equal(t, "items[1].item_id", apperr.FieldOf(err))
	assert.Equal(t, 2, calls, "lines after the failure must not be resolved")
}

func TestValidateFirstFailureWins(t *testing.T) {
	_, err := Validate(context.Background(), newCatalog(), []LineRequest{
		{ItemID: 1, Quantity: 9},
		{ItemID: 77, Quantity: 1},
	})
	assert.ErrorIs(t, err, database.ErrInsufficientStock)
}

func TestValidateRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -2} {
		_, err := Validate(context.Background(), newCatalog(), []LineRequest{{ItemID: 1, Quantity: qty}})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, "items[0].quantity", apperr.FieldOf(err))
	}
}

func TestValidateRejectsDuplicateItems(t *testing.T) {
	_, err := Validate(context.Background(), newCatalog(), []LineRequest{
		{ItemID: 2, Quantity: 1},
		{ItemID: 2, Quantity: 4},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "items[1].item_id", apperr.FieldOf(err))
}

func TestValidateLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := LookupFunc(func(context.Context, int64) (*models.Item, error) { return nil, boom })

	_, err := Validate(context.Background(), lookup, []LineRequest{{ItemID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, database.ErrItemNotFound)
}

func TestValidateTotalAtColumnLimit(t *testing.T) {
	items := catalog{
		1: {ID: 1, Quantity: 5, SellPrice: decimal.RequireFromString("4999999.99")},
		2: {ID: 2, Quantity: 5, SellPrice: decimal.RequireFromString("0.01")},
	}

	quote, err := Validate(context.Background(), items, []LineRequest{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}})
	require.NoError(t, err)
	assert.True(t, quote.TotalPrice.Equal(models.MaxMoneyAmount))
}

func TestValidateRejectsTotalAboveColumnLimit(t *testing.T) {
	items := catalog{
		1: {ID: 1, Quantity: 5, SellPrice: decimal.RequireFromString("9999999.99")},
	}

	quote, err := Validate(context.Background(), items, []LineRequest{{ItemID: 1, Quantity: 2}})
	assert.Nil(t, quote)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "items", apperr.FieldOf(err))
}
