package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	encoded := EncodeCursor(OrderCursor{OrderedAt: at, ID: 42})

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.OrderedAt.Equal(at))
	assert.Equal(t, int64(42), decoded.ID)
}

func TestDecodeEmptyCursorStartsAtNewest(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, decoded.OrderedAt.After(time.Now()))
	assert.Equal(t, int64(1<<63-1), decoded.ID)
}

func TestDecodeGarbageCursor(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.Error(t, err)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(2, 50)
	assert.Equal(t, 2, page)
	assert.Equal(t, 50, size)
}

func TestNewOffsetPageTotalPages(t *testing.T) {
	assert.Equal(t, 3, newOffsetPage(nil, 41, 1, 20).TotalPages)
	assert.Equal(t, 2, newOffsetPage(nil, 40, 1, 20).TotalPages)
	assert.Equal(t, 0, newOffsetPage(nil, 0, 1, 20).TotalPages)
}

func TestItemOrderBy(t *testing.T) {
	clause, err := ItemOrderBy("title,-sell_price")
	require.NoError(t, err)
	assert.Equal(t, "title ASC, sell_price DESC, id ASC", clause)

	clause, err = ItemOrderBy(" -qty ")
	require.NoError(t, err)
	assert.Equal(t, "quantity DESC, id ASC", clause)

	clause, err = ItemOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "id ASC", clause)

	_, err = ItemOrderBy("buy_price")
	assert.Error(t, err)

	_, err = ItemOrderBy("title; DROP TABLE items")
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}
