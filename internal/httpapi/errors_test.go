package httpapi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/safar/go-sql-shop/internal/apperr"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/pricing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"app error", apperr.Forbidden("no"), apperr.KindForbidden},
		{"wrapped sentinel", fmt.Errorf("get cart: %w", database.ErrCartNotFound), apperr.KindNotFound},
		{"unknown item", &pricing.ItemNotFoundError{ItemID: 3}, apperr.KindNotFound},
		{"short stock", &pricing.InsufficientInventoryError{ItemID: 3, Requested: 6, Available: 5}, apperr.KindValidation},
		{"stale version", database.ErrOptimisticLockFailed, apperr.KindConflict},
		{"deadlock", fmt.Errorf("exec: %w", &pq.Error{Code: "40P01"}), apperr.KindConflict},
		{"serialization", &pq.Error{Code: "40001"}, apperr.KindConflict},
		{"foreign key", &pq.Error{Code: "23503"}, apperr.KindValidation},
		{"unique", &pq.Error{Code: "23505"}, apperr.KindConflict},
		{"anything else", errors.New("boom"), apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, message := classify(tt.err)
			assert.Equal(t, tt.kind, kind)
			assert.NotEmpty(t, message)
		})
	}
}

func TestClassifyHidesInternalDetail(t *testing.T) {
	_, message := classify(errors.New("dial tcp 10.0.0.3:5432: connection refused"))
	assert.Equal(t, "internal server error", message)
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "items[0].item_id", fieldPath("cartRequest.items[0].item_id"))
	assert.Equal(t, "title", fieldPath("itemRequest.title"))
	assert.Equal(t, "title", fieldPath("title"))
}
