package shop

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/safar/go-sql-shop/internal/apperr"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
	"github.com/safar/go-sql-shop/internal/store"
)

type ItemInput struct {
	Title        string
	Description  string
	TargetGender string
	Quantity     int
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
}

// ItemPatch holds the fields of a partial update; nil means unchanged.
type ItemPatch struct {
	Title        *string
	Description  *string
	TargetGender *string
	Quantity     *int
	BuyPrice     *decimal.Decimal
	SellPrice    *decimal.Decimal
}

func (p ItemPatch) apply(item *models.Item) ItemInput {
	in := ItemInput{
		Title:        item.Title,
		Description:  item.Description,
		TargetGender: item.TargetGender,
		Quantity:     item.Quantity,
		BuyPrice:     item.BuyPrice,
		SellPrice:    item.SellPrice,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.TargetGender != nil {
		in.TargetGender = *p.TargetGender
	}
	if p.Quantity != nil {
		in.Quantity = *p.Quantity
	}
	if p.BuyPrice != nil {
		in.BuyPrice = *p.BuyPrice
	}
	if p.SellPrice != nil {
		in.SellPrice = *p.SellPrice
	}
	return in
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title", "this field may not be blank")
	}
	if err := checkLength("title", in.Title, models.MaxItemTitleLength); err != nil {
		return err
	}
	if err := checkLength("description", in.Description, models.MaxItemDescriptionLength); err != nil {
		return err
	}
	if err := checkLength("target_gender", in.TargetGender, models.MaxTargetGenderLength); err != nil {
		return err
	}
	if in.Quantity < 0 {
		return apperr.Validation("qty", "must not be negative")
	}
	if err := checkPrice("buy_price", in.BuyPrice); err != nil {
		return err
	}
	return checkPrice("sell_price", in.SellPrice)
}

func (in ItemInput) params() store.ItemParams {
	return store.ItemParams{
		Title:        in.Title,
		Description:  in.Description,
		TargetGender: in.TargetGender,
		Quantity:     in.Quantity,
		BuyPrice:     in.BuyPrice,
		SellPrice:    in.SellPrice,
	}
}

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return apperr.Validationf(field, "ensure this field has no more than %d characters", max)
	}
	return nil
}

func checkPrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.Validation(field, "must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return apperr.Validation(field, "ensure there are no more than 2 decimal places")
	}
	if price.GreaterThan(models.MaxMoneyAmount) {
		return apperr.Validation(field, "ensure there are no more than 9 digits in total")
	}
	return nil
}

type CategoryInput struct {
	Name  string
	Items []int64
}

type CategoryPatch struct {
	Name  *string
	Items *[]int64
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name", "this field may not be blank")
	}
	return checkLength("name", in.Name, models.MaxCategoryNameLength)
}

// CatalogManager serves item and category administration.
type CatalogManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCatalogManager(db *sql.DB, logger *zap.Logger) *CatalogManager {
	return &CatalogManager{db: db, logger: logger}
}

func (m *CatalogManager) ListItems(ctx context.Context, search, ordering string, page, pageSize int) (*store.OffsetPage, error) {
	orderBy, err := store.ItemOrderBy(ordering)
	if err != nil {
		return nil, apperr.Validation("ordering", err.Error())
	}

	page, pageSize = store.NormalizePage(page, pageSize)
	return store.ListItems(ctx, m.db, store.ItemQuery{
		Search:   strings.TrimSpace(search),
		OrderBy:  orderBy,
		Page:     page,
		PageSize: pageSize,
	})
}

func (m *CatalogManager) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return store.GetItem(ctx, m.db, id)
}

func (m *CatalogManager) CreateItem(ctx context.Context, in ItemInput) (*models.Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, m.db, in.params())
	if err != nil {
		return nil, err
	}

	m.logger.Info("item created", zap.Int64("item_id", item.ID), zap.Int("qty", item.Quantity))
	return item, nil
}

func (m *CatalogManager) ReplaceItem(ctx context.Context, id int64, in ItemInput) (*models.Item, error) {
	return m.updateItem(ctx, id, func(*models.Item) ItemInput { return in })
}

func (m *CatalogManager) PatchItem(ctx context.Context, id int64, patch ItemPatch) (*models.Item, error) {
	return m.updateItem(ctx, id, patch.apply)
}

// updateItem reads the current row, builds the new field values from it, and
// writes them guarded by the row version.
func (m *CatalogManager) updateItem(ctx context.Context, id int64, build func(*models.Item) ItemInput) (*models.Item, error) {
	var updated *models.Item

	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}

		in := build(current)
		if err := in.validate(); err != nil {
			return err
		}

		updated, err = store.UpdateItem(ctx, tx, id, current.Version, in.params())
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("item updated", zap.Int64("item_id", id), zap.Int("version", updated.Version))
	return updated, nil
}

func (m *CatalogManager) DeleteItem(ctx context.Context, id int64) error {
	if err := store.DeleteItem(ctx, m.db, id); err != nil {
		return err
	}

	m.logger.Info("item deleted", zap.Int64("item_id", id))
	return nil
}

func (m *CatalogManager) ListCategories(ctx context.Context, page, pageSize int) (*store.OffsetPage, error) {
	page, pageSize = store.NormalizePage(page, pageSize)
	return store.ListCategories(ctx, m.db, page, pageSize)
}

func (m *CatalogManager) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return store.GetCategory(ctx, m.db, id)
}

func (m *CatalogManager) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var category *models.Category
	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if err := ensureItemsExist(ctx, tx, in.Items); err != nil {
			return err
		}
		in.Items = dedupeIDs(in.Items)

		var err error
		category, err = store.CreateCategory(ctx, tx, in.Name, in.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("category created", zap.Int64("category_id", category.ID), zap.Int("items", len(category.Items)))
	return category, nil
}

func (m *CatalogManager) ReplaceCategory(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	return m.updateCategory(ctx, id, func(*models.Category) CategoryInput { return in })
}

func (m *CatalogManager) PatchCategory(ctx context.Context, id int64, patch CategoryPatch) (*models.Category, error) {
	return m.updateCategory(ctx, id, func(current *models.Category) CategoryInput {
		in := CategoryInput{Name: current.Name, Items: current.Items}
		if patch.Name != nil {
			in.Name = *patch.Name
		}
		if patch.Items != nil {
			in.Items = *patch.Items
		}
		return in
	})
}

func (m *CatalogManager) updateCategory(ctx context.Context, id int64, build func(*models.Category) CategoryInput) (*models.Category, error) {
	var category *models.Category

	err := database.WithTransaction(ctx, m.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := store.GetCategory(ctx, tx, id)
		if err != nil {
			return err
		}

		in := build(current)
		if err := in.validate(); err != nil {
			return err
		}
		if err := ensureItemsExist(ctx, tx, in.Items); err != nil {
			return err
		}
		in.Items = dedupeIDs(in.Items)

		category, err = store.UpdateCategory(ctx, tx, id, in.Name, in.Items)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("category updated", zap.Int64("category_id", id), zap.Int("items", len(category.Items)))
	return category, nil
}

func (m *CatalogManager) DeleteCategory(ctx context.Context, id int64) error {
	if err := store.DeleteCategory(ctx, m.db, id); err != nil {
		return err
	}

	m.logger.Info("category deleted", zap.Int64("category_id", id))
	return nil
}

// ensureItemsExist fails with a NotFound error naming the first id that has
// no item row.
func ensureItemsExist(ctx context.Context, q database.Querier, ids []int64) error {
	missing, err := store.MissingItemIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	for i, id := range ids {
		if id == missing[0] {
			return &apperr.Error{
				Kind:    apperr.KindNotFound,
				Field:   fmt.Sprintf("items[%d]", i),
				Message: fmt.Sprintf("item with id %d does not exist", id),
				Err:     database.ErrItemNotFound,
			}
		}
	}
	return database.ErrItemNotFound
}
