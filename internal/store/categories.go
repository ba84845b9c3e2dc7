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

func CreateCategory(ctx context.Context, q database.Querier, name string, itemIDs []int64) (*models.Category, error) {
	category := &models.Category{}

	err := q.QueryRowContext(ctx,
		`INSERT INTO categories (name, created_at, updated_at)
		 VALUES ($1, NOW(), NOW())
		 RETURNING id, name, created_at, updated_at`,
		name).Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := SetCategoryItems(ctx, q, category.ID, itemIDs); err != nil {
		return nil, err
	}
	category.Items = categoryItemsOrEmpty(itemIDs)

	return category, nil
}

func GetCategory(ctx context.Context, q database.Querier, id int64) (*models.Category, error) {
	category := &models.Category{}

	err := q.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`,
		id).Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	members, err := categoryItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	category.Items = categoryItemsOrEmpty(members[id])

	return category, nil
}

// UpdateCategory renames the category and replaces its item set.
func UpdateCategory(ctx context.Context, q database.Querier, id int64, name string, itemIDs []int64) (*models.Category, error) {
	category := &models.Category{}

	err := q.QueryRowContext(ctx,
		`UPDATE categories SET name = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING id, name, created_at, updated_at`,
		name, id).Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := SetCategoryItems(ctx, q, id, itemIDs); err != nil {
		return nil, err
	}
	category.Items = categoryItemsOrEmpty(itemIDs)

	return category, nil
}

func DeleteCategory(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrCategoryNotFound
	}

	return nil
}

// SetCategoryItems replaces the category's item set. Duplicate ids collapse.
func SetCategoryItems(ctx context.Context, q database.Querier, categoryID int64, itemIDs []int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM category_items WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("clear category items: %w", err)
	}

	if len(itemIDs) == 0 {
		return nil
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO category_items (category_id, item_id)
		 SELECT $1, item_id FROM unnest($2::bigint[]) AS t(item_id)
		 ON CONFLICT DO NOTHING`,
		categoryID, pq.Array(itemIDs))
	if err != nil {
		return fmt.Errorf("insert category items: %w", err)
	}

	return nil
}

func ListCategories(ctx context.Context, q database.Querier, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at
		 FROM categories
		 ORDER BY id
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	var ids []int64
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
		ids = append(ids, category.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	members, err := categoryItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].Items = categoryItemsOrEmpty(members[categories[i].ID])
	}

	return newOffsetPage(categories, total, page, pageSize), nil
}

func categoryItems(ctx context.Context, q database.Querier, categoryIDs []int64) (map[int64][]int64, error) {
	members := make(map[int64][]int64, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return members, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT category_id, item_id FROM category_items
		 WHERE category_id = ANY($1)
		 ORDER BY category_id, item_id`,
		pq.Array(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("get category items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID, itemID int64
		if err := rows.Scan(&categoryID, &itemID); err != nil {
			return nil, fmt.Errorf("scan category item: %w", err)
		}
		members[categoryID] = append(members[categoryID], itemID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return members, nil
}

func categoryItemsOrEmpty(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
