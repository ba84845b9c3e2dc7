package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/safar/go-sql-shop/internal/database"
	"github.com/safar/go-sql-shop/internal/models"
	"github.com/shopspring/decimal"
)

const itemColumns = `id, title, description, target_gender, quantity, buy_price, sell_price, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, item *models.Item) error {
	return row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.TargetGender,
		&item.Quantity,
		&item.BuyPrice,
		&item.SellPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Version,
	)
}

type ItemParams struct {
	Title        string
	Description  string
	TargetGender string
	Quantity     int
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
}

func CreateItem(ctx context.Context, q database.Querier, p ItemParams) (*models.Item, error) {
	item := &models.Item{}

	query := `
		INSERT INTO items (title, description, target_gender, quantity, buy_price, sell_price, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
		RETURNING ` + itemColumns

	err := scanItem(q.QueryRowContext(ctx, query,
		p.Title, p.Description, p.TargetGender, p.Quantity, p.BuyPrice, p.SellPrice), item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	return item, nil
}

func GetItem(ctx context.Context, q database.Querier, id int64) (*models.Item, error) {
	item := &models.Item{}

	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	if err := scanItem(q.QueryRowContext(ctx, query, id), item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

// UpdateItem overwrites every mutable field of the item if its version still
// matches. A stale version (or a concurrently deleted item) yields
// database.ErrOptimisticLockFailed.
func UpdateItem(ctx context.Context, q database.Querier, id int64, version int, p ItemParams) (*models.Item, error) {
	item := &models.Item{}

	query := `
		UPDATE items
		SET title = $1, description = $2, target_gender = $3, quantity = $4,
		    buy_price = $5, sell_price = $6, version = version + 1, updated_at = NOW()
		WHERE id = $7 AND version = $8
		RETURNING ` + itemColumns

	err := scanItem(q.QueryRowContext(ctx, query,
		p.Title, p.Description, p.TargetGender, p.Quantity, p.BuyPrice, p.SellPrice, id, version), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOptimisticLockFailed
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	return item, nil
}

func DeleteItem(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrItemNotFound
	}

	return nil
}

// MissingItemIDs returns the ids that have no item row, in input order.
func MissingItemIDs(ctx context.Context, q database.Querier, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT id FROM items WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("check items exist: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		found[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	return missing, nil
}

type ItemQuery struct {
	Search   string
	OrderBy  string
	Page     int
	PageSize int
}

var itemOrderColumns = map[string]string{
	"title":      "title",
	"qty":        "quantity",
	"sell_price": "sell_price",
}

// ItemOrderBy turns "title,-sell_price" into an ORDER BY list. Only title,
// qty and sell_price may be used.
func ItemOrderBy(raw string) (string, error) {
	var clauses []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = field[1:]
		}

		column, ok := itemOrderColumns[field]
		if !ok {
			return "", fmt.Errorf("cannot order by %q", field)
		}
		clauses = append(clauses, column+" "+direction)
	}

	clauses = append(clauses, "id ASC")
	return strings.Join(clauses, ", "), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func ListItems(ctx context.Context, q database.Querier, iq ItemQuery) (*OffsetPage, error) {
	orderBy := iq.OrderBy
	if orderBy == "" {
		orderBy = "id ASC"
	}

	where := ""
	var args []any
	if iq.Search != "" {
		where = `WHERE title ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+escapeLike(iq.Search)+"%")
	}

	var total int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	offset := (iq.Page - 1) * iq.PageSize
	query := fmt.Sprintf(`
		SELECT %s
		FROM items
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, itemColumns, where, orderBy, len(args)+1, len(args)+2)

	rows, err := q.QueryContext(ctx, query, append(args, iq.PageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(items, total, iq.Page, iq.PageSize), nil
}
