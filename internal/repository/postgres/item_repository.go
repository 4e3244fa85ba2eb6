package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const itemColumns = `id, name, item_type, price, stock, availability, description, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type ItemRepository struct {
	q querier
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Type,
		&item.Price,
		&item.Stock,
		&item.Availability,
		&item.Description,
		&item.CreatedAt,
	)
	return item, err
}

func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("item %s", id)
		}
		return nil, fmt.Errorf("item receive error: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return []*domain.Item{}, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ANY($1::uuid[]) ORDER BY name`
	return r.list(ctx, query, pq.Array(uuidStrings(ids)))
}

func (r *ItemRepository) FindAll(ctx context.Context) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name`
	return r.list(ctx, query)
}

func (r *ItemRepository) FindByType(ctx context.Context, itemType domain.ItemType) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_type = $1 ORDER BY name`
	return r.list(ctx, query, itemType)
}

func (r *ItemRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Item, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("items retrieval error: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("item scan error: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("items iteration error: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Add(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, name, item_type, price, stock, availability, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Type,
		item.Price,
		item.Stock,
		item.Availability,
		item.Description,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("item creation error: %w", err)
	}
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items
		SET name = $2, item_type = $3, price = $4, stock = $5, availability = $6, description = $7
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Type,
		item.Price,
		item.Stock,
		item.Availability,
		item.Description,
	)
	if err != nil {
		return fmt.Errorf("item update error: %w", err)
	}
	return mustChange(result, "item", item.ID)
}

// UpdateIfStock leaves the row untouched when its stock moved since the
// caller read it.
func (r *ItemRepository) UpdateIfStock(ctx context.Context, item *domain.Item, expectedStock int) (bool, error) {
	query := `
		UPDATE items
		SET name = $2, item_type = $3, price = $4, stock = $5, availability = $6, description = $7
		WHERE id = $1 AND stock = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Type,
		item.Price,
		item.Stock,
		item.Availability,
		item.Description,
		expectedStock,
	)
	if err != nil {
		return false, fmt.Errorf("item update error: %w", err)
	}
	return rowsChanged(result)
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("item delete error: %w", err)
	}
	return mustChange(result, "item", id)
}

// DecrementStock is a single conditional update; a row that no longer holds
// enough stock is left untouched and reported as unchanged.
func (r *ItemRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE items
		SET stock = stock - $2,
			availability = CASE WHEN stock - $2 = 0 THEN false ELSE availability END
		WHERE id = $1 AND stock >= $2
	`

	result, err := r.q.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return false, fmt.Errorf("item stock update error: %w", err)
	}
	return rowsChanged(result)
}

func mustChange(result sql.Result, entity string, id uuid.UUID) error {
	changed, err := rowsChanged(result)
	if err != nil {
		return err
	}
	if !changed {
		return domain.NotFoundf("%s %s", entity, id)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
