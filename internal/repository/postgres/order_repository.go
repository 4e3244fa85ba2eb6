package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
)

const orderColumns = `id, customer_id, address_id, lines, status, order_date, updated_at`

type OrderRepository struct {
	q querier
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var linesJSON []byte

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.AddressID,
		&linesJSON,
		&order.Status,
		&order.OrderDate,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
		return nil, fmt.Errorf("order lines deserialization error: %w", err)
	}
	if order.Lines == nil {
		order.Lines = []domain.OrderLine{}
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("order %s", id)
		}
		return nil, fmt.Errorf("order receive error: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC`
	return r.list(ctx, query, customerID)
}

func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY order_date DESC`
	return r.list(ctx, query, status)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orders retrieval error: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("order scan error: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders iteration error: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) Add(ctx context.Context, order *domain.Order) error {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("order lines serialization error: %w", err)
	}

	query := `
		INSERT INTO orders (id, customer_id, address_id, lines, status, order_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.q.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.AddressID,
		linesJSON,
		order.Status,
		order.OrderDate,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("order creation error: %w", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("order lines serialization error: %w", err)
	}

	query := `
		UPDATE orders
		SET customer_id = $2, address_id = $3, lines = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.AddressID,
		linesJSON,
		order.Status,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("order update error: %w", err)
	}
	return mustChange(result, "order", order.ID)
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("order delete error: %w", err)
	}
	return mustChange(result, "order", id)
}

func (r *OrderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`

	result, err := r.q.ExecContext(ctx, query, id, from, to, time.Now())
	if err != nil {
		return false, fmt.Errorf("order status update error: %w", err)
	}
	return rowsChanged(result)
}

func (r *OrderRepository) AppendLine(ctx context.Context, id uuid.UUID, line domain.OrderLine) (bool, error) {
	lineJSON, err := json.Marshal([]domain.OrderLine{line})
	if err != nil {
		return false, fmt.Errorf("order line serialization error: %w", err)
	}

	query := `
		UPDATE orders SET lines = lines || $2::jsonb, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query, id, lineJSON, time.Now(), domain.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("order line append error: %w", err)
	}
	return rowsChanged(result)
}

func (r *OrderRepository) DeleteIfStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1 AND status = $2`, id, status)
	if err != nil {
		return false, fmt.Errorf("order delete error: %w", err)
	}
	return rowsChanged(result)
}
