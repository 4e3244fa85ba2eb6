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

const deliveryColumns = `id, driver_id, order_ids, status, created_at, delivery_time`

type DeliveryRepository struct {
	q querier
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	d := &domain.Delivery{}
	var orderIDsJSON []byte
	var deliveryTime sql.NullTime

	err := row.Scan(
		&d.ID,
		&d.DriverID,
		&orderIDsJSON,
		&d.Status,
		&d.CreatedAt,
		&deliveryTime,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(orderIDsJSON, &d.OrderIDs); err != nil {
		return nil, fmt.Errorf("delivery order ids deserialization error: %w", err)
	}

	// DeliveryTime nullable
	if deliveryTime.Valid {
		t := deliveryTime.Time
		d.DeliveryTime = &t
	}
	return d, nil
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`

	d, err := scanDelivery(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("delivery %s", id)
		}
		return nil, fmt.Errorf("delivery receive error: %w", err)
	}
	return d, nil
}

func (r *DeliveryRepository) FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID)
}

func (r *DeliveryRepository) FindInProgressByDriver(ctx context.Context, driverID uuid.UUID) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
		WHERE driver_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID, domain.DeliveryStatusInProgress)
}

func (r *DeliveryRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Delivery, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("deliveries retrieval error: %w", err)
	}
	defer rows.Close()

	deliveries := []*domain.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("delivery scan error: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("deliveries iteration error: %w", err)
	}
	return deliveries, nil
}

func (r *DeliveryRepository) Add(ctx context.Context, d *domain.Delivery) error {
	orderIDsJSON, err := json.Marshal(d.OrderIDs)
	if err != nil {
		return fmt.Errorf("delivery order ids serialization error: %w", err)
	}

	query := `
		INSERT INTO deliveries (id, driver_id, order_ids, status, created_at, delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.q.ExecContext(ctx, query,
		d.ID,
		d.DriverID,
		orderIDsJSON,
		d.Status,
		d.CreatedAt,
		d.DeliveryTime,
	)
	if err != nil {
		return fmt.Errorf("delivery creation error: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) Update(ctx context.Context, d *domain.Delivery) error {
	orderIDsJSON, err := json.Marshal(d.OrderIDs)
	if err != nil {
		return fmt.Errorf("delivery order ids serialization error: %w", err)
	}

	query := `
		UPDATE deliveries
		SET driver_id = $2, order_ids = $3, status = $4, delivery_time = $5
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		d.ID,
		d.DriverID,
		orderIDsJSON,
		d.Status,
		d.DeliveryTime,
	)
	if err != nil {
		return fmt.Errorf("delivery update error: %w", err)
	}
	return mustChange(result, "delivery", d.ID)
}

func (r *DeliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delivery delete error: %w", err)
	}
	return mustChange(result, "delivery", id)
}

func (r *DeliveryRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE deliveries
		SET status = $2, delivery_time = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query, id, domain.DeliveryStatusDelivered, at, domain.DeliveryStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("delivery completion error: %w", err)
	}
	return rowsChanged(result)
}
