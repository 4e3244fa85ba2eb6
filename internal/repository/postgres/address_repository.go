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

const addressColumns = `id, city, postal_code, street_name, street_number, extra_info`

type AddressRepository struct {
	q querier
}

func scanAddress(row rowScanner) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(&a.ID, &a.City, &a.PostalCode, &a.StreetName, &a.StreetNumber, &a.ExtraInfo)
	return a, err
}

func (r *AddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	a, err := scanAddress(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("address %s", id)
		}
		return nil, fmt.Errorf("address receive error: %w", err)
	}
	return a, nil
}

func (r *AddressRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Address, error) {
	if len(ids) == 0 {
		return []*domain.Address{}, nil
	}

	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = ANY($1::uuid[])`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("addresses retrieval error: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("address scan error: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("addresses iteration error: %w", err)
	}
	return addresses, nil
}

func (r *AddressRepository) FindMatching(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	query := `
		SELECT ` + addressColumns + ` FROM addresses
		WHERE LOWER(city) = LOWER($1) AND LOWER(postal_code) = LOWER($2)
			AND LOWER(street_name) = LOWER($3) AND LOWER(street_number) = LOWER($4)
			AND LOWER(extra_info) = LOWER($5)
		LIMIT 1
	`

	a, err := scanAddress(r.q.QueryRowContext(ctx, query,
		address.City,
		address.PostalCode,
		address.StreetName,
		address.StreetNumber,
		address.ExtraInfo,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("address matching %q", address.PostalLine())
		}
		return nil, fmt.Errorf("address receive error: %w", err)
	}
	return a, nil
}

func (r *AddressRepository) Add(ctx context.Context, a *domain.Address) error {
	query := `
		INSERT INTO addresses (id, city, postal_code, street_name, street_number, extra_info)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query, a.ID, a.City, a.PostalCode, a.StreetName, a.StreetNumber, a.ExtraInfo)
	if err != nil {
		return fmt.Errorf("address creation error: %w", err)
	}
	return nil
}

func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	query := `
		UPDATE addresses
		SET city = $2, postal_code = $3, street_name = $4, street_number = $5, extra_info = $6
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, a.ID, a.City, a.PostalCode, a.StreetName, a.StreetNumber, a.ExtraInfo)
	if err != nil {
		return fmt.Errorf("address update error: %w", err)
	}
	return mustChange(result, "address", a.ID)
}

func (r *AddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("address delete error: %w", err)
	}
	return mustChange(result, "address", id)
}
