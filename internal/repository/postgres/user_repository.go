package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
)

const userColumns = `id, username, password_hash, user_type, sign_up_date, customer_profile, vehicle_type, availability`

// UserRepository keeps customer profiles as JSON and the driver fields as
// columns so availability can be flipped with a conditional update.
type UserRepository struct {
	q querier
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var profileJSON []byte
	var vehicleType sql.NullString
	var availability bool

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Type,
		&u.SignUpDate,
		&profileJSON,
		&vehicleType,
		&availability,
	)
	if err != nil {
		return nil, err
	}

	switch u.Type {
	case domain.UserTypeCustomer:
		u.Customer = &domain.CustomerProfile{}
		if len(profileJSON) > 0 {
			if err := json.Unmarshal(profileJSON, u.Customer); err != nil {
				return nil, fmt.Errorf("customer profile deserialization error: %w", err)
			}
		}
	case domain.UserTypeDriver:
		u.Driver = &domain.DriverProfile{VehicleType: vehicleType.String, Availability: availability}
	}
	return u, nil
}

// userValues yields a nil profile for non-customers so the column stays NULL.
func userValues(u *domain.User) (profile interface{}, vehicleType sql.NullString, availability bool, err error) {
	if u.Customer != nil {
		profileJSON, err := json.Marshal(u.Customer)
		if err != nil {
			return nil, vehicleType, false, fmt.Errorf("customer profile serialization error: %w", err)
		}
		profile = profileJSON
	}
	if u.Driver != nil {
		vehicleType = sql.NullString{String: u.Driver.VehicleType, Valid: true}
		availability = u.Driver.Availability
	}
	return profile, vehicleType, availability, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, fmt.Sprintf("user %s", id), query, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return r.findOne(ctx, fmt.Sprintf("user %q", username), query, username)
}

func (r *UserRepository) findOne(ctx context.Context, what, query string, args ...interface{}) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("%s", what)
		}
		return nil, fmt.Errorf("user receive error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context, userType domain.UserType) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR user_type = $1) ORDER BY username`

	rows, err := r.q.QueryContext(ctx, query, string(userType))
	if err != nil {
		return nil, fmt.Errorf("users retrieval error: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user scan error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users iteration error: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Add(ctx context.Context, u *domain.User) error {
	profile, vehicleType, availability, err := userValues(u)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, username, password_hash, user_type, sign_up_date, customer_profile, vehicle_type, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.q.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.Type,
		u.SignUpDate,
		profile,
		vehicleType,
		availability,
	)
	if err != nil {
		return fmt.Errorf("user creation error: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	profile, vehicleType, availability, err := userValues(u)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET username = $2, password_hash = $3, customer_profile = $4, vehicle_type = $5, availability = $6
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHash,
		profile,
		vehicleType,
		availability,
	)
	if err != nil {
		return fmt.Errorf("user update error: %w", err)
	}
	return mustChange(result, "user", u.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("user delete error: %w", err)
	}
	return mustChange(result, "user", id)
}

func (r *UserRepository) SetDriverAvailability(ctx context.Context, id uuid.UUID, from, to bool) (bool, error) {
	query := `
		UPDATE users SET availability = $3
		WHERE id = $1 AND user_type = 'driver' AND availability = $2
	`

	result, err := r.q.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("driver availability update error: %w", err)
	}
	return rowsChanged(result)
}
