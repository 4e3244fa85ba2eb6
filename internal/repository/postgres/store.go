// Package postgres implements the repository contracts on PostgreSQL through
// database/sql and lib/pq. Stock, order status and driver availability are
// changed with conditional updates so concurrent writers cannot both win.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/food-delivery-platform/backend/internal/repository"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Items() repository.ItemRepository { return &ItemRepository{q: s.q} }
func (s *Store) Bundles() repository.BundleRepository { return &BundleRepository{q: s.q} }
func (s *Store) Orders() repository.OrderRepository { return &OrderRepository{q: s.q} }
func (s *Store) Deliveries() repository.DeliveryRepository { return &DeliveryRepository{q: s.q} }
func (s *Store) Users() repository.UserRepository { return &UserRepository{q: s.q} }
func (s *Store) Addresses() repository.AddressRepository { return &AddressRepository{q: s.q} }

// WithinTx commits when fn returns nil and rolls back otherwise. Nested calls
// join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction begin error: %w", err)
	}

	if err := fn(&Store{db: s.db, q: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit error: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rowsChanged reports whether an exec touched at least one row.
func rowsChanged(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
