package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidState       = errors.New("invalid state")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrConsistency        = errors.New("consistency error")
	ErrPersistence        = errors.New("persistence failure")
	ErrBundleKindMismatch = errors.New("bundle kind mismatch")
)

// InsufficientStockError names the item that blocked an order validation.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %q (%s): requested=%d, available=%d, shortfall=%d",
		e.ItemName, e.ItemID, e.Requested, e.Available, e.Shortfall())
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

func Consistencyf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConsistency)
}

// Persistence wraps a collaborator failure. Errors that already carry a domain
// kind are returned unchanged so a NotFound from a repository stays a NotFound.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func IsDomainError(err error) bool {
	for _, kind := range []error{
		ErrNotFound, ErrInvalidArgument, ErrInvalidState, ErrInsufficientStock,
		ErrConsistency, ErrPersistence, ErrBundleKindMismatch,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
