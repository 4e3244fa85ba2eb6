// Package credentials hashes and verifies user passwords.
package credentials

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/food-delivery-platform/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var ErrMismatch = errors.New("credentials do not match")

type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
	CheckStrength(password string) error
}

type BcryptHasher struct {
	cost int
}

var _ Hasher = (*BcryptHasher)(nil)

// NewBcryptHasher uses bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password hashing error: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// CheckStrength requires a minimum length, a letter and a digit.
func (h *BcryptHasher) CheckStrength(password string) error {
	if len(password) < MinPasswordLength {
		return domain.InvalidArgumentf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > 72 {
		return domain.InvalidArgumentf("password must be at most 72 bytes")
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return domain.InvalidArgumentf("password must contain a letter and a digit")
	}
	return nil
}
