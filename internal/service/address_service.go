package service

import (
	"context"
	"errors"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AddressService struct {
	store repository.Store
	log   logrus.FieldLogger
}

func NewAddressService(store repository.Store, log logrus.FieldLogger) *AddressService {
	return &AddressService{
		store: store,
		log:   log.WithField("service", "address"),
	}
}

// GetOrCreate returns the stored address with the same components, ignoring
// case and surrounding whitespace, or stores a new one.
func (s *AddressService) GetOrCreate(ctx context.Context, in domain.Address) (*domain.Address, error) {
	address := in
	address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}

	var result *domain.Address
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Addresses().FindMatching(ctx, &address)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Persistence("match address", err)
		}

		address.ID = uuid.New()
		if err := tx.Addresses().Add(ctx, &address); err != nil {
			return domain.Persistence("create address", err)
		}
		result = &address
		s.log.WithField("address_id", address.ID).Info("Address created")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AddressService) GetAddress(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	address, err := s.store.Addresses().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load address", err)
	}
	return address, nil
}
