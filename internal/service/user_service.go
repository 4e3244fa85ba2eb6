package service

import (
	"context"
	"errors"

	"github.com/food-delivery-platform/backend/internal/credentials"
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	store  repository.Store
	hasher credentials.Hasher
	log    logrus.FieldLogger
}

func NewUserService(store repository.Store, hasher credentials.Hasher, log logrus.FieldLogger) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		log:    log.WithField("service", "user"),
	}
}

// Register creates a customer, driver or admin. Drivers start available.
func (s *UserService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	if err := s.hasher.CheckStrength(reg.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, domain.Persistence("hash password", err)
	}
	user := domain.NewUser(reg, hash)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Users().FindByUsername(ctx, user.Username)
		switch {
		case err == nil:
			return domain.InvalidArgumentf("username %q is already taken", existing.Username)
		case !errors.Is(err, domain.ErrNotFound):
			return domain.Persistence("check username", err)
		}
		if err := tx.Users().Add(ctx, user); err != nil {
			return domain.Persistence("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"user_type": user.Type,
	}).Infof("User registered: %s", user.Username)
	return user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords are reported the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.InvalidArgumentf("invalid credentials")
		}
		return nil, domain.Persistence("load user", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, credentials.ErrMismatch) {
			s.log.WithField("user_id", user.ID).Warn("Authentication failed")
			return nil, domain.InvalidArgumentf("invalid credentials")
		}
		return nil, domain.Persistence("verify password", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load user", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, userType domain.UserType) ([]*domain.User, error) {
	if userType != "" && !userType.IsValid() {
		return nil, domain.InvalidArgumentf("unknown user type %q", userType)
	}
	users, err := s.store.Users().FindAll(ctx, userType)
	if err != nil {
		return nil, domain.Persistence("list users", err)
	}
	return users, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return domain.Persistence("delete user", err)
	}
	s.log.WithField("user_id", id).Info("User deleted")
	return nil
}

// SetDriverAvailability is the admin override. A driver on an active delivery
// cannot be made available.
func (s *UserService) SetDriverAvailability(ctx context.Context, id uuid.UUID, available bool) (*domain.User, error) {
	var updated *domain.User

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return domain.Persistence("load driver", err)
		}
		if !user.IsDriver() {
			return domain.InvalidArgumentf("user %s is a %s, not a driver", id, user.Type)
		}

		if available {
			active, err := tx.Deliveries().FindInProgressByDriver(ctx, id)
			if err != nil {
				return domain.Persistence("load active delivery", err)
			}
			if len(active) > 0 {
				return domain.InvalidStatef("driver %s has delivery %s in progress", id, active[0].ID)
			}
		}

		if user.Driver.Availability != available {
			changed, err := tx.Users().SetDriverAvailability(ctx, id, !available, available)
			if err != nil {
				return domain.Persistence("set driver availability", err)
			}
			if !changed {
				return domain.InvalidStatef("driver %s availability changed concurrently", id)
			}
			user.Driver.Availability = available
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"driver_id": id, "available": available}).Info("Driver availability set")
	return updated, nil
}
