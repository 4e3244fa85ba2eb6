package service_test

import (
	"testing"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	dan := f.driver(t, "dan")
	assert.True(t, dan.DriverAvailable(), "drivers start available")
	assert.NotEqual(t, "secret123", dan.PasswordHash)

	_, err := f.users.Register(f.ctx, domain.Registration{
		Username: "DAN", Password: "secret123", Type: domain.UserTypeDriver, VehicleType: "car",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "usernames are unique ignoring case")

	_, err = f.users.Register(f.ctx, domain.Registration{
		Username: "weak", Password: "short", Type: domain.UserTypeAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.users.Register(f.ctx, domain.Registration{
		Username: "carl", Password: "secret123", Type: domain.UserTypeCustomer,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "customers need a profile")
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")

	user, err := f.users.Authenticate(f.ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = f.users.Authenticate(f.ctx, "alice", "wrong1234")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.users.Authenticate(f.ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestListAndDeleteUsers(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	f.driver(t, "dan")
	f.driver(t, "eve")

	drivers, err := f.users.ListUsers(f.ctx, domain.UserTypeDriver)
	require.NoError(t, err)
	assert.Len(t, drivers, 2)

	all, err := f.users.ListUsers(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.users.ListUsers(f.ctx, "robot")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	require.NoError(t, f.users.DeleteUser(f.ctx, alice.ID))
	_, err = f.users.GetUser(f.ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.users.DeleteUser(f.ctx, uuid.New()), domain.ErrNotFound)
}

func TestSetDriverAvailability(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	dan := f.driver(t, "dan")

	updated, err := f.users.SetDriverAvailability(f.ctx, dan.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.DriverAvailable())

	updated, err = f.users.SetDriverAvailability(f.ctx, dan.ID, false)
	require.NoError(t, err, "setting the current value is a no-op")
	assert.False(t, updated.DriverAvailable())

	_, err = f.users.SetDriverAvailability(f.ctx, alice.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.users.SetDriverAvailability(f.ctx, dan.ID, true)
	require.NoError(t, err)

	order := f.order(t, alice, f.address(t, "Main St"))
	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{order.ID}, dan.ID)
	require.NoError(t, err)

	_, err = f.users.SetDriverAvailability(f.ctx, dan.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "driver on the road stays unavailable")
}

func TestAddressGetOrCreate_Deduplicates(t *testing.T) {
	f := newFixture(t)

	first, err := f.addresses.GetOrCreate(f.ctx, domain.Address{
		City: "Lyon", PostalCode: "69001", StreetName: "Rue A", StreetNumber: "1",
	})
	require.NoError(t, err)

	again, err := f.addresses.GetOrCreate(f.ctx, domain.Address{
		City: " lyon ", PostalCode: "69001", StreetName: "RUE A", StreetNumber: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := f.addresses.GetOrCreate(f.ctx, domain.Address{
		City: "Lyon", PostalCode: "69001", StreetName: "Rue A", StreetNumber: "2",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = f.addresses.GetOrCreate(f.ctx, domain.Address{City: "Lyon", StreetName: "Rue A"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	stored, err := f.addresses.GetAddress(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lyon", stored.City)

	_, err = f.addresses.GetAddress(f.ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
