package service_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository/memory"
	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAssignDelivery_DriverClaim(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")
	o1 := f.order(t, alice, home)
	o2 := f.order(t, alice, home)
	dan := f.driver(t, "dan")

	delivery, err := f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{o1.ID, o2.ID}, dan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusInProgress, delivery.Status)
	assert.Equal(t, []uuid.UUID{o1.ID, o2.ID}, delivery.OrderIDs)

	assert.Equal(t, domain.OrderStatusInProgress, f.orderStatus(t, o1.ID))
	assert.Equal(t, domain.OrderStatusInProgress, f.orderStatus(t, o2.ID))

	driver, err := f.users.GetUser(f.ctx, dan.ID)
	require.NoError(t, err)
	assert.False(t, driver.DriverAvailable())

	o3 := f.order(t, alice, home)
	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{o3.ID}, dan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.OrderStatusPending, f.orderStatus(t, o3.ID))

	published := f.published.ofType(events.DeliveryAssignedEvent)
	require.Len(t, published, 1)
	var payload events.DeliveryAssignedPayload
	require.NoError(t, published[0].Decode(&payload))
	assert.Equal(t, string(domain.FlowDriverClaim), payload.Flow)
}

func TestCreateAndAssignDelivery_AdminDispatchNeedsValidatedOrders(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 5)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")
	pending := f.order(t, alice, home, burger)
	validated := f.order(t, alice, home, burger)
	_, err := f.orders.ValidateOrder(f.ctx, validated.ID)
	require.NoError(t, err)
	dan := f.driver(t, "dan")

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowAdminDispatch, []uuid.UUID{validated.ID, pending.ID}, dan.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.OrderStatusValidated, f.orderStatus(t, validated.ID), "rolled back")
	driver, err := f.users.GetUser(f.ctx, dan.ID)
	require.NoError(t, err)
	assert.True(t, driver.DriverAvailable())

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowAdminDispatch, []uuid.UUID{validated.ID}, dan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInProgress, f.orderStatus(t, validated.ID))
}

func TestCreateAndAssignDelivery_Arguments(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	order := f.order(t, alice, f.address(t, "Main St"))
	dan := f.driver(t, "dan")

	_, err := f.deliveries.CreateAndAssignDelivery(f.ctx, "teleport", []uuid.UUID{order.ID}, dan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, nil, dan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{order.ID, order.ID}, dan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{order.ID}, alice.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{order.ID}, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{uuid.New()}, dan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.users.SetDriverAvailability(f.ctx, dan.ID, false)
	require.NoError(t, err)
	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{order.ID}, dan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateAndAssignDelivery_OneDriverOneDelivery(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")
	dan := f.driver(t, "dan")

	const attempts = 8
	orders := make([]*domain.Order, attempts)
	for i := range orders {
		orders[i] = f.order(t, alice, home)
	}

	var (
		wg       sync.WaitGroup
		assigned int32
	)
	for _, order := range orders {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{id}, dan.ID); err == nil {
				atomic.AddInt32(&assigned, 1)
			}
		}(order.ID)
	}
	wg.Wait()

	assert.Equal(t, int32(1), assigned)
	deliveries, err := f.deliveries.ListDeliveriesForDriver(f.ctx, dan.ID)
	require.NoError(t, err)
	assert.Len(t, deliveries, 1)

	pending, err := f.deliveries.ListPendingOrders(f.ctx)
	require.NoError(t, err)
	assert.Len(t, pending, attempts-1)
}

func TestCompleteDelivery_FreesDriver(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")
	order := f.order(t, alice, home)
	dan := f.driver(t, "dan")

	delivery, err := f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{order.ID}, dan.ID)
	require.NoError(t, err)

	completed, err := f.deliveries.CompleteDelivery(f.ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusDelivered, completed.Status)
	require.NotNil(t, completed.DeliveryTime)
	assert.Equal(t, domain.OrderStatusDelivered, f.orderStatus(t, order.ID))

	driver, err := f.users.GetUser(f.ctx, dan.ID)
	require.NoError(t, err)
	assert.True(t, driver.DriverAvailable())

	active, err := f.deliveries.GetAssignedDelivery(f.ctx, dan.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = f.deliveries.CompleteDelivery(f.ctx, delivery.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.deliveries.CompleteDelivery(f.ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	next := f.order(t, alice, home)
	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{next.ID}, dan.ID)
	assert.NoError(t, err, "driver can be reassigned after completing")
}

func TestCompleteDelivery_RacingSecondCompletionIsRejected(t *testing.T) {
	base := memory.NewStore()
	seed := newFixtureWithStore(t, base)
	alice := seed.customer(t, "alice")
	home := seed.address(t, "Main St")
	first := seed.order(t, alice, home)
	next := seed.order(t, alice, home)
	dan := seed.driver(t, "dan")
	delivery, err := seed.deliveries.CreateAndAssignDelivery(seed.ctx, domain.FlowDriverClaim, []uuid.UUID{first.ID}, dan.ID)
	require.NoError(t, err)

	store := &interleavingStore{Store: base}
	f := newFixtureWithStore(t, store)
	var (
		completed  *domain.Delivery
		reassigned *domain.Delivery
	)
	store.afterDeliveryLoad = func() {
		if completed != nil {
			return
		}
		completed, err = seed.deliveries.CompleteDelivery(seed.ctx, delivery.ID)
		require.NoError(t, err)
		reassigned, err = seed.deliveries.CreateAndAssignDelivery(seed.ctx, domain.FlowDriverClaim, []uuid.UUID{next.ID}, dan.ID)
		require.NoError(t, err)
	}

	_, err = f.deliveries.CompleteDelivery(f.ctx, delivery.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	driver, err := seed.users.GetUser(seed.ctx, dan.ID)
	require.NoError(t, err)
	assert.False(t, driver.DriverAvailable(), "driver stays claimed by the new delivery")

	active, err := seed.deliveries.GetAssignedDelivery(seed.ctx, dan.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, reassigned.ID, active.ID)

	stored, err := base.Deliveries().FindByID(seed.ctx, delivery.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeliveryTime)
	assert.True(t, completed.DeliveryTime.Equal(*stored.DeliveryTime), "delivery time is not overwritten")

	assert.Len(t, seed.published.ofType(events.DeliveryCompletedEvent), 1)
	assert.Empty(t, f.published.ofType(events.DeliveryCompletedEvent))
}

func TestCompleteDelivery_OrderUpdateFailureIsLoggedNotRaised(t *testing.T) {
	base := memory.NewStore()
	seed := newFixtureWithStore(t, base)
	alice := seed.customer(t, "alice")
	home := seed.address(t, "Main St")
	ok := seed.order(t, alice, home)
	broken := seed.order(t, alice, home)
	dan := seed.driver(t, "dan")

	f := newFixtureWithStore(t, &faultyStore{Store: base, failOrder: broken.ID})
	delivery, err := f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{ok.ID, broken.ID}, dan.ID)
	require.NoError(t, err)

	completed, err := f.deliveries.CompleteDelivery(f.ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusDelivered, completed.Status)
	assert.NotNil(t, completed.DeliveryTime)

	stored, err := base.Deliveries().FindByID(f.ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusDelivered, stored.Status)

	assert.Equal(t, domain.OrderStatusDelivered, seed.orderStatus(t, ok.ID))
	assert.Equal(t, domain.OrderStatusInProgress, seed.orderStatus(t, broken.ID))

	var logged bool
	for _, entry := range f.logs.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			if err, isErr := entry.Data[logrus.ErrorKey].(error); isErr && errors.Is(err, errDiskFull) {
				logged = true
			}
		}
	}
	assert.True(t, logged, "order failure is logged")

	published := f.published.ofType(events.DeliveryCompletedEvent)
	require.Len(t, published, 1)
	var payload events.DeliveryCompletedPayload
	require.NoError(t, published[0].Decode(&payload))
	assert.Equal(t, []uuid.UUID{broken.ID}, payload.StaleOrders)
}

func TestGetItinerary(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	first := f.address(t, "Rue A")
	second := f.address(t, "Rue B")
	o1 := f.order(t, alice, first)
	o2 := f.order(t, alice, second)
	o3 := f.order(t, alice, first)
	dan := f.driver(t, "dan")

	itinerary, err := f.deliveries.GetItinerary(f.ctx, dan.ID)
	require.NoError(t, err)
	assert.Nil(t, itinerary, "no active delivery")
	assert.Empty(t, f.planner.Calls())

	_, err = f.deliveries.CreateAndAssignDelivery(f.ctx, domain.FlowDriverClaim, []uuid.UUID{o1.ID, o2.ID, o3.ID}, dan.ID)
	require.NoError(t, err)

	itinerary, err = f.deliveries.GetItinerary(f.ctx, dan.ID)
	require.NoError(t, err)
	require.NotNil(t, itinerary)
	assert.Equal(t, []string{first.PostalLine(), second.PostalLine()}, itinerary.Stops)
	assert.Equal(t, "mock", itinerary.Provider)

	f.planner.Err = errors.New("upstream down")
	_, err = f.deliveries.GetItinerary(f.ctx, dan.ID)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = f.deliveries.GetItinerary(f.ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.deliveries.GetItinerary(f.ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAssignableOrders(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 5)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")
	f.order(t, alice, home, burger)
	validated := f.order(t, alice, home, burger)
	_, err := f.orders.ValidateOrder(f.ctx, validated.ID)
	require.NoError(t, err)

	dispatchable, err := f.deliveries.ListAssignableOrders(f.ctx, domain.FlowAdminDispatch)
	require.NoError(t, err)
	require.Len(t, dispatchable, 1)
	assert.Equal(t, validated.ID, dispatchable[0].ID)

	_, err = f.deliveries.ListAssignableOrders(f.ctx, "teleport")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
