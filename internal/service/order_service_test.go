package service_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/shared/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	home := f.address(t, "Rue de la Paix")

	order, err := f.orders.CreateOrder(f.ctx, alice.ID, home.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Empty(t, order.Lines)
	assert.False(t, order.OrderDate.IsZero())

	_, err = f.orders.CreateOrder(f.ctx, uuid.New(), home.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.CreateOrder(f.ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bob := f.driver(t, "bob")
	_, err = f.orders.CreateOrder(f.ctx, bob.ID, home.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAddBundleToOrder_DiscountedPrice(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 5)
	cola := f.item(t, "Cola", domain.ItemTypeDrink, "2", 5)
	deal, err := f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"main", "drink"}, dec("0.2"))
	require.NoError(t, err)

	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"))

	order, err = f.orders.AddBundleToOrder(f.ctx, order.ID, deal.ID, []uuid.UUID{cola.ID, burger.ID})
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.True(t, dec("9.6").Equal(order.Lines[0].Price), "got %s", order.Lines[0].Price)
	assert.Equal(t, domain.BundleKindDiscounted, order.Lines[0].Kind)
	assert.True(t, dec("9.6").Equal(order.Total()))
}

func TestAddBundleToOrder_Selections(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 5)
	fries := f.item(t, "Fries", domain.ItemTypeSide, "3", 5)
	deal, err := f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"main", "drink"}, dec("0.2"))
	require.NoError(t, err)
	menu, err := f.catalog.CreatePredefinedBundle(f.ctx, "Menu", "", []uuid.UUID{burger.ID, fries.ID}, dec("12"))
	require.NoError(t, err)

	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"))

	_, err = f.orders.AddBundleToOrder(f.ctx, order.ID, deal.ID, []uuid.UUID{burger.ID, fries.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "side does not fill the drink slot")

	_, err = f.orders.AddBundleToOrder(f.ctx, order.ID, deal.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.orders.AddBundleToOrder(f.ctx, order.ID, deal.ID, []uuid.UUID{burger.ID, uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.AddBundleToOrder(f.ctx, order.ID, menu.ID, []uuid.UUID{burger.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.orders.AddBundleToOrder(f.ctx, order.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.AddBundleToOrder(f.ctx, uuid.New(), menu.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	order, err = f.orders.AddBundleToOrder(f.ctx, order.ID, menu.ID, nil)
	require.NoError(t, err)
	assert.Len(t, order.Lines, 1)
}

func TestValidateOrder_CommitsStock(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 3)
	cola := f.item(t, "Cola", domain.ItemTypeDrink, "2", 1)
	alice := f.customer(t, "alice")
	order := f.order(t, alice, f.address(t, "Main St"), burger, burger, cola)

	validated, err := f.orders.ValidateOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusValidated, validated.Status)

	assert.Equal(t, 1, f.stock(t, burger.ID))
	assert.Equal(t, 0, f.stock(t, cola.ID))
	drained, err := f.catalog.GetItem(f.ctx, cola.ID)
	require.NoError(t, err)
	assert.False(t, drained.Availability)

	published := f.published.ofType(events.OrderValidatedEvent)
	require.Len(t, published, 1)
	var payload events.OrderValidatedPayload
	require.NoError(t, published[0].Decode(&payload))
	assert.Equal(t, alice.ID, payload.CustomerID)
	assert.Equal(t, 3, payload.Units)
	assert.True(t, dec("22").Equal(payload.Total))

	_, err = f.orders.ValidateOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestValidateOrder_InsufficientStockLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)
	itemA := f.item(t, "ItemA", domain.ItemTypeMain, "10", 1)
	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"), itemA, itemA)

	_, err := f.orders.ValidateOrder(f.ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var shortage *domain.InsufficientStockError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, itemA.ID, shortage.ItemID)
	assert.Equal(t, "ItemA", shortage.ItemName)
	assert.Equal(t, 2, shortage.Requested)
	assert.Equal(t, 1, shortage.Available)
	assert.Equal(t, 1, shortage.Shortfall())

	assert.Equal(t, 1, f.stock(t, itemA.ID))
	assert.Equal(t, domain.OrderStatusPending, f.orderStatus(t, order.ID))
	assert.Empty(t, f.published.ofType(events.OrderValidatedEvent))
}

func TestValidateOrder_IsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	plenty := f.item(t, "Plenty", domain.ItemTypeMain, "10", 10)
	scarce := f.item(t, "Scarce", domain.ItemTypeDrink, "2", 1)
	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"), plenty, scarce, scarce)

	_, err := f.orders.ValidateOrder(f.ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, f.stock(t, plenty.ID))
	assert.Equal(t, 1, f.stock(t, scarce.ID))
}

func TestValidateOrder_VanishedItem(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 3)
	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"), burger)
	require.NoError(t, f.catalog.DeleteItem(f.ctx, burger.ID))

	_, err := f.orders.ValidateOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrConsistency)
	assert.Equal(t, domain.OrderStatusPending, f.orderStatus(t, order.ID))
}

func TestValidateOrder_EmptyOrMissing(t *testing.T) {
	f := newFixture(t)
	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"))

	_, err := f.orders.ValidateOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.orders.ValidateOrder(f.ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidateOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	last := f.item(t, "Last", domain.ItemTypeDessert, "4", 3)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")

	const buyers = 10
	orders := make([]*domain.Order, buyers)
	for i := range orders {
		orders[i] = f.order(t, alice, home, last)
	}

	var (
		wg        sync.WaitGroup
		succeeded int32
	)
	for _, order := range orders {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := f.orders.ValidateOrder(f.ctx, id); err == nil {
				atomic.AddInt32(&succeeded, 1)
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}(order.ID)
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded)
	assert.Equal(t, 0, f.stock(t, last.ID))
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 3)
	alice := f.customer(t, "alice")
	home := f.address(t, "Main St")

	pending := f.order(t, alice, home, burger)
	require.NoError(t, f.orders.CancelOrder(f.ctx, pending.ID))
	_, err := f.orders.GetOrderDetails(f.ctx, pending.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, f.published.ofType(events.OrderCancelledEvent), 1)

	validated := f.order(t, alice, home, burger)
	_, err = f.orders.ValidateOrder(f.ctx, validated.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.orders.CancelOrder(f.ctx, validated.ID), domain.ErrInvalidState)
	assert.ErrorIs(t, f.orders.CancelOrder(f.ctx, uuid.New()), domain.ErrNotFound)
}

func TestAddItemToOrder_RejectsNonPending(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "10", 3)
	order := f.order(t, f.customer(t, "alice"), f.address(t, "Main St"), burger)
	_, err := f.orders.ValidateOrder(f.ctx, order.ID)
	require.NoError(t, err)

	_, err = f.orders.AddItemToOrder(f.ctx, order.ID, burger.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestListOrdersForCustomer(t *testing.T) {
	f := newFixture(t)
	alice := f.customer(t, "alice")
	bob := f.customer(t, "bob")
	home := f.address(t, "Main St")
	f.order(t, alice, home)
	f.order(t, alice, home)
	f.order(t, bob, home)

	orders, err := f.orders.ListOrdersForCustomer(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	_, err = f.orders.ListOrdersForCustomer(f.ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	driver := f.driver(t, "dan")
	_, err = f.orders.ListOrdersForCustomer(f.ctx, driver.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
