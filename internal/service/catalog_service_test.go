package service_test

import (
	"testing"

	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_AvailableWithoutStockIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateItem(f.ctx, domain.NewItem{
		Name:         "Burger",
		Type:         domain.ItemTypeMain,
		Price:        dec("5.0"),
		Stock:        0,
		Availability: true,
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	items, err := f.catalog.ListItems(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateItem_Validation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]domain.NewItem{
		"zero price":     {Name: "Soup", Type: domain.ItemTypeStarter, Price: dec("0")},
		"negative stock": {Name: "Soup", Type: domain.ItemTypeStarter, Price: dec("3"), Stock: -1},
		"blank name":     {Name: "  ", Type: domain.ItemTypeStarter, Price: dec("3")},
		"unknown type":   {Name: "Soup", Type: "snack", Price: dec("3")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.catalog.CreateItem(f.ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestUpdateItem_PatchesOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, "Cola", domain.ItemTypeDrink, "2.00", 10)

	price := dec("2.50")
	updated, err := f.catalog.UpdateItem(f.ctx, item.ID, domain.ItemPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, "Cola", updated.Name)
	assert.Equal(t, 10, updated.Stock)

	stored, err := f.catalog.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(stored.Price))

	zero := 0
	_, err = f.catalog.UpdateItem(f.ctx, item.ID, domain.ItemPatch{Stock: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "available item cannot drop to zero stock")

	_, err = f.catalog.UpdateItem(f.ctx, uuid.New(), domain.ItemPatch{Price: &price})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateItem_KeepsStockConsumedByValidation(t *testing.T) {
	base := memory.NewStore()
	seed := newFixtureWithStore(t, base)
	burger := seed.item(t, "Burger", domain.ItemTypeMain, "5.00", 5)
	order := seed.order(t, seed.customer(t, "alice"), seed.address(t, "Main St"), burger, burger)

	store := &interleavingStore{Store: base}
	f := newFixtureWithStore(t, store)
	validated := false
	store.beforeItemWrite = func() {
		if validated {
			return
		}
		validated = true
		_, err := seed.orders.ValidateOrder(seed.ctx, order.ID)
		require.NoError(t, err)
	}

	name := "Smash burger"
	updated, err := f.catalog.UpdateItem(f.ctx, burger.ID, domain.ItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Smash burger", updated.Name)
	assert.Equal(t, 3, updated.Stock)

	assert.Equal(t, 3, seed.stock(t, burger.ID))
	assert.Equal(t, domain.OrderStatusValidated, seed.orderStatus(t, order.ID))
}

func TestUpdateItem_GivesUpWhenStockKeepsMoving(t *testing.T) {
	base := memory.NewStore()
	seed := newFixtureWithStore(t, base)
	burger := seed.item(t, "Burger", domain.ItemTypeMain, "5.00", 10)

	store := &interleavingStore{Store: base}
	f := newFixtureWithStore(t, store)
	store.beforeItemWrite = func() {
		ok, err := base.Items().DecrementStock(seed.ctx, burger.ID, 1)
		require.NoError(t, err)
		require.True(t, ok)
	}

	name := "Smash burger"
	_, err := f.catalog.UpdateItem(f.ctx, burger.ID, domain.ItemPatch{Name: &name})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := seed.catalog.GetItem(seed.ctx, burger.ID)
	require.NoError(t, err)
	assert.Equal(t, "Burger", stored.Name)
	assert.Equal(t, 7, stored.Stock)
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, "Cola", domain.ItemTypeDrink, "2.00", 10)

	require.NoError(t, f.catalog.DeleteItem(f.ctx, item.ID))
	_, err := f.catalog.GetItem(f.ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.catalog.DeleteItem(f.ctx, item.ID), domain.ErrNotFound)
}

func TestListItems_ByType(t *testing.T) {
	f := newFixture(t)
	f.item(t, "Cola", domain.ItemTypeDrink, "2.00", 10)
	f.item(t, "Water", domain.ItemTypeDrink, "1.00", 10)
	f.item(t, "Burger", domain.ItemTypeMain, "9.00", 10)

	drinks, err := f.catalog.ListItems(f.ctx, domain.ItemTypeDrink)
	require.NoError(t, err)
	require.Len(t, drinks, 2)
	assert.Equal(t, "Cola", drinks[0].Name)

	_, err = f.catalog.ListItems(f.ctx, "snack")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreatePredefinedBundle(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "9.00", 10)
	fries := f.item(t, "Fries", domain.ItemTypeSide, "3.00", 10)

	bundle, err := f.catalog.CreatePredefinedBundle(f.ctx, "Menu", "", []uuid.UUID{burger.ID, fries.ID, fries.ID}, dec("13.50"))
	require.NoError(t, err)
	assert.True(t, dec("13.50").Equal(bundle.ComputePrice()))
	assert.Equal(t, []uuid.UUID{burger.ID, fries.ID, fries.ID}, bundle.ItemIDs())

	_, err = f.catalog.CreatePredefinedBundle(f.ctx, "Solo", "", []uuid.UUID{burger.ID}, dec("9"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.catalog.CreatePredefinedBundle(f.ctx, "Ghost", "", []uuid.UUID{burger.ID, uuid.New()}, dec("9"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.catalog.CreatePredefinedBundle(f.ctx, "Free", "", []uuid.UUID{burger.ID, fries.ID}, dec("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateDiscountedBundle_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"main", "drink"}, dec("1.2"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", nil, dec("0.2"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"main", " "}, dec("0.2"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	bundle, err := f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"Main", "drink"}, dec("0.2"))
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemType{domain.ItemTypeMain, domain.ItemTypeDrink}, bundle.RequiredItemTypes)
}

func TestUpdateBundle_KindMismatch(t *testing.T) {
	f := newFixture(t)
	deal, err := f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"main"}, dec("0.1"))
	require.NoError(t, err)

	name := "Renamed"
	_, err = f.catalog.UpdatePredefinedBundle(f.ctx, deal.ID, domain.PredefinedBundlePatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrBundleKindMismatch)

	discount := dec("0.3")
	updated, err := f.catalog.UpdateDiscountedBundle(f.ctx, deal.ID, domain.DiscountedBundlePatch{Name: &name, Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	stored, err := f.catalog.GetBundle(f.ctx, deal.ID)
	require.NoError(t, err)
	require.IsType(t, &domain.DiscountedBundle{}, stored)
	assert.True(t, discount.Equal(stored.(*domain.DiscountedBundle).Discount))
}

func TestUpdatePredefinedBundle_ReplacesComposition(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "9.00", 10)
	fries := f.item(t, "Fries", domain.ItemTypeSide, "3.00", 10)
	cola := f.item(t, "Cola", domain.ItemTypeDrink, "2.00", 10)

	menu, err := f.catalog.CreatePredefinedBundle(f.ctx, "Menu", "", []uuid.UUID{burger.ID, fries.ID}, dec("11"))
	require.NoError(t, err)

	updated, err := f.catalog.UpdatePredefinedBundle(f.ctx, menu.ID, domain.PredefinedBundlePatch{
		ItemIDs: []uuid.UUID{burger.ID, cola.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{burger.ID, cola.ID}, updated.ItemIDs())

	_, err = f.catalog.UpdatePredefinedBundle(f.ctx, menu.ID, domain.PredefinedBundlePatch{ItemIDs: []uuid.UUID{burger.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBundles_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	burger := f.item(t, "Burger", domain.ItemTypeMain, "9.00", 10)

	single, err := f.catalog.CreateOneItemBundle(f.ctx, burger.ID)
	require.NoError(t, err)
	assert.Equal(t, "Burger", single.Name)
	_, err = f.catalog.CreateDiscountedBundle(f.ctx, "Deal", "", []string{"main"}, dec("0.1"))
	require.NoError(t, err)

	bundles, err := f.catalog.ListBundles(f.ctx)
	require.NoError(t, err)
	assert.Len(t, bundles, 2)

	require.NoError(t, f.catalog.DeleteBundle(f.ctx, single.ID))
	_, err = f.catalog.GetBundle(f.ctx, single.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
