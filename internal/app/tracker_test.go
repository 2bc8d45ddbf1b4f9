package app

import (
	"context"
	"errors"
	"testing"

	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/outbound"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(store *fakeRecordStore) *Tracker {
	return NewTracker(TrackerParams{Records: store, Logger: zerolog.Nop()})
}

func TestLoadDashboard_GroupsObservationsByItem(t *testing.T) {
	store := newFakeRecordStore()
	itemA := store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Coffee", fieldItemOwner: "user-1"})
	itemB := store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Milk", fieldItemOwner: "user-1"})
	itemC := store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Bread", fieldItemOwner: "user-1"})
	obs1 := store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 1.0, fieldPriceItem: itemA.Str("id")})
	store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 2.0, fieldPriceItem: itemB.Str("id")})
	obs3 := store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 3.0, fieldPriceItem: itemA.Str("id")})

	dashboard, err := newTestTracker(store).LoadDashboard(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, dashboard.Items, 3)
	// Items come back newest first
	assert.Equal(t, "Bread", dashboard.Items[0].Name)
	assert.Equal(t, "Coffee", dashboard.Items[2].Name)

	pricesA := dashboard.PricesByItem[itemA.Str("id")]
	require.Len(t, pricesA, 2)
	// Observations within an item are newest first too
	assert.Equal(t, obs3.Str("id"), pricesA[0].ID)
	assert.Equal(t, obs1.Str("id"), pricesA[1].ID)

	require.Len(t, dashboard.PricesByItem[itemB.Str("id")], 1)

	pricesC, present := dashboard.PricesByItem[itemC.Str("id")]
	assert.True(t, present, "an item with no observations still gets a key")
	assert.Empty(t, pricesC)
}

func TestLoadDashboard_OnlyOwnItems(t *testing.T) {
	store := newFakeRecordStore()
	store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Mine", fieldItemOwner: "user-1"})
	store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Theirs", fieldItemOwner: "user-2"})

	dashboard, err := newTestTracker(store).LoadDashboard(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, dashboard.Items, 1)
	assert.Equal(t, "Mine", dashboard.Items[0].Name)
}

func TestLoadDashboard_NoItemsSkipsPriceQuery(t *testing.T) {
	store := newFakeRecordStore()

	dashboard, err := newTestTracker(store).LoadDashboard(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, dashboard.Items)
	assert.Empty(t, dashboard.PricesByItem)
	assert.Zero(t, store.calls(outbound.CollectionPrices), "no items means no batched price query")
}

func TestCurrentPrice(t *testing.T) {
	pricesByItem := map[string][]shared.PriceObservation{
		"a": {{Price: 7.5}, {Price: 6}},
		"b": {},
	}

	price, ok := CurrentPrice(pricesByItem, "a")
	require.True(t, ok)
	assert.Equal(t, 7.5, price)

	_, ok = CurrentPrice(pricesByItem, "b")
	assert.False(t, ok)

	_, ok = CurrentPrice(pricesByItem, "missing")
	assert.False(t, ok)

	assert.Equal(t, 2, ObservationCount(pricesByItem, "a"))
	assert.Zero(t, ObservationCount(pricesByItem, "missing"))
}

func TestSearchItems(t *testing.T) {
	items := []shared.Item{
		{Name: "Espresso Beans"},
		{Name: "Oat Milk"},
		{Name: "Ground Espresso"},
	}

	assert.Equal(t, items, SearchItems(items, ""))

	matched := SearchItems(items, "ESPRESSO")
	require.Len(t, matched, 2)
	assert.Equal(t, "Espresso Beans", matched[0].Name)

	assert.Empty(t, SearchItems(items, "tea"))
}

func TestCreateItem(t *testing.T) {
	store := newFakeRecordStore()
	tracker := newTestTracker(store)

	item, err := tracker.CreateItem(context.Background(), "user-1", "Coffee", "whole beans", "grocery")

	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Coffee", item.Name)
	assert.Equal(t, "user-1", item.OwnerID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, 1, store.count(outbound.CollectionItems))
}

func TestCreateItem_BlankNameRejected(t *testing.T) {
	store := newFakeRecordStore()

	_, err := newTestTracker(store).CreateItem(context.Background(), "user-1", "   ", "", "")

	assert.ErrorIs(t, err, shared.ErrItemNameRequired)
	assert.Zero(t, store.count(outbound.CollectionItems))
}

func TestAddPrice(t *testing.T) {
	store := newFakeRecordStore()
	tracker := newTestTracker(store)

	obs, err := tracker.AddPrice(context.Background(), "item-1", " 12.50 ")

	require.NoError(t, err)
	assert.Equal(t, 12.5, obs.Price)
	assert.Equal(t, "item-1", obs.ItemID)
}

func TestAddPrice_MalformedRejectedBeforeCreate(t *testing.T) {
	store := newFakeRecordStore()
	tracker := newTestTracker(store)

	for _, raw := range []string{"", "abc", "12,50", "NaN", "+Inf"} {
		_, err := tracker.AddPrice(context.Background(), "item-1", raw)
		assert.ErrorIs(t, err, shared.ErrMalformedNumeric, "input %q", raw)
	}

	assert.Zero(t, store.count(outbound.CollectionPrices), "no record may be created for rejected input")
}

func TestAddPrice_NegativeAccepted(t *testing.T) {
	store := newFakeRecordStore()

	obs, err := newTestTracker(store).AddPrice(context.Background(), "item-1", "-3")

	require.NoError(t, err)
	assert.Equal(t, -3.0, obs.Price)
}

func TestItemPrices_AscendingAndScoped(t *testing.T) {
	store := newFakeRecordStore()
	first := store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 1.0, fieldPriceItem: "item-1"})
	store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 9.0, fieldPriceItem: "item-2"})
	last := store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 2.0, fieldPriceItem: "item-1"})

	observations, err := newTestTracker(store).ItemPrices(context.Background(), "item-1", 0)

	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.Equal(t, first.Str("id"), observations[0].ID)
	assert.Equal(t, last.Str("id"), observations[1].ID)
}

func TestItemPrices_TrailingDaysBound(t *testing.T) {
	store := newFakeRecordStore()
	// The fake stamps records relative to a fixed 2025 clock, far older
	// than any trailing-days window anchored at time.Now()
	store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: 1.0, fieldPriceItem: "item-1"})

	all, err := newTestTracker(store).ItemPrices(context.Background(), "item-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	recent, err := newTestTracker(store).ItemPrices(context.Background(), "item-1", 7)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestDeleteItemCascade(t *testing.T) {
	store := newFakeRecordStore()
	item := store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Coffee", fieldItemOwner: "user-1"})
	for i := 0; i < 5; i++ {
		store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: float64(i), fieldPriceItem: item.Str("id")})
	}

	result, err := newTestTracker(store).DeleteItemCascade(context.Background(), item.Str("id"))

	require.NoError(t, err)
	assert.Equal(t, 5, result.ObservationsRemoved)
	assert.Equal(t, 5, result.ObservationsTotal)
	assert.Zero(t, store.count(outbound.CollectionItems))
	assert.Zero(t, store.count(outbound.CollectionPrices))
}

func TestDeleteItemCascade_PartialFailureStillRemovesItem(t *testing.T) {
	store := newFakeRecordStore()
	item := store.add(outbound.CollectionItems, outbound.Record{fieldItemName: "Coffee", fieldItemOwner: "user-1"})
	var stuck outbound.Record
	for i := 0; i < 3; i++ {
		stuck = store.add(outbound.CollectionPrices, outbound.Record{fieldPriceValue: float64(i), fieldPriceItem: item.Str("id")})
	}
	stuckErr := errors.New("remote refused")
	store.deleteErrs[stuck.Str("id")] = stuckErr

	result, err := newTestTracker(store).DeleteItemCascade(context.Background(), item.Str("id"))

	require.Error(t, err)
	assert.ErrorIs(t, err, stuckErr)
	assert.Equal(t, 2, result.ObservationsRemoved)
	assert.Equal(t, 3, result.ObservationsTotal)
	assert.Zero(t, store.count(outbound.CollectionItems), "the item is removed even when an observation is not")
}

func TestDeleteItemCascade_MissingItemIsNotAnError(t *testing.T) {
	store := newFakeRecordStore()

	result, err := newTestTracker(store).DeleteItemCascade(context.Background(), "gone")

	require.NoError(t, err)
	assert.Zero(t, result.ObservationsTotal)
}
