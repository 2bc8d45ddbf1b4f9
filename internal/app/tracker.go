package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"pricetrail/internal/config"
	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/inbound"
	"pricetrail/internal/ports/outbound"

	"github.com/alitto/pond"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tracker implements the item/price aggregation use cases on top of the
// generic record store
type Tracker struct {
	records outbound.RecordStore
	logger  zerolog.Logger
}

type TrackerParams struct {
	Records outbound.RecordStore
	Logger  zerolog.Logger
}

// NewTracker creates a new tracker service
func NewTracker(params TrackerParams) *Tracker {
	return &Tracker{
		records: params.Records,
		logger:  params.Logger.With().Str("component", "tracker").Logger(),
	}
}

// LoadDashboard retrieves the user's items and all their price
// observations, grouped by item. The observations for every item come
// back in a single batched query over an any-of-ids predicate; when the
// user has no items the price query is skipped entirely.
func (t *Tracker) LoadDashboard(ctx context.Context, userID string) (*inbound.Dashboard, error) {
	requestID := uuid.New().String()
	logger := t.logger.With().Str("request_id", requestID).Str("user_id", userID).Logger()

	logger.Debug().Msg("Loading dashboard")

	itemRecords, err := t.records.List(ctx, outbound.CollectionItems,
		outbound.Filter{outbound.Equal(fieldItemOwner, userID)},
		outbound.Sort{Field: fieldCreatedAt, Descending: true},
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list items")
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]shared.Item, 0, len(itemRecords))
	itemIDs := make([]string, 0, len(itemRecords))
	for _, record := range itemRecords {
		item := itemFromRecord(record)
		items = append(items, item)
		itemIDs = append(itemIDs, item.ID)
	}

	pricesByItem := make(map[string][]shared.PriceObservation, len(items))
	for _, id := range itemIDs {
		// Items with zero observations map to an empty sequence, not an
		// absent key
		pricesByItem[id] = []shared.PriceObservation{}
	}

	if len(items) > 0 {
		priceRecords, err := t.records.List(ctx, outbound.CollectionPrices,
			outbound.Filter{outbound.AnyOf(fieldPriceItem, itemIDs)},
			outbound.Sort{Field: fieldCreatedAt, Descending: true},
		)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to list price observations")
			return nil, fmt.Errorf("failed to list price observations: %w", err)
		}

		for _, record := range priceRecords {
			obs := observationFromRecord(record)
			pricesByItem[obs.ItemID] = append(pricesByItem[obs.ItemID], obs)
		}
	}

	logger.Info().
		Int("items", len(items)).
		Msg("Dashboard loaded")

	return &inbound.Dashboard{Items: items, PricesByItem: pricesByItem}, nil
}

// CurrentPrice returns the most recent observed price for an item, or
// ok=false when the item has no observations. Sequences in the dashboard
// map are pre-sorted descending by creation time.
func CurrentPrice(pricesByItem map[string][]shared.PriceObservation, itemID string) (float64, bool) {
	observations := pricesByItem[itemID]
	if len(observations) == 0 {
		return 0, false
	}
	return observations[0].Price, true
}

// ObservationCount returns the number of observations recorded for an item
func ObservationCount(pricesByItem map[string][]shared.PriceObservation, itemID string) int {
	return len(pricesByItem[itemID])
}

// SearchItems filters items by case-insensitive substring match on the
// name; an empty query returns the input unchanged
func SearchItems(items []shared.Item, query string) []shared.Item {
	if query == "" {
		return items
	}

	needle := strings.ToLower(query)
	matched := make([]shared.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}

// CreateItem creates a tracked item owned by the user
func (t *Tracker) CreateItem(ctx context.Context, userID, name, description, category string) (*shared.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.ErrItemNameRequired
	}

	record, err := t.records.Create(ctx, outbound.CollectionItems, outbound.Record{
		fieldItemName:        name,
		fieldItemDescription: description,
		fieldItemCategory:    category,
		fieldItemOwner:       userID,
	})
	if err != nil {
		t.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create item")
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	item := itemFromRecord(record)

	t.logger.Info().
		Str("item_id", item.ID).
		Str("name", item.Name).
		Msg("Item created")

	return &item, nil
}

// AddPrice validates and records a price observation. The raw input is
// rejected before any network call when it does not parse as a finite
// number; negative values are accepted but flagged.
func (t *Tracker) AddPrice(ctx context.Context, itemID, rawPrice string) (*shared.PriceObservation, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(rawPrice), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, shared.ErrMalformedNumeric
	}

	if price < 0 {
		t.logger.Warn().
			Str("item_id", itemID).
			Float64("price", price).
			Msg("Recording negative price")
	}

	record, err := t.records.Create(ctx, outbound.CollectionPrices, outbound.Record{
		fieldPriceValue: price,
		fieldPriceItem:  itemID,
	})
	if err != nil {
		t.logger.Error().Err(err).Str("item_id", itemID).Msg("Failed to record price")
		return nil, fmt.Errorf("failed to record price: %w", err)
	}

	obs := observationFromRecord(record)

	t.logger.Info().
		Str("item_id", itemID).
		Float64("price", price).
		Msg("Price recorded")

	return &obs, nil
}

// ItemPrices retrieves one item's observations sorted ascending by
// creation time, optionally bounded to the trailing number of days
func (t *Tracker) ItemPrices(ctx context.Context, itemID string, withinDays int) ([]shared.PriceObservation, error) {
	filter := outbound.Filter{outbound.Equal(fieldPriceItem, itemID)}
	if withinDays > 0 {
		since := time.Now().AddDate(0, 0, -withinDays)
		filter = append(filter, outbound.AtLeast(fieldCreatedAt, since))
	}

	records, err := t.records.List(ctx, outbound.CollectionPrices, filter,
		outbound.Sort{Field: fieldCreatedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to list price observations: %w", err)
	}

	observations := make([]shared.PriceObservation, 0, len(records))
	for _, record := range records {
		observations = append(observations, observationFromRecord(record))
	}
	return observations, nil
}

// DeleteItemCascade removes an item together with all its observations.
// Observation deletion is best-effort over a bounded worker pool: one bad
// record cannot block item removal, but the first error encountered is
// reported alongside the count actually removed.
func (t *Tracker) DeleteItemCascade(ctx context.Context, itemID string) (inbound.CascadeResult, error) {
	logger := t.logger.With().Str("item_id", itemID).Logger()
	logger.Info().Msg("Cascade-deleting item")

	records, err := t.records.List(ctx, outbound.CollectionPrices,
		outbound.Filter{outbound.Equal(fieldPriceItem, itemID)},
		outbound.Sort{Field: fieldCreatedAt},
	)
	if err != nil {
		return inbound.CascadeResult{}, fmt.Errorf("failed to list observations for cascade: %w", err)
	}

	result := inbound.CascadeResult{ObservationsTotal: len(records)}

	var mu sync.Mutex
	var firstErr error

	pool := pond.New(config.CascadeMaxWorkers, config.CascadeMaxCapacity, pond.Context(ctx))
	for _, record := range records {
		obsID := record.Str("id")
		pool.Submit(func() {
			err := t.records.Delete(ctx, outbound.CollectionPrices, obsID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.ObservationsRemoved++
			default:
				logger.Error().Err(err).Str("observation_id", obsID).Msg("Failed to delete observation, continuing")
				if firstErr == nil {
					firstErr = err
				}
			}
		})
	}
	pool.StopAndWait()

	// The item is removed even when some observations could not be; a
	// missing item counts as already deleted
	if err := t.records.Delete(ctx, outbound.CollectionItems, itemID); err != nil {
		if !errors.Is(err, shared.ErrRecordNotFound) {
			logger.Error().Err(err).Msg("Failed to delete item")
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	}

	logger.Info().
		Int("observations_removed", result.ObservationsRemoved).
		Int("observations_total", result.ObservationsTotal).
		Msg("Cascade delete finished")

	if firstErr != nil {
		return result, fmt.Errorf("cascade delete incomplete (%d/%d observations removed): %w",
			result.ObservationsRemoved, result.ObservationsTotal, firstErr)
	}
	return result, nil
}
