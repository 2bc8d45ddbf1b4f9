package app

import (
	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/outbound"
)

// Remote field names of the two record kinds
const (
	fieldItemName        = "name"
	fieldItemDescription = "description"
	fieldItemCategory    = "category"
	fieldItemOwner       = "User"
	fieldPriceValue      = "price"
	fieldPriceItem       = "item"
	fieldCreatedAt       = "created_at"
	fieldUpdatedAt       = "updated_at"
)

func itemFromRecord(record outbound.Record) shared.Item {
	return shared.Item{
		ID:          record.Str("id"),
		Name:        record.Str(fieldItemName),
		Description: record.Str(fieldItemDescription),
		Category:    record.Str(fieldItemCategory),
		OwnerID:     record.Str(fieldItemOwner),
		CreatedAt:   record.Time(fieldCreatedAt),
		UpdatedAt:   record.Time(fieldUpdatedAt),
	}
}

func observationFromRecord(record outbound.Record) shared.PriceObservation {
	return shared.PriceObservation{
		ID:        record.Str("id"),
		Price:     record.Float(fieldPriceValue),
		ItemID:    record.Str(fieldPriceItem),
		CreatedAt: record.Time(fieldCreatedAt),
	}
}
