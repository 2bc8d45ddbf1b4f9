package outbound

import (
	"context"
	"time"
)

// Collection identifies a remote record kind
type Collection string

const (
	CollectionUsers  Collection = "users"
	CollectionItems  Collection = "items"
	CollectionPrices Collection = "prices"
)

// Record is a decoded remote record: the raw field map as returned by the
// record service.
type Record map[string]any

// FilterOp is a predicate operator within a filter conjunction
type FilterOp int

const (
	// OpEqual matches records whose field equals the value
	OpEqual FilterOp = iota
	// OpAnyOf matches records whose field equals any of the given ids.
	// Used to batch-fetch related records in one round trip.
	OpAnyOf
	// OpAtLeast matches records whose timestamp field is >= the bound
	OpAtLeast
	// OpAtMost matches records whose timestamp field is <= the bound
	OpAtMost
)

// FilterClause is a single predicate over a record field
type FilterClause struct {
	Field  string
	Op     FilterOp
	Value  any
	Values []string
}

// Filter is a conjunction of predicates; an empty filter matches all records
type Filter []FilterClause

// Equal builds an equality predicate
func Equal(field string, value any) FilterClause {
	return FilterClause{Field: field, Op: OpEqual, Value: value}
}

// AnyOf builds an "any of N ids" predicate over a relation field
func AnyOf(field string, ids []string) FilterClause {
	return FilterClause{Field: field, Op: OpAnyOf, Values: ids}
}

// AtLeast builds an inclusive lower timestamp bound
func AtLeast(field string, bound time.Time) FilterClause {
	return FilterClause{Field: field, Op: OpAtLeast, Value: bound}
}

// AtMost builds an inclusive upper timestamp bound
func AtMost(field string, bound time.Time) FilterClause {
	return FilterClause{Field: field, Op: OpAtMost, Value: bound}
}

// Sort names a record field and direction for list queries
type Sort struct {
	Field      string
	Descending bool
}

// RecordStore defines the generic contract against the remote record
// service. Implementations never retry automatically; every failure is
// returned to the caller as a typed error.
type RecordStore interface {
	// List retrieves all records of a kind matching the filter, sorted
	List(ctx context.Context, collection Collection, filter Filter, sort Sort) ([]Record, error)

	// Create creates a new record and returns it as stored remotely
	Create(ctx context.Context, collection Collection, fields Record) (Record, error)

	// Update patches an existing record
	Update(ctx context.Context, collection Collection, id string, fields Record) (Record, error)

	// Delete removes a record by id
	Delete(ctx context.Context, collection Collection, id string) error
}
