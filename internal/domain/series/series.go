package series

import (
	"sort"
	"time"

	"pricetrail/internal/domain/shared"
)

// Point is a single (timestamp, price) sample
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is a time-ordered sequence of price samples for one item,
// sorted ascending by timestamp. It is derived and ephemeral: built from
// an item's observations on demand, never persisted.
type Series []Point

// FromObservations builds a series from an item's observations, sorted
// ascending by creation time regardless of input order.
func FromObservations(observations []shared.PriceObservation) Series {
	s := make(Series, 0, len(observations))
	for _, obs := range observations {
		s = append(s, Point{Time: obs.CreatedAt, Value: obs.Price})
	}
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Time.Before(s[j].Time)
	})
	return s
}

// IsEmpty returns true if the series has no samples
func (s Series) IsEmpty() bool {
	return len(s) == 0
}

// First returns the earliest sample
func (s Series) First() Point {
	return s[0]
}

// Last returns the most recent sample
func (s Series) Last() Point {
	return s[len(s)-1]
}

// Span returns the time covered by the series
func (s Series) Span() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s.Last().Time.Sub(s.First().Time)
}
