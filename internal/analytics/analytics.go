// Package analytics computes time-series statistics and chart geometry
// from irregularly-spaced price samples. Everything here is pure: a
// rendering layer drives these functions from layout and pointer events.
package analytics

import (
	"time"

	"pricetrail/internal/domain/series"
)

// Stats summarizes a price series
type Stats struct {
	Latest    float64 `json:"latest"`
	Average   float64 `json:"average"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	ChangePct float64 `json:"change_pct"`
}

// Summarize computes summary statistics over a time-ordered series. An
// empty series yields the zero sentinel, never an error. ChangePct is the
// percent change from the first to the last sample; it is 0 for a
// single-sample series and defined as 0 when the first sample is zero, so
// an infinite value never reaches the caller.
func Summarize(s series.Series) Stats {
	if s.IsEmpty() {
		return Stats{}
	}

	stats := Stats{
		Latest: s.Last().Value,
		Min:    s[0].Value,
		Max:    s[0].Value,
	}

	var sum float64
	for _, point := range s {
		sum += point.Value
		if point.Value < stats.Min {
			stats.Min = point.Value
		}
		if point.Value > stats.Max {
			stats.Max = point.Value
		}
	}
	stats.Average = sum / float64(len(s))

	if len(s) > 1 {
		first := s.First().Value
		if first != 0 {
			stats.ChangePct = (s.Last().Value - first) / first * 100
		}
	}

	return stats
}

// FilterByRange returns the samples within the inclusive bounds,
// preserving order. A nil bound leaves that side unbounded.
func FilterByRange(s series.Series, start, end *time.Time) series.Series {
	filtered := make(series.Series, 0, len(s))
	for _, point := range s {
		if start != nil && point.Time.Before(*start) {
			continue
		}
		if end != nil && point.Time.After(*end) {
			continue
		}
		filtered = append(filtered, point)
	}
	return filtered
}

// RangeSince returns the inclusive lower bound for a trailing window of
// days, as used by the 7/30/90-day views; days <= 0 means unbounded
func RangeSince(days int) *time.Time {
	if days <= 0 {
		return nil
	}
	start := time.Now().AddDate(0, 0, -days)
	return &start
}

// Extremes holds the first-occurring maximum and minimum samples
type Extremes struct {
	High series.Point
	Low  series.Point
}

// Extrema returns the first-occurring maximum and minimum by value; on
// ties the earliest timestamp wins
func Extrema(s series.Series) Extremes {
	if s.IsEmpty() {
		return Extremes{}
	}

	ext := Extremes{High: s[0], Low: s[0]}
	for _, point := range s[1:] {
		if point.Value > ext.High.Value {
			ext.High = point
		}
		if point.Value < ext.Low.Value {
			ext.Low = point
		}
	}
	return ext
}

// NearestPoint inverts the pointer position through the time scale and
// returns the sample closest in time, breaking ties toward the earlier
// point. Positions outside the series' span clamp to the nearest
// endpoint. ok is false only for an empty series.
func NearestPoint(s series.Series, queryX float64, timeScale LinearScale) (point series.Point, ok bool) {
	if s.IsEmpty() {
		return series.Point{}, false
	}

	queryMillis := timeScale.Invert(queryX)

	nearest := s[0]
	nearestDist := distanceMillis(s[0].Time, queryMillis)
	for _, candidate := range s[1:] {
		if d := distanceMillis(candidate.Time, queryMillis); d < nearestDist {
			nearest = candidate
			nearestDist = d
		}
	}
	return nearest, true
}

func distanceMillis(t time.Time, millis float64) float64 {
	d := float64(t.UnixMilli()) - millis
	if d < 0 {
		return -d
	}
	return d
}
