package analytics

import (
	"pricetrail/internal/domain/series"
)

// DefaultPaddingFraction is the vertical headroom added above and below
// the value domain
const DefaultPaddingFraction = 0.1

// LinearScale maps a domain interval linearly onto a pixel range. The
// range may be inverted (RangeMin > RangeMax) for the value axis, since
// the pixel origin is the top of the chart.
type LinearScale struct {
	DomainMin float64
	DomainMax float64
	RangeMin  float64
	RangeMax  float64
}

// Apply maps a domain value to its pixel position. A degenerate domain
// (min == max) maps everything to the middle of the range.
func (s LinearScale) Apply(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return (s.RangeMin + s.RangeMax) / 2
	}
	return s.RangeMin + (v-s.DomainMin)/span*(s.RangeMax-s.RangeMin)
}

// Invert maps a pixel position back to a domain value
func (s LinearScale) Invert(p float64) float64 {
	span := s.RangeMax - s.RangeMin
	if span == 0 {
		return s.DomainMin
	}
	return s.DomainMin + (p-s.RangeMin)/span*(s.DomainMax-s.DomainMin)
}

// ChartScales holds the axis mappings for one chart
type ChartScales struct {
	// Time maps unix milliseconds onto [0, width]
	Time LinearScale
	// Value maps the padded value domain onto [height, 0] (inverted)
	Value LinearScale
}

// BuildScales derives the axis mappings for a series rendered into a
// pixelWidth by pixelHeight area. The value domain is padded by
// (max-min) * paddingFraction on both sides, or by 1.0 for a flat series
// so it still renders with visible vertical room; paddingFraction <= 0
// uses the default.
func BuildScales(s series.Series, pixelWidth, pixelHeight, paddingFraction float64) ChartScales {
	if paddingFraction <= 0 {
		paddingFraction = DefaultPaddingFraction
	}

	var timeMin, timeMax, valueMin, valueMax float64
	if !s.IsEmpty() {
		timeMin = float64(s.First().Time.UnixMilli())
		timeMax = float64(s.Last().Time.UnixMilli())

		valueMin = s[0].Value
		valueMax = s[0].Value
		for _, point := range s {
			if point.Value < valueMin {
				valueMin = point.Value
			}
			if point.Value > valueMax {
				valueMax = point.Value
			}
		}
	}

	pad := (valueMax - valueMin) * paddingFraction
	if pad == 0 {
		pad = 1.0
	}

	return ChartScales{
		Time: LinearScale{
			DomainMin: timeMin,
			DomainMax: timeMax,
			RangeMin:  0,
			RangeMax:  pixelWidth,
		},
		Value: LinearScale{
			DomainMin: valueMin - pad,
			DomainMax: valueMax + pad,
			RangeMin:  pixelHeight,
			RangeMax:  0,
		},
	}
}
