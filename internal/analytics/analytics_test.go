package analytics

import (
	"testing"
	"time"

	"pricetrail/internal/domain/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(unixSec int64, value float64) series.Point {
	return series.Point{Time: time.Unix(unixSec, 0), Value: value}
}

func TestSummarize(t *testing.T) {
	s := series.Series{at(1, 10), at(2, 20), at(3, 15)}

	stats := Summarize(s)

	assert.Equal(t, 15.0, stats.Latest)
	assert.Equal(t, 15.0, stats.Average)
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 20.0, stats.Max)
	assert.Equal(t, 50.0, stats.ChangePct)
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(series.Series{})

	assert.Equal(t, Stats{}, stats)
}

func TestSummarize_SingleSample(t *testing.T) {
	stats := Summarize(series.Series{at(1, 42)})

	assert.Equal(t, 42.0, stats.Latest)
	assert.Equal(t, 42.0, stats.Average)
	assert.Equal(t, 0.0, stats.ChangePct, "single sample has no change")
}

func TestSummarize_ZeroFirstSample(t *testing.T) {
	stats := Summarize(series.Series{at(1, 0), at(2, 50)})

	// A zero first sample must not propagate an infinite percent change
	assert.Equal(t, 0.0, stats.ChangePct)
	assert.Equal(t, 50.0, stats.Latest)
}

func TestSummarize_NegativePrices(t *testing.T) {
	stats := Summarize(series.Series{at(1, -10), at(2, -5)})

	assert.Equal(t, -10.0, stats.Min)
	assert.Equal(t, -5.0, stats.Max)
	assert.Equal(t, -50.0, stats.ChangePct)
}

func TestFilterByRange_Unbounded(t *testing.T) {
	s := series.Series{at(3, 1), at(1, 2), at(2, 3)}

	filtered := FilterByRange(s, nil, nil)

	assert.Equal(t, s, filtered, "unbounded filter must return the series unchanged")
}

func TestFilterByRange_InclusiveBounds(t *testing.T) {
	s := series.Series{at(1, 1), at(2, 2), at(3, 3), at(4, 4)}
	start := time.Unix(2, 0)
	end := time.Unix(3, 0)

	filtered := FilterByRange(s, &start, &end)

	require.Len(t, filtered, 2)
	assert.Equal(t, 2.0, filtered[0].Value)
	assert.Equal(t, 3.0, filtered[1].Value)
}

func TestFilterByRange_OpenEnded(t *testing.T) {
	s := series.Series{at(1, 1), at(2, 2), at(3, 3)}
	start := time.Unix(2, 0)

	filtered := FilterByRange(s, &start, nil)

	require.Len(t, filtered, 2)
	assert.Equal(t, 2.0, filtered[0].Value)
}

func TestRangeSince(t *testing.T) {
	assert.Nil(t, RangeSince(0))
	assert.Nil(t, RangeSince(-1))

	start := RangeSince(7)
	require.NotNil(t, start)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), *start, time.Minute)
}

func TestExtrema(t *testing.T) {
	s := series.Series{at(1, 5), at(2, 9), at(3, 2), at(4, 9), at(5, 2)}

	ext := Extrema(s)

	// Ties break toward the earliest occurrence
	assert.Equal(t, int64(2), ext.High.Time.Unix())
	assert.Equal(t, 9.0, ext.High.Value)
	assert.Equal(t, int64(3), ext.Low.Time.Unix())
	assert.Equal(t, 2.0, ext.Low.Value)
}

func TestNearestPoint(t *testing.T) {
	s := series.Series{at(100, 1), at(200, 2), at(300, 3)}
	scales := BuildScales(s, 100, 50, 0.1)

	point, ok := NearestPoint(s, scales.Time.Apply(float64(time.Unix(190, 0).UnixMilli())), scales.Time)

	require.True(t, ok)
	assert.Equal(t, int64(200), point.Time.Unix())
}

func TestNearestPoint_ClampsToEndpoints(t *testing.T) {
	s := series.Series{at(100, 1), at(200, 2), at(300, 3)}
	scales := BuildScales(s, 100, 50, 0.1)

	before, ok := NearestPoint(s, -500, scales.Time)
	require.True(t, ok)
	assert.Equal(t, int64(100), before.Time.Unix())

	after, ok := NearestPoint(s, 5000, scales.Time)
	require.True(t, ok)
	assert.Equal(t, int64(300), after.Time.Unix())
}

func TestNearestPoint_TieBreaksEarlier(t *testing.T) {
	s := series.Series{at(100, 1), at(200, 2)}
	scales := BuildScales(s, 100, 50, 0.1)

	// Exactly halfway between the two samples
	point, ok := NearestPoint(s, scales.Time.Apply(float64(time.Unix(150, 0).UnixMilli())), scales.Time)

	require.True(t, ok)
	assert.Equal(t, int64(100), point.Time.Unix())
}

func TestNearestPoint_Empty(t *testing.T) {
	_, ok := NearestPoint(series.Series{}, 10, LinearScale{})

	assert.False(t, ok)
}
