package analytics

import (
	"math"
	"strconv"
	"strings"

	"pricetrail/internal/domain/series"
)

// PathPoint is a position in pixel space
type PathPoint struct {
	X float64
	Y float64
}

// CubicSegment is one cubic Bezier segment of the smoothed curve
type CubicSegment struct {
	Control1 PathPoint
	Control2 PathPoint
	To       PathPoint
}

// Path is the chart-ready geometry of a smoothed price curve. Points are
// the scaled data points in ascending time order; the curve passes
// through every one of them exactly.
type Path struct {
	Start    PathPoint
	Segments []CubicSegment
	Points   []PathPoint
}

// IsEmpty reports whether the path has no geometry
func (p Path) IsEmpty() bool {
	return len(p.Points) == 0
}

// SVG renders the path as an SVG path string
func (p Path) SVG() string {
	if p.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("M")
	writeCoord(&b, p.Start.X)
	writeCoord(&b, p.Start.Y)
	for _, seg := range p.Segments {
		b.WriteString(" C")
		writeCoord(&b, seg.Control1.X)
		writeCoord(&b, seg.Control1.Y)
		writeCoord(&b, seg.Control2.X)
		writeCoord(&b, seg.Control2.Y)
		writeCoord(&b, seg.To.X)
		writeCoord(&b, seg.To.Y)
	}
	return b.String()
}

func writeCoord(b *strings.Builder, v float64) {
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(round2(v), 'f', -1, 64))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildPath produces a smoothed curve through the scaled points using
// monotone cubic interpolation: unlike basis smoothing, the curve passes
// through every data point and never overshoots between adjacent samples.
func BuildPath(s series.Series, timeScale, valueScale LinearScale) Path {
	if s.IsEmpty() {
		return Path{}
	}

	points := make([]PathPoint, len(s))
	xs := make([]float64, len(s))
	ys := make([]float64, len(s))
	for i, point := range s {
		x := timeScale.Apply(float64(point.Time.UnixMilli()))
		y := valueScale.Apply(point.Value)
		points[i] = PathPoint{X: x, Y: y}
		xs[i] = x
		ys[i] = y
	}

	path := Path{Start: points[0], Points: points}
	if len(points) == 1 {
		return path
	}

	tangents := monotoneTangents(xs, ys)

	path.Segments = make([]CubicSegment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		dx := (xs[i+1] - xs[i]) / 3
		path.Segments = append(path.Segments, CubicSegment{
			Control1: PathPoint{X: xs[i] + dx, Y: ys[i] + tangents[i]*dx},
			Control2: PathPoint{X: xs[i+1] - dx, Y: ys[i+1] - tangents[i+1]*dx},
			To:       points[i+1],
		})
	}
	return path
}

// monotoneTangents computes Fritsch-Carlson tangents: slopes averaged at
// interior points, zeroed at local extremes, and clamped so each segment
// stays within its endpoints' value range
func monotoneTangents(xs, ys []float64) []float64 {
	n := len(xs)
	tangents := make([]float64, n)

	slopes := make([]float64, n-1)
	for i := range slopes {
		dx := xs[i+1] - xs[i]
		if dx <= 0 {
			// Coincident timestamps; treat the step as flat
			slopes[i] = 0
			continue
		}
		slopes[i] = (ys[i+1] - ys[i]) / dx
	}

	tangents[0] = slopes[0]
	tangents[n-1] = slopes[n-2]
	for i := 1; i < n-1; i++ {
		if slopes[i-1]*slopes[i] <= 0 {
			tangents[i] = 0
		} else {
			tangents[i] = (slopes[i-1] + slopes[i]) / 2
		}
	}

	for i := 0; i < n-1; i++ {
		if slopes[i] == 0 {
			tangents[i] = 0
			tangents[i+1] = 0
			continue
		}
		a := tangents[i] / slopes[i]
		b := tangents[i+1] / slopes[i]
		if h := math.Hypot(a, b); h > 3 {
			scale := 3 / h
			tangents[i] = scale * a * slopes[i]
			tangents[i+1] = scale * b * slopes[i]
		}
	}

	return tangents
}
