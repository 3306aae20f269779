package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Spacing selects how NewAxis distributes its points.
type Spacing int

// Supported spacings.
const (
	Linear Spacing = iota
	Log
)

// String implements fmt.Stringer.
func (s Spacing) String() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

// Axis is an ordered set of coordinates along one grid dimension.
type Axis struct {
	Name   string    `json:"name"`
	Points []float64 `json:"points"`
}

// NewAxis returns n points from lo to hi inclusive. Log spacing is
// exp(linspace(log lo, log hi, n)) and needs lo > 0.
func NewAxis(name string, lo, hi float64, n int, s Spacing) (Axis, error) {
	switch {
	case n < 1:
		return Axis{}, fmt.Errorf("%w: %s: %d points", ErrInvalidAxis, name, n)
	case math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0):
		return Axis{}, fmt.Errorf("%w: %s: range [%v, %v]", ErrInvalidAxis, name, lo, hi)
	case n > 1 && !(hi > lo):
		return Axis{}, fmt.Errorf("%w: %s: empty range [%v, %v]", ErrInvalidAxis, name, lo, hi)
	case s == Log && !(lo > 0):
		return Axis{}, fmt.Errorf("%w: %s: log spacing needs lo > 0, got %v", ErrInvalidAxis, name, lo)
	}

	pts := make([]float64, n)
	if n == 1 {
		pts[0] = lo
		return Axis{Name: name, Points: pts}, nil
	}
	if s == Log {
		floats.LogSpan(pts, lo, hi)
	} else {
		floats.Span(pts, lo, hi)
	}
	return Axis{Name: name, Points: pts}, nil
}

// AxisFromPoints builds an axis from finite, strictly increasing points.
func AxisFromPoints(name string, points []float64) (Axis, error) {
	if len(points) == 0 {
		return Axis{}, fmt.Errorf("%w: %s: no points", ErrInvalidAxis, name)
	}
	for i, p := range points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Axis{}, fmt.Errorf("%w: %s: point %d is %v", ErrInvalidAxis, name, i, p)
		}
		if i > 0 && !(p > points[i-1]) {
			return Axis{}, fmt.Errorf("%w: %s: points not strictly increasing at %d", ErrInvalidAxis, name, i)
		}
	}
	return Axis{Name: name, Points: append([]float64(nil), points...)}, nil
}

// Len returns the number of points.
func (a Axis) Len() int { return len(a.Points) }

// Bins returns the number of histogram bins when the points are edges.
func (a Axis) Bins() int {
	if len(a.Points) < 2 {
		return 0
	}
	return len(a.Points) - 1
}

// Bin treats the points as bin edges and returns k such that
// Points[k] <= v < Points[k+1]. The last bin also holds the last edge.
// Values outside the edges, and NaN, return -1.
func (a Axis) Bin(v float64) int {
	n := len(a.Points)
	if n < 2 || !(v >= a.Points[0] && v <= a.Points[n-1]) {
		return -1
	}
	if v == a.Points[n-1] {
		return n - 2
	}
	return sort.Search(n, func(i int) bool { return a.Points[i] > v }) - 1
}
