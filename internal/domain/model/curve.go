package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Curve is an ordered set of (duration, value) nodes evaluated by linear
// interpolation. Queries outside the duration range return the value of the
// nearest end node.
type Curve struct {
	durations []float64
	values    []float64
	fit       *interp.PiecewiseLinear
}

// NewCurve validates and fits a curve. Durations must be finite and strictly
// increasing; values may be NaN, which then propagates to queries touching
// that node.
func NewCurve(durations, values []float64) (Curve, error) {
	if len(durations) == 0 {
		return Curve{}, fmt.Errorf("%w: no nodes", ErrInvalidCurve)
	}
	if len(durations) != len(values) {
		return Curve{}, fmt.Errorf("%w: %d durations but %d values", ErrInvalidCurve, len(durations), len(values))
	}
	for i, d := range durations {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return Curve{}, fmt.Errorf("%w: duration %d is not finite", ErrInvalidCurve, i)
		}
		if i > 0 && d <= durations[i-1] {
			return Curve{}, fmt.Errorf("%w: durations not strictly increasing at %d", ErrInvalidCurve, i)
		}
	}

	c := Curve{
		durations: append([]float64(nil), durations...),
		values:    append([]float64(nil), values...),
	}
	if len(durations) > 1 {
		c.fit = &interp.PiecewiseLinear{}
		if err := c.fit.Fit(c.durations, c.values); err != nil {
			return Curve{}, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
		}
	}
	return c, nil
}

// FlatCurve returns a curve holding value at every duration.
func FlatCurve(durations []float64, value float64) (Curve, error) {
	values := make([]float64, len(durations))
	for i := range values {
		values[i] = value
	}
	return NewCurve(durations, values)
}

// At returns the interpolated value at duration d. A NaN query returns NaN.
func (c Curve) At(d float64) float64 {
	switch {
	case len(c.values) == 0, math.IsNaN(d):
		return math.NaN()
	case c.fit == nil:
		return c.values[0]
	}
	return c.fit.Predict(d)
}

// Len returns the number of nodes.
func (c Curve) Len() int { return len(c.durations) }

// Durations returns a copy of the node durations.
func (c Curve) Durations() []float64 { return append([]float64(nil), c.durations...) }

// Values returns a copy of the node values.
func (c Curve) Values() []float64 { return append([]float64(nil), c.values...) }
