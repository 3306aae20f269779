// Package occurrence turns observed candidate counts and marginal
// completeness into occurrence rates.
package occurrence

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// ErrShape reports a completeness array that does not match the histogram.
var ErrShape = errors.New("histogram and completeness shapes differ")

// Histogram counts values into the bins delimited by edges. Bins are
// half-open except the last, which also holds the last edge. NaN and
// out-of-range values are ignored.
func Histogram(values []float64, edges []float64) []float64 {
	if len(edges) < 2 {
		return nil
	}
	counts := make([]float64, len(edges)-1)
	lo, hi := edges[0], edges[len(edges)-1]

	inside := make([]float64, 0, len(values))
	atTop := 0.0
	for _, v := range values {
		switch {
		case v == hi:
			atTop++
		case v >= lo && v < hi:
			inside = append(inside, v)
		}
	}
	if len(inside) > 0 {
		sort.Float64s(inside)
		stat.Histogram(counts, edges, inside, nil)
	}
	counts[len(counts)-1] += atTop
	return counts
}

// Rate divides an observed count by completeness. Zero or NaN completeness
// gives NaN.
func Rate(count, completeness float64) float64 {
	if completeness == 0 || math.IsNaN(completeness) {
		return math.NaN()
	}
	return count / completeness
}

// Rates divides counts element-wise by completeness. Completeness is
// sampled on the bin edges, so it has one more element than counts and its
// final element is dropped.
func Rates(counts, completeness []float64) ([]float64, error) {
	if len(completeness) != len(counts)+1 {
		return nil, fmt.Errorf("%w: %d counts, %d completeness values", ErrShape, len(counts), len(completeness))
	}
	rates := make([]float64, len(counts))
	for i, c := range counts {
		rates[i] = Rate(c, completeness[i])
	}
	return rates, nil
}

// NanSum sums the values that are not NaN.
func NanSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// NanMean averages the values that are not NaN. It is NaN when every value
// is NaN.
func NanMean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Result is the occurrence-rate breakdown along one grid axis.
type Result struct {
	Axis         string    `json:"axis"`
	Edges        []float64 `json:"edges"`
	Counts       []float64 `json:"counts"`
	Completeness []float64 `json:"completeness"`
	Rates        []float64 `json:"rates"`
	// Total is the NaN-excluding sum of Rates.
	Total float64 `json:"total"`
}

// ForAxis histograms values over the edges of the given grid axis and
// divides by the grid's 1-D completeness along that axis.
func ForAxis(g *grid.Grid, axis int, values []float64) (Result, error) {
	var over []int
	for d := grid.AxisPeriod; d <= grid.AxisParam; d++ {
		if d != axis {
			over = append(over, d)
		}
	}
	if len(over) != 2 {
		return Result{}, fmt.Errorf("%w: %d", grid.ErrAxisIndex, axis)
	}
	comp, err := g.Marginalize(over...)
	if err != nil {
		return Result{}, err
	}

	edges := comp.Axes[0].Points
	counts := Histogram(values, edges)
	rates, err := Rates(counts, comp.Values)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Axis:         comp.Axes[0].Name,
		Edges:        append([]float64(nil), edges...),
		Counts:       counts,
		Completeness: comp.Values,
		Rates:        rates,
		Total:        NanSum(rates),
	}, nil
}

// Values extracts the coordinate of each detection along a grid axis:
// candidate period, candidate radius, or the host star's parameter.
func Values(dets []model.Detection, axis int, param model.StellarParam) []float64 {
	out := make([]float64, len(dets))
	for i, d := range dets {
		switch axis {
		case grid.AxisPeriod:
			out[i] = d.Period
		case grid.AxisRadius:
			out[i] = d.Radius
		default:
			out[i] = param.Of(d.Host)
		}
	}
	return out
}
