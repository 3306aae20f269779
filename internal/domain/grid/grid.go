// Package grid evaluates per-star detection efficiency over a
// period x radius x stellar-parameter grid and reduces it to population
// completeness maps.
package grid

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/okian/completeness/internal/domain/efficiency"
	"github.com/okian/completeness/internal/domain/model"
)

// Axis positions of a Grid.
const (
	AxisPeriod = 0
	AxisRadius = 1
	AxisParam  = 2
)

// Evaluator prepares the radius-independent part of an efficiency
// evaluation. *efficiency.Evaluator implements it.
type Evaluator interface {
	Prepare(star model.Star, period float64) (efficiency.Prepared, error)
}

// Grid accumulates detection efficiency summed over a stellar sample.
//
// Period and radius coordinates are evaluation points. Param coordinates
// are bin edges: a star contributes to every cell of the bin holding its
// parameter value, and stars outside the edges contribute nowhere.
//
// Slab i only writes cells whose period index is i, so distinct slabs may
// be evaluated concurrently.
type Grid struct {
	RunID        string
	Period       Axis
	Radius       Axis
	Param        Axis
	StellarParam model.StellarParam

	stars      []model.Star
	bins       []int
	inRange    int
	outOfRange int
	values     []float64

	evaluations atomic.Int64
	skipped     atomic.Int64
}

// New assigns stars to parameter bins and returns an empty grid.
func New(runID string, period, radius, param Axis, sp model.StellarParam, stars []model.Star) (*Grid, error) {
	for _, a := range []Axis{period, radius} {
		if a.Len() == 0 {
			return nil, fmt.Errorf("%w: %q has no points", ErrInvalidAxis, a.Name)
		}
	}
	if param.Len() < 2 {
		return nil, fmt.Errorf("%w: %q needs at least two edges", ErrInvalidAxis, param.Name)
	}

	g := &Grid{
		RunID:        runID,
		Period:       period,
		Radius:       radius,
		Param:        param,
		StellarParam: sp,
		stars:        stars,
		bins:         make([]int, len(stars)),
		values:       make([]float64, period.Len()*radius.Len()*param.Len()),
	}
	for i, s := range stars {
		g.bins[i] = param.Bin(sp.Of(s))
		if g.bins[i] < 0 {
			g.outOfRange++
			continue
		}
		g.inRange++
	}
	return g, nil
}

// Shape returns the number of points along each axis.
func (g *Grid) Shape() [3]int {
	return [3]int{g.Period.Len(), g.Radius.Len(), g.Param.Len()}
}

// Slabs returns the number of independent units of work.
func (g *Grid) Slabs() int { return g.Period.Len() }

// Stars returns the number of stars inside the parameter edges.
func (g *Grid) Stars() int { return g.inRange }

// OutOfRange returns the number of stars outside the parameter edges.
func (g *Grid) OutOfRange() int { return g.outOfRange }

// Evaluations returns how many (star, cell) evaluations ran.
func (g *Grid) Evaluations() int64 { return g.evaluations.Load() }

// Skipped returns how many (star, cell) evaluations failed or were
// undefined and contributed nothing.
func (g *Grid) Skipped() int64 { return g.skipped.Load() }

// StarsPerBin counts the stars in each parameter bin.
func (g *Grid) StarsPerBin() []int {
	counts := make([]int, g.Param.Bins())
	for _, b := range g.bins {
		if b >= 0 {
			counts[b]++
		}
	}
	return counts
}

// At returns the accumulated value of cell (i, j, k).
func (g *Grid) At(i, j, k int) float64 {
	return g.values[g.index(i, j, k)]
}

func (g *Grid) index(i, j, k int) int {
	return (i*g.Radius.Len()+j)*g.Param.Len() + k
}

// EvaluateSlab adds the contribution of every in-range star at period
// index i. Stars are visited in input order. A failed evaluation is
// counted as skipped and the slab continues; only cancellation of ctx
// stops it early.
func (g *Grid) EvaluateSlab(ctx context.Context, i int, ev Evaluator) error {
	if i < 0 || i >= g.Period.Len() {
		return fmt.Errorf("%w: slab %d not in [0,%d)", ErrAxisIndex, i, g.Period.Len())
	}
	period := g.Period.Points[i]
	nr := int64(g.Radius.Len())

	for s, star := range g.stars {
		k := g.bins[s]
		if k < 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		prep, err := ev.Prepare(star, period)
		if err != nil {
			g.evaluations.Add(nr)
			g.skipped.Add(nr)
			continue
		}
		for j, rp := range g.Radius.Points {
			g.evaluations.Add(1)
			p, err := prep.Probability(rp)
			if err != nil || math.IsNaN(p) {
				g.skipped.Add(1)
				continue
			}
			g.values[g.index(i, j, k)] += p
		}
	}
	return nil
}

// Build evaluates every slab sequentially.
func (g *Grid) Build(ctx context.Context, ev Evaluator) error {
	for i := 0; i < g.Slabs(); i++ {
		if err := g.EvaluateSlab(ctx, i, ev); err != nil {
			return err
		}
	}
	return nil
}

// Projection returns a copy of the full 3-D grid.
func (g *Grid) Projection() Projection {
	return Projection{
		Axes:   []Axis{g.Period, g.Radius, g.Param},
		Shape:  []int{g.Period.Len(), g.Radius.Len(), g.Param.Len()},
		Values: append([]float64(nil), g.values...),
	}
}

// Marginalize sums the grid over the listed axes (AxisPeriod, AxisRadius,
// AxisParam).
func (g *Grid) Marginalize(over ...int) (Projection, error) {
	return g.Projection().Marginalize(over...)
}

// Mean is Marginalize divided by the number of contributing stars: the
// mean pipeline detection efficiency of the sample.
func (g *Grid) Mean(over ...int) (Projection, error) {
	if g.inRange == 0 {
		return Projection{}, ErrNoStars
	}
	p, err := g.Marginalize(over...)
	if err != nil {
		return Projection{}, err
	}
	return p.Scaled(1 / float64(g.inRange)), nil
}

// ParseAxis maps an axis name to its position. "param" and "stellar"
// name the stellar-parameter axis.
func ParseAxis(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "period":
		return AxisPeriod, nil
	case "radius":
		return AxisRadius, nil
	case "param", "stellar":
		return AxisParam, nil
	}
	return -1, fmt.Errorf("%w: unknown axis %q", ErrAxisIndex, name)
}
