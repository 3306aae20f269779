package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Projection is a dense row-major array over a subset of the grid axes.
// A projection over no axes holds a single value.
type Projection struct {
	Axes   []Axis    `json:"axes"`
	Shape  []int     `json:"shape"`
	Values []float64 `json:"values"`
}

// NewProjection wraps values laid out row-major over axes.
func NewProjection(axes []Axis, values []float64) (Projection, error) {
	shape := make([]int, len(axes))
	size := 1
	for i, a := range axes {
		shape[i] = a.Len()
		size *= a.Len()
	}
	if size != len(values) {
		return Projection{}, fmt.Errorf("%w: %d values for shape %v", ErrInvalidAxis, len(values), shape)
	}
	return Projection{
		Axes:   append([]Axis(nil), axes...),
		Shape:  shape,
		Values: append([]float64(nil), values...),
	}, nil
}

// Dims returns the number of axes.
func (p Projection) Dims() int { return len(p.Shape) }

// At returns the value at the given multi-index.
func (p Projection) At(idx ...int) float64 {
	return p.Values[p.offset(idx)]
}

func (p Projection) offset(idx []int) int {
	if len(idx) != len(p.Shape) {
		panic(fmt.Sprintf("grid: %d indices for %d axes", len(idx), len(p.Shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= p.Shape[d] {
			panic(fmt.Sprintf("grid: index %d out of range for axis %d of length %d", i, d, p.Shape[d]))
		}
		off = off*p.Shape[d] + i
	}
	return off
}

// Sum returns the sum of all values.
func (p Projection) Sum() float64 { return floats.Sum(p.Values) }

// Scaled returns a copy with every value multiplied by f.
func (p Projection) Scaled(f float64) Projection {
	out := Projection{
		Axes:   append([]Axis(nil), p.Axes...),
		Shape:  append([]int(nil), p.Shape...),
		Values: append([]float64(nil), p.Values...),
	}
	floats.Scale(f, out.Values)
	return out
}

// Marginalize sums over the listed axis positions and keeps the remaining
// axes in their original order. Positions refer to this projection's axes.
// Values are accumulated in row-major order, so the result is
// deterministic.
func (p Projection) Marginalize(over ...int) (Projection, error) {
	drop := make([]bool, len(p.Shape))
	for _, d := range over {
		if d < 0 || d >= len(p.Shape) {
			return Projection{}, fmt.Errorf("%w: %d not in [0,%d)", ErrAxisIndex, d, len(p.Shape))
		}
		if drop[d] {
			return Projection{}, fmt.Errorf("%w: axis %d listed twice", ErrAxisIndex, d)
		}
		drop[d] = true
	}

	var (
		axes  []Axis
		shape []int
	)
	for d, n := range p.Shape {
		if !drop[d] {
			axes = append(axes, p.Axes[d])
			shape = append(shape, n)
		}
	}
	size := 1
	for _, n := range shape {
		size *= n
	}
	out := Projection{Axes: axes, Shape: shape, Values: make([]float64, size)}
	if out.Axes == nil {
		out.Axes = []Axis{}
		out.Shape = []int{}
	}

	idx := make([]int, len(p.Shape))
	for _, v := range p.Values {
		o := 0
		for d, i := range idx {
			if !drop[d] {
				o = o*p.Shape[d] + i
			}
		}
		out.Values[o] += v

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < p.Shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out, nil
}
