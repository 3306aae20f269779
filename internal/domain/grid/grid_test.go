package grid_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/okian/completeness/internal/domain/efficiency"
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var durations = []float64{1.5, 2.0, 2.5, 3.0, 3.5, 4.5, 5.0, 6.0, 7.5, 9.0, 10.5, 12.0, 12.5, 15.0}

func sampleStar(t *testing.T, id int64, teff, cdpp float64) model.Star {
	t.Helper()
	values := make([]float64, len(durations))
	for i, d := range durations {
		values[i] = cdpp * math.Sqrt(7.5/d)
	}
	noise, err := model.NewCurve(durations, values)
	if err != nil {
		t.Fatal(err)
	}
	threshold, err := model.FlatCurve(durations, 7.1)
	if err != nil {
		t.Fatal(err)
	}
	return model.Star{
		KepID:        id,
		Teff:         teff,
		Radius:       0.9,
		Mass:         0.95,
		Dataspan:     1400,
		Dutycycle:    0.88,
		CDPP:         noise,
		MESThreshold: threshold,
	}
}

func sampleGrid(t *testing.T, stars []model.Star) *grid.Grid {
	t.Helper()
	period, err := grid.NewAxis("period", 50, 300, 6, grid.Linear)
	if err != nil {
		t.Fatal(err)
	}
	radius, err := grid.NewAxis("radius", 0.75, 2.5, 5, grid.Log)
	if err != nil {
		t.Fatal(err)
	}
	teff, err := grid.NewAxis("teff", 4200, 6100, 4, grid.Linear)
	if err != nil {
		t.Fatal(err)
	}
	g, err := grid.New("run-1", period, radius, teff, model.ParamTeff, stars)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func sampleStars(t *testing.T) []model.Star {
	return []model.Star{
		sampleStar(t, 1, 4300, 40),
		sampleStar(t, 2, 5100, 60),
		sampleStar(t, 3, 5750, 35),
		sampleStar(t, 4, 6100, 80),
		sampleStar(t, 5, 5900, 25),
		sampleStar(t, 6, 3900, 40),
	}
}

func TestAxis(t *testing.T) {
	Convey("Given a linear axis", t, func() {
		a, err := grid.NewAxis("period", 50, 300, 6, grid.Linear)
		So(err, ShouldBeNil)

		Convey("Then the points are evenly spaced and include both ends", func() {
			So(a.Points, ShouldResemble, []float64{50, 100, 150, 200, 250, 300})
			So(a.Bins(), ShouldEqual, 5)
		})
	})

	Convey("Given a log axis", t, func() {
		a, err := grid.NewAxis("radius", 1, 100, 3, grid.Log)
		So(err, ShouldBeNil)

		Convey("Then consecutive ratios are constant", func() {
			So(a.Points[0], ShouldAlmostEqual, 1, 1e-12)
			So(a.Points[1], ShouldAlmostEqual, 10, 1e-9)
			So(a.Points[2], ShouldAlmostEqual, 100, 1e-9)
		})
	})

	Convey("Given invalid ranges", t, func() {
		_, err := grid.NewAxis("x", 1, 1, 3, grid.Linear)
		So(errors.Is(err, grid.ErrInvalidAxis), ShouldBeTrue)
		_, err = grid.NewAxis("x", 0, 1, 3, grid.Log)
		So(errors.Is(err, grid.ErrInvalidAxis), ShouldBeTrue)
		_, err = grid.NewAxis("x", 0, 1, 0, grid.Linear)
		So(errors.Is(err, grid.ErrInvalidAxis), ShouldBeTrue)
		_, err = grid.AxisFromPoints("x", []float64{1, 3, 2})
		So(errors.Is(err, grid.ErrInvalidAxis), ShouldBeTrue)
	})

	Convey("Given edges 0, 1, 2, 3", t, func() {
		a, err := grid.AxisFromPoints("edges", []float64{0, 1, 2, 3})
		So(err, ShouldBeNil)

		Convey("Then bins are half-open except the last", func() {
			So(a.Bin(0), ShouldEqual, 0)
			So(a.Bin(0.999), ShouldEqual, 0)
			So(a.Bin(1), ShouldEqual, 1)
			So(a.Bin(2.5), ShouldEqual, 2)
			So(a.Bin(3), ShouldEqual, 2)
			So(a.Bin(-0.1), ShouldEqual, -1)
			So(a.Bin(3.1), ShouldEqual, -1)
			So(a.Bin(math.NaN()), ShouldEqual, -1)
		})
	})
}

func TestGridBuild(t *testing.T) {
	ev, err := efficiency.New()
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given a sample with one star outside the parameter edges", t, func() {
		g := sampleGrid(t, sampleStars(t))

		Convey("Then stars are assigned to parameter bins", func() {
			So(g.Stars(), ShouldEqual, 5)
			So(g.OutOfRange(), ShouldEqual, 1)
			So(g.StarsPerBin(), ShouldResemble, []int{1, 1, 3})
		})

		Convey("When the grid is built", func() {
			So(g.Build(context.Background(), ev), ShouldBeNil)

			Convey("Then every cell lies between 0 and the number of stars in its bin", func() {
				shape := g.Shape()
				perBin := g.StarsPerBin()
				for i := 0; i < shape[0]; i++ {
					for j := 0; j < shape[1]; j++ {
						for k := 0; k < shape[2]; k++ {
							v := g.At(i, j, k)
							So(v, ShouldBeGreaterThanOrEqualTo, 0)
							if k < len(perBin) {
								So(v, ShouldBeLessThanOrEqualTo, float64(perBin[k]))
							} else {
								So(v, ShouldEqual, 0.0)
							}
						}
					}
				}
				So(g.Projection().Sum(), ShouldBeGreaterThan, 0)
			})

			Convey("Then every in-range (star, cell) pair was evaluated once", func() {
				shape := g.Shape()
				So(g.Evaluations(), ShouldEqual, int64(5*shape[0]*shape[1]))
				So(g.Skipped(), ShouldEqual, 0)
			})

			Convey("Then completeness falls with period and rises with radius", func() {
				p, err := g.Marginalize(grid.AxisRadius, grid.AxisParam)
				So(err, ShouldBeNil)
				So(p.Values[0], ShouldBeGreaterThan, p.Values[len(p.Values)-1])

				r, err := g.Marginalize(grid.AxisPeriod, grid.AxisParam)
				So(err, ShouldBeNil)
				So(r.Values[0], ShouldBeLessThan, r.Values[len(r.Values)-1])
			})
		})
	})

	Convey("Given slabs evaluated concurrently in any order", t, func() {
		seq := sampleGrid(t, sampleStars(t))
		So(seq.Build(context.Background(), ev), ShouldBeNil)

		par := sampleGrid(t, sampleStars(t))
		var wg sync.WaitGroup
		for i := par.Slabs() - 1; i >= 0; i-- {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = par.EvaluateSlab(context.Background(), i, ev)
			}(i)
		}
		wg.Wait()

		Convey("Then the result is bit-identical to a sequential build", func() {
			So(par.Projection().Values, ShouldResemble, seq.Projection().Values)
			So(par.Evaluations(), ShouldEqual, seq.Evaluations())
		})
	})

	Convey("Given stars whose evaluations fail", t, func() {
		noisy := sampleStar(t, 7, 5000, math.NaN())
		massless := sampleStar(t, 8, 5000, 40)
		massless.Mass = math.NaN()
		good := sampleStar(t, 9, 5000, 40)

		g := sampleGrid(t, []model.Star{noisy, massless, good})
		So(g.Build(context.Background(), ev), ShouldBeNil)

		ref := sampleGrid(t, []model.Star{good})
		So(ref.Build(context.Background(), ev), ShouldBeNil)

		Convey("Then the build completes and counts the skipped evaluations", func() {
			shape := g.Shape()
			So(g.Evaluations(), ShouldEqual, int64(3*shape[0]*shape[1]))
			So(g.Skipped(), ShouldBeGreaterThanOrEqualTo, int64(shape[0]*shape[1]))
			So(g.Skipped(), ShouldBeLessThanOrEqualTo, int64(2*shape[0]*shape[1]))
		})

		Convey("Then failed evaluations contribute nothing", func() {
			So(g.Projection().Values, ShouldResemble, ref.Projection().Values)
		})
	})

	Convey("Given a cancelled context", t, func() {
		g := sampleGrid(t, sampleStars(t))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := g.Build(ctx, ev)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given an invalid slab index", t, func() {
		g := sampleGrid(t, sampleStars(t))
		So(errors.Is(g.EvaluateSlab(context.Background(), 99, ev), grid.ErrAxisIndex), ShouldBeTrue)
	})
}

func TestMarginalize(t *testing.T) {
	ev, err := efficiency.New()
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given a built grid", t, func() {
		g := sampleGrid(t, sampleStars(t))
		So(g.Build(context.Background(), ev), ShouldBeNil)
		full := g.Projection()
		shape := g.Shape()

		Convey("Then summing over all axes matches a direct sum", func() {
			all, err := g.Marginalize(grid.AxisPeriod, grid.AxisRadius, grid.AxisParam)
			So(err, ShouldBeNil)
			So(all.Dims(), ShouldEqual, 0)
			So(all.Values, ShouldHaveLength, 1)
			So(all.Values[0], ShouldAlmostEqual, full.Sum(), 1e-9)

			step, err := full.Marginalize(0)
			So(err, ShouldBeNil)
			step, err = step.Marginalize(0)
			So(err, ShouldBeNil)
			step, err = step.Marginalize(0)
			So(err, ShouldBeNil)
			So(step.Values[0], ShouldAlmostEqual, all.Values[0], 1e-9)
		})

		Convey("Then a 1-D projection matches a direct single-axis aggregation", func() {
			p, err := g.Marginalize(grid.AxisRadius, grid.AxisParam)
			So(err, ShouldBeNil)
			So(p.Shape, ShouldResemble, []int{shape[0]})
			So(p.Axes[0].Name, ShouldEqual, "period")
			for i := 0; i < shape[0]; i++ {
				direct := 0.0
				for j := 0; j < shape[1]; j++ {
					for k := 0; k < shape[2]; k++ {
						direct += g.At(i, j, k)
					}
				}
				So(p.At(i), ShouldAlmostEqual, direct, 1e-9)
			}
		})

		Convey("Then a 2-D projection keeps the remaining axes in order", func() {
			p, err := g.Marginalize(grid.AxisRadius)
			So(err, ShouldBeNil)
			So(p.Shape, ShouldResemble, []int{shape[0], shape[2]})
			So(p.Axes[0].Name, ShouldEqual, "period")
			So(p.Axes[1].Name, ShouldEqual, "teff")
			for i := 0; i < shape[0]; i++ {
				for k := 0; k < shape[2]; k++ {
					direct := 0.0
					for j := 0; j < shape[1]; j++ {
						direct += g.At(i, j, k)
					}
					So(p.At(i, k), ShouldAlmostEqual, direct, 1e-9)
				}
			}
		})

		Convey("Then the mean divides by the contributing stars", func() {
			m, err := g.Mean(grid.AxisParam)
			So(err, ShouldBeNil)
			s, err := g.Marginalize(grid.AxisParam)
			So(err, ShouldBeNil)
			for i := range m.Values {
				So(m.Values[i], ShouldAlmostEqual, s.Values[i]/5, 1e-12)
				So(m.Values[i], ShouldBeLessThanOrEqualTo, 1)
			}
		})

		Convey("Then invalid axes are rejected", func() {
			_, err := g.Marginalize(3)
			So(errors.Is(err, grid.ErrAxisIndex), ShouldBeTrue)
			_, err = g.Marginalize(1, 1)
			So(errors.Is(err, grid.ErrAxisIndex), ShouldBeTrue)
		})
	})

	Convey("Given a grid with no stars in range", t, func() {
		g := sampleGrid(t, nil)
		_, err := g.Mean()
		So(errors.Is(err, grid.ErrNoStars), ShouldBeTrue)
	})

	Convey("Given a hand-built projection", t, func() {
		a, _ := grid.AxisFromPoints("a", []float64{0, 1})
		b, _ := grid.AxisFromPoints("b", []float64{0, 1, 2})
		p, err := grid.NewProjection([]grid.Axis{a, b}, []float64{1, 2, 3, 4, 5, 6})
		So(err, ShouldBeNil)

		Convey("Then marginals follow row-major layout", func() {
			rows, _ := p.Marginalize(1)
			So(rows.Values, ShouldResemble, []float64{6, 15})
			cols, _ := p.Marginalize(0)
			So(cols.Values, ShouldResemble, []float64{5, 7, 9})
			So(p.Scaled(2).At(1, 2), ShouldEqual, 12.0)
		})

		Convey("Then a mismatched size is rejected", func() {
			_, err := grid.NewProjection([]grid.Axis{a, b}, []float64{1, 2})
			So(errors.Is(err, grid.ErrInvalidAxis), ShouldBeTrue)
		})
	})
}

func TestParseAxis(t *testing.T) {
	Convey("Given axis names", t, func() {
		for name, want := range map[string]int{"period": 0, "Radius": 1, "param": 2, " stellar ": 2} {
			got, err := grid.ParseAxis(name)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
		_, err := grid.ParseAxis("mass")
		So(errors.Is(err, grid.ErrAxisIndex), ShouldBeTrue)
	})
}
