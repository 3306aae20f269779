package occurrence_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/completeness/internal/domain/efficiency"
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/model"
	"github.com/okian/completeness/internal/domain/occurrence"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRates(t *testing.T) {
	Convey("Given a count of 10 and completeness of 0.5", t, func() {
		So(occurrence.Rate(10, 0.5), ShouldEqual, 20.0)
	})

	Convey("Given zero completeness", t, func() {
		So(math.IsNaN(occurrence.Rate(10, 0)), ShouldBeTrue)
		So(math.IsNaN(occurrence.Rate(0, 0)), ShouldBeTrue)
		So(math.IsNaN(occurrence.Rate(3, math.NaN())), ShouldBeTrue)
	})

	Convey("Given completeness sampled on bin edges", t, func() {
		rates, err := occurrence.Rates([]float64{10, 4, 0}, []float64{0.5, 0, 2, 99})

		Convey("Then the final coordinate is excluded", func() {
			So(err, ShouldBeNil)
			So(rates, ShouldHaveLength, 3)
			So(rates[0], ShouldEqual, 20.0)
			So(math.IsNaN(rates[1]), ShouldBeTrue)
			So(rates[2], ShouldEqual, 0.0)
		})

		Convey("Then NaN bins are excluded from summaries", func() {
			So(occurrence.NanSum(rates), ShouldEqual, 20.0)
			So(occurrence.NanMean(rates), ShouldEqual, 10.0)
			So(math.IsNaN(occurrence.NanMean([]float64{math.NaN()})), ShouldBeTrue)
		})
	})

	Convey("Given mismatched lengths", t, func() {
		_, err := occurrence.Rates([]float64{1, 2}, []float64{1, 2})
		So(errors.Is(err, occurrence.ErrShape), ShouldBeTrue)
	})
}

func TestHistogram(t *testing.T) {
	Convey("Given values around edges 0, 1, 2, 3", t, func() {
		edges := []float64{0, 1, 2, 3}
		values := []float64{2.5, 0, 0.5, 1, 3, -1, 3.5, math.NaN(), 1.999}

		Convey("Then bins are half-open and the last edge is included", func() {
			So(occurrence.Histogram(values, edges), ShouldResemble, []float64{2, 2, 2})
		})

		Convey("Then the input order is untouched", func() {
			occurrence.Histogram(values, edges)
			So(values[0], ShouldEqual, 2.5)
		})
	})

	Convey("Given no values in range", t, func() {
		So(occurrence.Histogram([]float64{9}, []float64{0, 1}), ShouldResemble, []float64{0})
	})
}

func TestForAxis(t *testing.T) {
	Convey("Given a built grid and detections", t, func() {
		durations := []float64{1.5, 3, 6, 12, 15}
		noise, _ := model.FlatCurve(durations, 40)
		threshold, _ := model.FlatCurve(durations, 7.1)
		host := model.Star{
			KepID: 1, Teff: 5500, Radius: 1, Mass: 1, Dataspan: 1400, Dutycycle: 0.9,
			CDPP: noise, MESThreshold: threshold,
		}

		period, _ := grid.NewAxis("period", 50, 300, 6, grid.Linear)
		radius, _ := grid.NewAxis("radius", 0.75, 2.5, 8, grid.Linear)
		teff, _ := grid.NewAxis("teff", 4200, 6100, 3, grid.Linear)
		g, err := grid.New("r", period, radius, teff, model.ParamTeff, []model.Star{host})
		So(err, ShouldBeNil)
		ev, _ := efficiency.New()
		So(g.Build(context.Background(), ev), ShouldBeNil)

		dets := []model.Detection{
			{Candidate: model.Candidate{KepID: 1, Period: 60, Radius: 1.1}, Host: host},
			{Candidate: model.Candidate{KepID: 1, Period: 120, Radius: 2.4}, Host: host},
			{Candidate: model.Candidate{KepID: 1, Period: 290, Radius: 0.8}, Host: host},
		}

		Convey("Then period rates divide counts by the period completeness", func() {
			res, err := occurrence.ForAxis(g, grid.AxisPeriod, occurrence.Values(dets, grid.AxisPeriod, model.ParamTeff))
			So(err, ShouldBeNil)
			So(res.Axis, ShouldEqual, "period")
			So(res.Counts, ShouldResemble, []float64{1, 1, 0, 0, 1})
			So(res.Completeness, ShouldHaveLength, 6)
			So(res.Rates, ShouldHaveLength, 5)
			So(res.Rates[0], ShouldEqual, 1/res.Completeness[0])
			So(res.Total, ShouldEqual, occurrence.NanSum(res.Rates))
		})

		Convey("Then the parameter axis histograms the host values", func() {
			vals := occurrence.Values(dets, grid.AxisParam, model.ParamTeff)
			So(vals, ShouldResemble, []float64{5500, 5500, 5500})

			res, err := occurrence.ForAxis(g, grid.AxisParam, vals)
			So(err, ShouldBeNil)
			So(res.Counts, ShouldResemble, []float64{0, 3})
			So(res.Completeness[0], ShouldEqual, 0.0)
			So(math.IsNaN(res.Rates[0]), ShouldBeTrue)
			So(res.Rates[1], ShouldBeGreaterThan, 0)
		})

		Convey("Then an unknown axis is rejected", func() {
			_, err := occurrence.ForAxis(g, 3, nil)
			So(errors.Is(err, grid.ErrAxisIndex), ShouldBeTrue)
		})
	})
}
