package orbit_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/completeness/internal/domain/orbit"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTransitDuration(t *testing.T) {
	Convey("Given a circular orbit at a/R* = 20", t, func() {
		d, err := orbit.TransitDuration(10, 20, 0)

		Convey("Then the duration uses the 1/4 factor", func() {
			So(err, ShouldBeNil)
			So(d, ShouldAlmostEqual, 10.0/80.0, 1e-15)
		})

		Convey("Then doubling the period doubles the duration", func() {
			for _, e := range []float64{0, 0.3, 0.9} {
				for _, aor := range []float64{1.5, 20, 215} {
					d1, err := orbit.TransitDuration(7.3, aor, e)
					So(err, ShouldBeNil)
					d2, err := orbit.TransitDuration(14.6, aor, e)
					So(err, ShouldBeNil)
					So(d2, ShouldAlmostEqual, 2*d1, 1e-12)
				}
			}
		})
	})

	Convey("Given an eccentric orbit", t, func() {
		d, err := orbit.TransitDuration(10, 20, 0.6)
		So(err, ShouldBeNil)
		So(d, ShouldAlmostEqual, 10.0*0.8/80.0, 1e-15)
	})

	Convey("Given invalid inputs", t, func() {
		cases := []struct{ period, aor, e float64 }{
			{10, 0, 0},
			{10, -1, 0},
			{10, math.NaN(), 0},
			{10, 20, 1},
			{10, 20, -0.1},
			{10, 20, math.NaN()},
			{0, 20, 0},
		}
		for _, c := range cases {
			d, err := orbit.TransitDuration(c.period, c.aor, c.e)
			So(errors.Is(err, orbit.ErrDomain), ShouldBeTrue)
			So(math.IsNaN(d), ShouldBeTrue)
		}
	})
}

func TestSemiMajorAxis(t *testing.T) {
	Convey("Given the Earth's orbit around the Sun", t, func() {
		a, err := orbit.SemiMajorAxis(365.25, 1.0)

		Convey("Then a is about 215 solar radii", func() {
			So(err, ShouldBeNil)
			So(a, ShouldAlmostEqual, 215.0, 0.5)
		})
	})

	Convey("Given a 50 day orbit around a solar-mass star", t, func() {
		a, err := orbit.SemiMajorAxis(50, 1.0)
		So(err, ShouldBeNil)

		Convey("Then Kepler's third law holds", func() {
			So(a*a*a, ShouldAlmostEqual, orbit.GravityOver4Pi2*2500, 1e-6)
		})
	})

	Convey("Given non-positive period or mass", t, func() {
		for _, in := range [][2]float64{{0, 1}, {-3, 1}, {10, 0}, {10, math.NaN()}, {math.Inf(1), 1}} {
			_, err := orbit.SemiMajorAxis(in[0], in[1])
			So(errors.Is(err, orbit.ErrDomain), ShouldBeTrue)
		}
	})
}

func TestNew(t *testing.T) {
	Convey("Given a star of 1 solar mass and 2 solar radii", t, func() {
		o, err := orbit.New(50, 1, 2, 0.1)
		So(err, ShouldBeNil)

		Convey("Then a/R* is the semi-major axis over the stellar radius", func() {
			a, _ := orbit.SemiMajorAxis(50, 1)
			So(o.AOverRstar, ShouldEqual, a/2)
			So(o.Period, ShouldEqual, 50.0)
			So(o.Eccentricity, ShouldEqual, 0.1)
		})

		Convey("Then the duration in hours is 24 times the duration in days", func() {
			d, err := o.Duration()
			So(err, ShouldBeNil)
			h, err := o.DurationHours()
			So(err, ShouldBeNil)
			So(h, ShouldEqual, d*24)
		})
	})

	Convey("Given invalid stellar parameters", t, func() {
		_, err := orbit.New(50, 1, 0, 0)
		So(errors.Is(err, orbit.ErrDomain), ShouldBeTrue)
		_, err = orbit.New(50, math.NaN(), 1, 0)
		So(errors.Is(err, orbit.ErrDomain), ShouldBeTrue)
		_, err = orbit.New(50, 1, 1, 1)
		So(errors.Is(err, orbit.ErrDomain), ShouldBeTrue)
	})
}
