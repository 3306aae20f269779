// Package efficiency composes orbit geometry, the signal model and the
// window and geometric probabilities into the probability that a planet
// around one star is detected.
package efficiency

import (
	"fmt"
	"math"

	"github.com/okian/completeness/internal/domain/model"
	"github.com/okian/completeness/internal/domain/orbit"
	"github.com/okian/completeness/internal/domain/signal"
	"github.com/okian/completeness/internal/domain/window"
)

// Components are the factors of one evaluation. Total is their product.
type Components struct {
	Detection float64
	Window    float64
	Geometric float64
	Total     float64
}

// Evaluator computes per-star detection efficiencies. It holds no mutable
// state and may be shared between goroutines.
type Evaluator struct {
	cdf          signal.CDF
	eccentricity float64
	model        signal.Model
}

// New returns an Evaluator using the default gamma CDF, circular orbits
// and the default signal model unless options say otherwise.
func New(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		cdf:   signal.DefaultCDF(),
		model: signal.Default,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cdf == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, signal.ErrNoCDF)
	}
	if !(e.eccentricity >= 0 && e.eccentricity < 1) {
		return nil, fmt.Errorf("%w: eccentricity %v not in [0,1)", ErrInvalidOption, e.eccentricity)
	}
	return e, nil
}

// Eccentricity returns the assumed orbital eccentricity.
func (e *Evaluator) Eccentricity() float64 { return e.eccentricity }

// Prepared is the radius-independent part of an evaluation for one star and
// period. The orbit is derived once and every factor reads it.
type Prepared struct {
	Orbit     orbit.Orbit
	Window    float64
	Geometric float64

	star model.Star
	ev   *Evaluator
}

// Prepare derives the orbit of period around star together with the window
// and geometric probabilities.
func (e *Evaluator) Prepare(star model.Star, period float64) (Prepared, error) {
	o, err := orbit.New(period, star.Mass, star.Radius, e.eccentricity)
	if err != nil {
		return Prepared{}, fmt.Errorf("kepid %d period %v: %w", star.KepID, period, err)
	}
	return Prepared{
		Orbit:     o,
		Window:    window.Probability(star, o.Period),
		Geometric: window.GeometricProbability(o.AOverRstar, o.Eccentricity),
		star:      star,
		ev:        e,
	}, nil
}

// Evaluate returns the factors for a planet of radius Earth radii. When the
// window or geometric factor is zero the detection factor is not computed
// and Total is 0.
func (p Prepared) Evaluate(radius float64) (Components, error) {
	c := Components{Window: p.Window, Geometric: p.Geometric}
	if p.Window == 0 || p.Geometric == 0 {
		return c, nil
	}
	det, err := p.ev.model.DetectionProbability(p.star, p.Orbit.AOverRstar, p.Orbit.Period, radius, p.Orbit.Eccentricity, p.ev.cdf)
	if err != nil {
		return c, fmt.Errorf("kepid %d radius %v: %w", p.star.KepID, radius, err)
	}
	c.Detection = det
	c.Total = det * p.Window * p.Geometric
	if math.IsNaN(c.Total) {
		return c, fmt.Errorf("%w: kepid %d period %v radius %v", ErrUndefined, p.star.KepID, p.Orbit.Period, radius)
	}
	return c, nil
}

// Probability returns the total detection efficiency for radius.
func (p Prepared) Probability(radius float64) (float64, error) {
	c, err := p.Evaluate(radius)
	return c.Total, err
}

// Evaluate prepares and evaluates a single (star, period, radius) tuple.
func (e *Evaluator) Evaluate(star model.Star, period, radius float64) (Components, error) {
	p, err := e.Prepare(star, period)
	if err != nil {
		return Components{}, err
	}
	return p.Evaluate(radius)
}

// Probability returns the detection efficiency of one (star, period,
// radius) tuple.
func (e *Evaluator) Probability(star model.Star, period, radius float64) (float64, error) {
	c, err := e.Evaluate(star, period, radius)
	return c.Total, err
}

// Probability evaluates one tuple with the given eccentricity and CDF and
// the default signal model.
func Probability(star model.Star, period, radius, eccentricity float64, cdf signal.CDF) (float64, error) {
	e, err := New(WithCDF(cdf), WithEccentricity(eccentricity))
	if err != nil {
		return math.NaN(), err
	}
	return e.Probability(star, period, radius)
}
