// Package signal estimates transit depth, the multiple event statistic and
// the resulting probability that the pipeline detects a transit.
package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/completeness/internal/domain/model"
	"github.com/okian/completeness/internal/domain/orbit"
)

// Sentinel errors.
var (
	ErrNoCDF      = errors.New("detection CDF is required")
	ErrInvalidCDF = errors.New("invalid detection CDF")
)

// Calibration constants of the detection model.
const (
	DefaultLimbC       = 1.0874
	DefaultLimbS       = 1.0187
	EarthToSolarRadius = 0.009171
	MESOffset          = 4.1
	ThresholdReference = 7.1
)

// Model holds the constants of the depth and MES formulas.
//
// The depth polynomial is c + s*k. The public KeplerPORTs code uses c - s*k;
// this package always adds, so depths and MES values from the two are not
// interchangeable.
type Model struct {
	C           float64
	S           float64
	EarthRadius float64 // Earth radius in solar radii
}

// Default is the model with the published constants.
var Default = Model{C: DefaultLimbC, S: DefaultLimbS, EarthRadius: EarthToSolarRadius}

// TransitDepth returns the expected depth for radius ratio k with the
// default constants.
func TransitDepth(k float64) float64 { return Default.Depth(k) }

// MultipleEventStatistic is Default.MES.
func MultipleEventStatistic(star model.Star, period, planetRadius, durationHours float64) float64 {
	return Default.MES(star, period, planetRadius, durationHours)
}

// DetectionProbability is Default.DetectionProbability.
func DetectionProbability(star model.Star, aOverRstar, period, planetRadius, eccentricity float64, cdf CDF) (float64, error) {
	return Default.DetectionProbability(star, aOverRstar, period, planetRadius, eccentricity, cdf)
}

// Depth returns 0.84 k^2 (c + s k).
func (m Model) Depth(k float64) float64 {
	return 0.84 * (k * k) * (m.C + m.S*k)
}

// MES estimates the multiple event statistic of a planet of planetRadius
// Earth radii whose transits last durationHours. The star's CDPP curve is
// interpolated at the duration; a NaN noise value yields NaN.
func (m Model) MES(star model.Star, period, planetRadius, durationHours float64) float64 {
	sigma := star.CDPP.At(durationHours)
	if !(sigma > 0) || !(period > 0) {
		return math.NaN()
	}
	k := planetRadius * m.EarthRadius / star.Radius
	snr := m.Depth(k) * 1e6 / sigma

	transits := star.Dataspan * star.Dutycycle / period
	return snr * math.Sqrt(transits)
}

// DetectionProbability evaluates cdf at the MES corrected by the star's
// MES threshold at the transit duration. Finite results are clamped to
// [0, 1]; NaN is returned unchanged.
func (m Model) DetectionProbability(star model.Star, aOverRstar, period, planetRadius, eccentricity float64, cdf CDF) (float64, error) {
	if cdf == nil {
		return math.NaN(), ErrNoCDF
	}
	duration, err := orbit.TransitDuration(period, aOverRstar, eccentricity)
	if err != nil {
		return math.NaN(), fmt.Errorf("detection probability: %w", err)
	}
	tau := duration * 24

	mes := m.MES(star, period, planetRadius, tau)
	threshold := star.MESThreshold.At(tau)
	x := mes - MESOffset - (threshold - ThresholdReference)

	return clamp01(cdf(x)), nil
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
