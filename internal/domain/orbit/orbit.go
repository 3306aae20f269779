// Package orbit derives transit geometry from orbital parameters.
package orbit

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain reports physically invalid inputs.
var ErrDomain = errors.New("domain error")

// GravityOver4Pi2 is G/(4 pi^2) in solar radii^3 / (day^2 solar mass).
const GravityOver4Pi2 = 2945.4625385377644 / (4 * math.Pi * math.Pi)

// TransitDuration returns period * sqrt(1 - e^2) / (4 * aOverRstar) in the
// units of period. The factor is 1/4; Burke et al. (2015) eq. 1 prints 24/4
// for hours, which is a typo.
func TransitDuration(period, aOverRstar, eccentricity float64) (float64, error) {
	if err := checkEccentricity(eccentricity); err != nil {
		return math.NaN(), err
	}
	if !(aOverRstar > 0) || math.IsInf(aOverRstar, 0) {
		return math.NaN(), fmt.Errorf("%w: a/R* must be positive, got %v", ErrDomain, aOverRstar)
	}
	if !(period > 0) || math.IsInf(period, 0) {
		return math.NaN(), fmt.Errorf("%w: period must be positive, got %v", ErrDomain, period)
	}
	return 0.25 * period * math.Sqrt(1-eccentricity*eccentricity) / aOverRstar, nil
}

// SemiMajorAxis returns the semi-major axis in solar radii from Kepler's
// third law for a period in days around a star of mstar solar masses.
func SemiMajorAxis(periodDays, mstar float64) (float64, error) {
	if !(periodDays > 0) || math.IsInf(periodDays, 0) {
		return math.NaN(), fmt.Errorf("%w: period must be positive, got %v", ErrDomain, periodDays)
	}
	if !(mstar > 0) || math.IsInf(mstar, 0) {
		return math.NaN(), fmt.Errorf("%w: stellar mass must be positive, got %v", ErrDomain, mstar)
	}
	return math.Cbrt(GravityOver4Pi2 * periodDays * periodDays * mstar), nil
}

// Orbit is the geometry of one hypothesis, derived once and shared by every
// probability factor evaluated for it.
type Orbit struct {
	Period       float64 // days
	AOverRstar   float64 // semi-major axis in stellar radii
	Eccentricity float64
}

// New derives the orbit of a planet with the given period around a star of
// mstar solar masses and rstar solar radii.
func New(period, mstar, rstar, eccentricity float64) (Orbit, error) {
	if err := checkEccentricity(eccentricity); err != nil {
		return Orbit{}, err
	}
	if !(rstar > 0) || math.IsInf(rstar, 0) {
		return Orbit{}, fmt.Errorf("%w: stellar radius must be positive, got %v", ErrDomain, rstar)
	}
	a, err := SemiMajorAxis(period, mstar)
	if err != nil {
		return Orbit{}, err
	}
	return Orbit{Period: period, AOverRstar: a / rstar, Eccentricity: eccentricity}, nil
}

// Duration returns the transit duration in days.
func (o Orbit) Duration() (float64, error) {
	return TransitDuration(o.Period, o.AOverRstar, o.Eccentricity)
}

// DurationHours returns the transit duration in hours.
func (o Orbit) DurationHours() (float64, error) {
	d, err := o.Duration()
	return d * 24, err
}

func checkEccentricity(e float64) error {
	if !(e >= 0 && e < 1) {
		return fmt.Errorf("%w: eccentricity must be in [0,1), got %v", ErrDomain, e)
	}
	return nil
}
