// Package window holds the probabilities that a transit is sampled by the
// survey at all: the binomial window function and the geometric transit
// probability.
package window

import (
	"math"

	"github.com/okian/completeness/internal/domain/model"
)

// MinTransits is the smallest expected number of transits for which the
// window approximation holds.
const MinTransits = 2.0

// Probability returns the chance that at least three transits of a planet
// with the given period fall inside the star's observed data. Results below
// zero and stars with fewer than MinTransits expected transits are masked
// to 0.
func Probability(star model.Star, period float64) float64 {
	if !(period > 0) {
		return 0
	}
	m := star.Dataspan / period
	f := star.Dutycycle
	g := 1.0 - f

	p := 1 - math.Pow(g, m) - m*f*math.Pow(g, m-1) - 0.5*m*(m-1)*f*f*math.Pow(g, m-2)
	if m < MinTransits || !(p >= 0) {
		return 0
	}
	return p
}

// GeometricProbability returns 1 / (aOverRstar (1 - e^2)), the chance that
// a randomly oriented orbit transits. Orbits with aOverRstar <= 1 and
// eccentricities outside [0, 1) are masked to 0. Very eccentric orbits
// whose value would exceed 1 are capped at 1.
func GeometricProbability(aOverRstar, eccentricity float64) float64 {
	if !(aOverRstar > 1) || !(eccentricity >= 0 && eccentricity < 1) {
		return 0
	}
	return math.Min(1, 1/(aOverRstar*(1-eccentricity*eccentricity)))
}
