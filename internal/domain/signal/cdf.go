package signal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Gamma parameters of the default detection CDF.
const (
	DefaultGammaShape = 4.65
	DefaultGammaScale = 0.98
)

// CDF maps the calibrated detection statistic to a probability of
// detection.
type CDF func(x float64) float64

// Distribution is anything exposing a cumulative distribution function,
// such as the gonum distuv types.
type Distribution interface {
	CDF(x float64) float64
}

// FromDistribution adapts d to a CDF.
func FromDistribution(d Distribution) CDF {
	return d.CDF
}

// Step is 1 for x >= 0 and 0 otherwise. NaN stays NaN.
func Step(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x >= 0:
		return 1
	}
	return 0
}

// Gamma returns the CDF of a gamma distribution with the given shape and
// scale. It is 0 for x <= 0.
func Gamma(shape, scale float64) (CDF, error) {
	if !(shape > 0) || !(scale > 0) || math.IsInf(shape, 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: gamma shape=%v scale=%v", ErrInvalidCDF, shape, scale)
	}
	g := distuv.Gamma{Alpha: shape, Beta: 1 / scale}
	return func(x float64) float64 {
		switch {
		case math.IsNaN(x):
			return math.NaN()
		case x <= 0:
			return 0
		}
		return g.CDF(x)
	}, nil
}

// DefaultCDF is the gamma CDF with shape 4.65 and scale 0.98.
func DefaultCDF() CDF {
	cdf, err := Gamma(DefaultGammaShape, DefaultGammaScale)
	if err != nil {
		panic(err)
	}
	return cdf
}
