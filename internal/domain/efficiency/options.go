package efficiency

import "github.com/okian/completeness/internal/domain/signal"

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCDF sets the detection CDF. The default is signal.DefaultCDF.
func WithCDF(cdf signal.CDF) Option {
	return func(e *Evaluator) {
		e.cdf = cdf
	}
}

// WithEccentricity sets the assumed orbital eccentricity. The default is 0.
func WithEccentricity(ecc float64) Option {
	return func(e *Evaluator) {
		e.eccentricity = ecc
	}
}

// WithSignalModel replaces the depth and MES constants.
func WithSignalModel(m signal.Model) Option {
	return func(e *Evaluator) {
		e.model = m
	}
}
