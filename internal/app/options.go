package service

import (
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/model"
	"github.com/okian/completeness/internal/domain/selection"
	"github.com/okian/completeness/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of grid workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the slab queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTables sets the stellar and candidate table names.
func WithTables(stellar, candidates string) Option {
	return func(s *Service) {
		if stellar != "" {
			s.stellarTable = stellar
		}
		if candidates != "" {
			s.candidateTable = candidates
		}
	}
}

// WithAxes sets the grid axes.
func WithAxes(a Axes) Option {
	return func(s *Service) {
		s.axes = a
	}
}

// WithStellarParam selects the stellar parameter of the third axis.
func WithStellarParam(p model.StellarParam) Option {
	return func(s *Service) {
		if p != "" {
			s.param = p
		}
	}
}

// WithEvaluator replaces the per-star efficiency evaluator.
func WithEvaluator(ev grid.Evaluator) Option {
	return func(s *Service) {
		if ev != nil {
			s.evaluator = ev
		}
	}
}

// WithStellarCuts replaces the stellar selection.
func WithStellarCuts(c selection.StellarCuts) Option {
	return func(s *Service) {
		s.stellarCuts = c
	}
}

// WithDisposition sets the candidate disposition kept by the selection.
func WithDisposition(d string) Option {
	return func(s *Service) {
		if d != "" {
			s.disposition = d
		}
	}
}
