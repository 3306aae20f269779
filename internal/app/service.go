// Package service runs completeness analyses: it fetches the catalogs,
// applies the selection, builds the completeness grid on a worker pool and
// keeps the last result for reporting.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/completeness/internal/adapters/catalog"
	jobqueue "github.com/okian/completeness/internal/adapters/mq/queue"
	workerpool "github.com/okian/completeness/internal/adapters/mq/worker"
	"github.com/okian/completeness/internal/domain/efficiency"
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/model"
	"github.com/okian/completeness/internal/domain/occurrence"
	"github.com/okian/completeness/internal/domain/selection"
	"github.com/okian/completeness/pkg/logger"
	"github.com/okian/completeness/pkg/metrics"
)

// AxisSpec is the range and resolution of one grid axis.
type AxisSpec struct {
	Min    float64
	Max    float64
	Points int
}

// Axes describes the three grid axes.
type Axes struct {
	Period  AxisSpec
	Radius  AxisSpec
	Param   AxisSpec
	Spacing grid.Spacing
}

// DefaultAxes covers 50-300 days, 0.75-2.5 Earth radii and 4200-6100 K.
func DefaultAxes() Axes {
	return Axes{
		Period: AxisSpec{Min: 50, Max: 300, Points: 57},
		Radius: AxisSpec{Min: 0.75, Max: 2.5, Points: 61},
		Param:  AxisSpec{Min: 4200, Max: 6100, Points: 20},
	}
}

// Result is the outcome of one run. It is read-only once returned.
type Result struct {
	RunID      string
	Grid       *grid.Grid
	Stars      []model.Star
	Detections []model.Detection

	StarsDecoded      catalog.DecodeReport
	CandidatesDecoded catalog.DecodeReport
	Selection         selection.Report

	StartedAt time.Time
	Duration  time.Duration
}

// Service orchestrates analysis runs.
type Service struct {
	mu sync.RWMutex

	fetcher   catalog.Fetcher
	evaluator grid.Evaluator

	// Configuration
	stellarTable   string
	candidateTable string
	axes           Axes
	param          model.StellarParam
	stellarCuts    selection.StellarCuts
	disposition    string
	workerCount    int
	queueSize      int

	// State
	last *Result
	runs int

	logger logger.Logger
}

// New constructs a Service reading catalogs through fetcher.
func New(fetcher catalog.Fetcher, opts ...Option) (*Service, error) {
	s := &Service{
		fetcher:        fetcher,
		stellarTable:   catalog.StellarTable,
		candidateTable: catalog.CandidateTable,
		axes:           DefaultAxes(),
		param:          model.ParamTeff,
		stellarCuts:    selection.DefaultStellarCuts(),
		disposition:    selection.DefaultDisposition,
		workerCount:    runtime.NumCPU(),
		queueSize:      1024,
		logger:         logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		return nil, ErrNoFetcher
	}
	if s.evaluator == nil {
		ev, err := efficiency.New()
		if err != nil {
			return nil, err
		}
		s.evaluator = ev
	}
	s.logger = s.logger.Named("service")
	return s, nil
}

// Run performs one analysis. Catalog failures abort the run and are
// returned; individual (star, cell) failures are only counted.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	s.logger.Info(ctx, "analysis started",
		logger.String("run_id", res.RunID),
		logger.String("stellar_table", s.stellarTable),
		logger.String("candidate_table", s.candidateTable),
		logger.String("stellar_param", string(s.param)),
	)

	period, radius, param, err := s.buildAxes()
	if err != nil {
		return nil, err
	}

	if err := s.loadSample(ctx, res, period, radius); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "sample selected",
		logger.String("run_id", res.RunID),
		logger.Int("stars", len(res.Stars)),
		logger.Int("candidates", len(res.Detections)),
		logger.Int("invalid_star_rows", res.StarsDecoded.Invalid),
	)

	g, err := grid.New(res.RunID, period, radius, param, s.param, res.Stars)
	if err != nil {
		return nil, err
	}
	if err := s.BuildGrid(ctx, g); err != nil {
		return nil, err
	}
	res.Grid = g
	res.Duration = time.Since(res.StartedAt)

	s.logger.Info(ctx, "analysis finished",
		logger.String("run_id", res.RunID),
		logger.Int64("evaluations", g.Evaluations()),
		logger.Int64("skipped", g.Skipped()),
		logger.Int("out_of_range", g.OutOfRange()),
		logger.Duration("duration", res.Duration),
	)

	s.mu.Lock()
	s.last = res
	s.runs++
	s.mu.Unlock()
	return res, nil
}

func (s *Service) buildAxes() (period, radius, param grid.Axis, err error) {
	a := s.axes
	if period, err = grid.NewAxis("period", a.Period.Min, a.Period.Max, a.Period.Points, a.Spacing); err != nil {
		return
	}
	if radius, err = grid.NewAxis("radius", a.Radius.Min, a.Radius.Max, a.Radius.Points, a.Spacing); err != nil {
		return
	}
	param, err = grid.NewAxis(string(s.param), a.Param.Min, a.Param.Max, a.Param.Points, a.Spacing)
	return
}

func (s *Service) loadSample(ctx context.Context, res *Result, period, radius grid.Axis) error {
	st, err := s.fetcher.Fetch(ctx, s.stellarTable)
	if err != nil {
		return fmt.Errorf("fetch stellar catalog: %w", err)
	}
	stars, rep, err := catalog.DecodeStars(st)
	if err != nil {
		return err
	}
	res.StarsDecoded = rep
	res.Stars = s.stellarCuts.Stars(stars)

	kt, err := s.fetcher.Fetch(ctx, s.candidateTable)
	if err != nil {
		return fmt.Errorf("fetch candidate catalog: %w", err)
	}
	cands, rep, err := catalog.DecodeCandidates(kt)
	if err != nil {
		return err
	}
	res.CandidatesDecoded = rep

	cuts := selection.CandidateCuts{
		Disposition: s.disposition,
		PeriodMin:   period.Points[0],
		PeriodMax:   period.Points[period.Len()-1],
		RadiusMin:   radius.Points[0],
		RadiusMax:   radius.Points[radius.Len()-1],
	}
	res.Detections, res.Selection = cuts.Candidates(cands, res.Stars)
	metrics.UpdateSelection(len(res.Stars), len(res.Detections))
	return nil
}

// BuildGrid evaluates every slab of g on a worker pool. Each slab is one
// job, so the result does not depend on the number of workers.
func (s *Service) BuildGrid(ctx context.Context, g *grid.Grid) error {
	start := time.Now()
	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	pool := workerpool.NewPool(s.workerCount, q,
		workerpool.ProcessorFunc(func(ctx context.Context, j model.Job) error {
			return g.EvaluateSlab(ctx, j.Slab, s.evaluator)
		}),
		workerpool.WithPoolLogger(s.logger),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < g.Slabs(); i++ {
		if err := q.Put(ctx, model.Job{RunID: g.RunID, Slab: i}); err != nil {
			cancel()
			_ = pool.Shutdown(context.Background())
			return fmt.Errorf("enqueue slab %d: %w", i, err)
		}
	}
	_ = q.Close()

	if err := pool.Wait(ctx); err != nil {
		return fmt.Errorf("build grid: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	metrics.RecordEvaluations(g.Evaluations()-g.Skipped(), g.Skipped())
	metrics.RecordStarsOutOfRange(g.OutOfRange())
	metrics.RecordGridBuildDuration(time.Since(start).Seconds())
	metrics.UpdateWorkerCount(0)
	return nil
}

// Last returns the most recent successful result.
func (s *Service) Last() (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, ErrNoRun
	}
	return s.last, nil
}

// Completeness returns the last grid summed over the given axes, divided by
// the number of contributing stars when mean is set.
func (s *Service) Completeness(over []int, mean bool) (grid.Projection, error) {
	res, err := s.Last()
	if err != nil {
		return grid.Projection{}, err
	}
	if mean {
		return res.Grid.Mean(over...)
	}
	return res.Grid.Marginalize(over...)
}

// Occurrence returns the occurrence rates of the last run along axis.
func (s *Service) Occurrence(axis int) (occurrence.Result, error) {
	res, err := s.Last()
	if err != nil {
		return occurrence.Result{}, err
	}
	values := occurrence.Values(res.Detections, axis, s.param)
	return occurrence.ForAxis(res.Grid, axis, values)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"runs":         s.runs,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"stellarTable": s.stellarTable,
		"koiTable":     s.candidateTable,
		"stellarParam": string(s.param),
		"axisSpacing":  s.axes.Spacing.String(),
	}
	if r := s.last; r != nil {
		shape := r.Grid.Shape()
		stats["runId"] = r.RunID
		stats["startedAt"] = r.StartedAt.UTC().Format(time.RFC3339)
		stats["durationMs"] = r.Duration.Milliseconds()
		stats["stars"] = len(r.Stars)
		stats["candidates"] = len(r.Detections)
		stats["starRows"] = r.StarsDecoded.Rows
		stats["invalidStarRows"] = r.StarsDecoded.Invalid
		stats["candidateRows"] = r.CandidatesDecoded.Rows
		stats["outOfRange"] = r.Grid.OutOfRange()
		stats["evaluations"] = r.Grid.Evaluations()
		stats["skipped"] = r.Grid.Skipped()
		stats["shape"] = shape[:]
	}
	return stats
}
