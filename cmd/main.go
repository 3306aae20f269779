package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/completeness/internal/adapters/catalog"
	"github.com/okian/completeness/internal/adapters/http/api"
	"github.com/okian/completeness/internal/adapters/http/swagger"
	app "github.com/okian/completeness/internal/app"
	"github.com/okian/completeness/internal/config"
	"github.com/okian/completeness/internal/domain/efficiency"
	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/model"
	"github.com/okian/completeness/internal/domain/occurrence"
	"github.com/okian/completeness/internal/domain/selection"
	detection "github.com/okian/completeness/internal/domain/signal"
	"github.com/okian/completeness/pkg/logger"
	"github.com/okian/completeness/pkg/metrics"
	"github.com/okian/completeness/pkg/retry"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.GetRegistry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fetcher, closeFetcher, err := newFetcher(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to set up catalog access", logger.Error(err))
		return 1
	}
	defer closeFetcher()

	opts, err := serviceOptions(cfg, log)
	if err != nil {
		log.Error(ctx, "invalid analysis settings", logger.Error(err))
		return 1
	}
	svc, err := app.New(fetcher, opts...)
	if err != nil {
		log.Error(ctx, "failed to create service", logger.Error(err))
		return 1
	}

	res, err := svc.Run(ctx)
	if err != nil {
		log.Error(ctx, "analysis failed", logger.Error(err))
		return 1
	}
	summarize(ctx, log, svc, res)

	if cfg.Addr == "" {
		return 0
	}
	if err := serve(ctx, cfg.Addr, svc, log); err != nil {
		log.Error(ctx, "HTTP server failed", logger.Error(err))
		return 1
	}
	return 0
}

// newFetcher builds the archive client behind the configured cache. The
// returned func releases cache connections.
func newFetcher(ctx context.Context, cfg *config.Config, log logger.Logger) (catalog.Fetcher, func(), error) {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.FetchAttempts
	source := catalog.NewArchiveClient(
		catalog.WithBaseURL(cfg.ArchiveURL),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		catalog.WithRetryPolicy(policy),
		catalog.WithArchiveLogger(log),
	)

	switch cfg.CacheBackend {
	case config.CacheNone:
		return catalog.NewCachingFetcher(source, nil, log), func() {}, nil
	case config.CacheRedis:
		client, err := catalog.NewRedisClient(ctx, cfg.RedisAddr, os.Getenv("COMPLETENESS_REDIS_PASSWORD"), cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := client.Close(); err != nil {
				log.Warn(ctx, "closing redis client", logger.Error(err))
			}
		}
		return catalog.NewCachingFetcher(source, catalog.NewRedisCache(client, cfg.RedisTTL), log), closer, nil
	default:
		return catalog.NewCachingFetcher(source, catalog.NewFileCache(cfg.CacheDir), log), func() {}, nil
	}
}

// serviceOptions maps the configuration onto service options.
func serviceOptions(cfg *config.Config, log logger.Logger) ([]app.Option, error) {
	param, err := model.ParseStellarParam(cfg.StellarParam)
	if err != nil {
		return nil, err
	}
	cdf, err := detection.Gamma(cfg.GammaShape, cfg.GammaScale)
	if err != nil {
		return nil, err
	}
	ev, err := efficiency.New(
		efficiency.WithCDF(cdf),
		efficiency.WithEccentricity(cfg.Eccentricity),
	)
	if err != nil {
		return nil, err
	}

	spacing := grid.Linear
	if cfg.LogSpacing {
		spacing = grid.Log
	}
	axes := app.Axes{
		Period:  app.AxisSpec{Min: cfg.PeriodMin, Max: cfg.PeriodMax, Points: cfg.PeriodPoints},
		Radius:  app.AxisSpec{Min: cfg.RadiusMin, Max: cfg.RadiusMax, Points: cfg.RadiusPoints},
		Param:   app.AxisSpec{Min: cfg.ParamMin, Max: cfg.ParamMax, Points: cfg.ParamPoints},
		Spacing: spacing,
	}
	cuts := selection.StellarCuts{
		TeffMin:      cfg.TeffMin,
		TeffMax:      cfg.TeffMax,
		RadiusMax:    cfg.StarRadiusMax,
		DataspanMin:  cfg.DataspanMin,
		DutycycleMin: cfg.DutycycleMin,
		CDPPMax:      cfg.CDPPMax,
	}

	return []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithTables(cfg.StellarTable, cfg.KOITable),
		app.WithAxes(axes),
		app.WithStellarParam(param),
		app.WithEvaluator(ev),
		app.WithStellarCuts(cuts),
		app.WithDisposition(cfg.Disposition),
	}, nil
}

// summarize logs the mean completeness and the occurrence totals of a run.
func summarize(ctx context.Context, log logger.Logger, svc *app.Service, res *app.Result) {
	mean, err := svc.Completeness([]int{grid.AxisPeriod, grid.AxisRadius, grid.AxisParam}, true)
	if err != nil {
		log.Warn(ctx, "no mean completeness", logger.Error(err))
	} else {
		log.Info(ctx, "mean completeness", logger.Float64("value", mean.Values[0]))
	}

	for axis := grid.AxisPeriod; axis <= grid.AxisParam; axis++ {
		occ, err := svc.Occurrence(axis)
		if err != nil {
			log.Warn(ctx, "no occurrence rates", logger.Int("axis", axis), logger.Error(err))
			continue
		}
		log.Info(ctx, "occurrence rate",
			logger.String("run_id", res.RunID),
			logger.String("axis", occ.Axis),
			logger.Float64("total", occ.Total),
			logger.Float64("mean", occurrence.NanMean(occ.Rates)),
			logger.Float64("candidates", occurrence.NanSum(occ.Counts)),
		)
	}
}

// serve exposes the results until ctx is cancelled.
func serve(ctx context.Context, addr string, svc *app.Service, log logger.Logger) error {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
