// Package metrics provides Prometheus metrics for the completeness pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Grid evaluation
	evaluations        prometheus.Counter
	evaluationsSkipped prometheus.Counter
	starsOutOfRange    prometheus.Counter
	gridBuildDuration  prometheus.Histogram
	slabLatency        prometheus.Histogram
	starsSelected      prometheus.Gauge
	candidatesSelected prometheus.Gauge

	// Catalog access
	catalogFetchDuration *prometheus.HistogramVec
	catalogCacheHits     *prometheus.CounterVec
	catalogCacheMisses   *prometheus.CounterVec
	catalogFetchErrors   *prometheus.CounterVec
	catalogRows          *prometheus.GaugeVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount  prometheus.Gauge
	workerErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "completeness",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounter(m.counterOpts(
		"evaluations_total", "Per-star detection probability evaluations accumulated into the grid"))
	m.evaluationsSkipped = auto.NewCounter(m.counterOpts(
		"evaluations_skipped_total", "Per-star evaluations that failed or produced NaN and contributed nothing"))
	m.starsOutOfRange = auto.NewCounter(m.counterOpts(
		"stars_out_of_range_total", "Stars whose stellar parameter falls outside the grid's third axis"))
	m.gridBuildDuration = auto.NewHistogram(m.histogramOpts(
		"grid_build_duration_seconds", "Wall time of a full completeness grid build"))
	m.slabLatency = auto.NewHistogram(m.histogramOpts(
		"grid_slab_latency_milliseconds", "Time to evaluate one period slab over the stellar sample"))
	m.starsSelected = auto.NewGauge(m.gaugeOpts(
		"stars_selected", "Stars that passed the stellar cuts in the last run"))
	m.candidatesSelected = auto.NewGauge(m.gaugeOpts(
		"candidates_selected", "Candidates that passed the candidate cuts in the last run"))

	m.catalogFetchDuration = auto.NewHistogramVec(m.histogramOpts(
		"catalog_fetch_duration_seconds", "Catalog fetch latency by table and source"),
		[]string{"table", "source"})
	m.catalogCacheHits = auto.NewCounterVec(m.counterOpts(
		"catalog_cache_hits_total", "Catalog cache hits by table"), []string{"table"})
	m.catalogCacheMisses = auto.NewCounterVec(m.counterOpts(
		"catalog_cache_misses_total", "Catalog cache misses by table"), []string{"table"})
	m.catalogFetchErrors = auto.NewCounterVec(m.counterOpts(
		"catalog_fetch_errors_total", "Failed catalog fetches by table"), []string{"table"})
	m.catalogRows = auto.NewGaugeVec(m.gaugeOpts(
		"catalog_rows", "Rows in the last fetched copy of each table"), []string{"table"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the slab queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the slab queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the slab queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts(
		"queue_enqueue_errors_total", "Jobs rejected because the queue was closed or full"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Workers in the grid pool"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that returned an error"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_total", "Errors by component and type"), []string{"component", "error_type"})
}

// Grid evaluation.

// RecordEvaluations adds accumulated and skipped per-star evaluations.
func RecordEvaluations(accumulated, skipped int64) {
	globalManager.evaluations.Add(float64(accumulated))
	globalManager.evaluationsSkipped.Add(float64(skipped))
}

// RecordStarsOutOfRange adds stars that fell outside the third axis.
func RecordStarsOutOfRange(n int) {
	globalManager.starsOutOfRange.Add(float64(n))
}

// RecordGridBuildDuration records the wall time of a grid build.
func RecordGridBuildDuration(seconds float64) {
	globalManager.gridBuildDuration.Observe(seconds)
}

// RecordSlabLatency records how long one slab took.
func RecordSlabLatency(latencyMs float64) {
	globalManager.slabLatency.Observe(latencyMs)
}

// UpdateSelection sets the selected star and candidate counts.
func UpdateSelection(stars, candidates int) {
	globalManager.starsSelected.Set(float64(stars))
	globalManager.candidatesSelected.Set(float64(candidates))
}

// Catalog access.

// RecordCatalogFetch records the latency of a fetch served by source.
func RecordCatalogFetch(table, source string, seconds float64) {
	globalManager.catalogFetchDuration.WithLabelValues(table, source).Observe(seconds)
}

// RecordCacheHit increments the cache hit counter for table.
func RecordCacheHit(table string) {
	globalManager.catalogCacheHits.WithLabelValues(table).Inc()
}

// RecordCacheMiss increments the cache miss counter for table.
func RecordCacheMiss(table string) {
	globalManager.catalogCacheMisses.WithLabelValues(table).Inc()
}

// RecordCatalogFetchError increments the fetch error counter for table.
func RecordCatalogFetchError(table string) {
	globalManager.catalogFetchErrors.WithLabelValues(table).Inc()
}

// UpdateCatalogRows sets the row count of the last fetched copy of table.
func UpdateCatalogRows(table string, rows int) {
	globalManager.catalogRows.WithLabelValues(table).Set(float64(rows))
}

// Queue.

// UpdateQueueSize sets the number of queued jobs.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Workers.

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Sum gathers the custom registry and returns the summed value of every
// counter or gauge series of the fully qualified metric name.
func Sum(name string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
}
