// Package metrics provides Prometheus metrics for the measurement analytics service.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "analytics"
	defaultRefreshInterval = 10 * time.Second

	subsystem = "measurements"
)

// Manager manages all Prometheus metrics for the analytics service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Query Metrics - what callers ask for and how it goes
	queriesTotal       *prometheus.CounterVec
	queryLatency       *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
	noDataResults      *prometheus.CounterVec
	seriesPoints       prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository Metrics - storage backend behaviour
	repositoryRecordsTotal *prometheus.GaugeVec
	repositoryQueryLatency *prometheus.HistogramVec
	repositoryRowsReturned *prometheus.HistogramVec
	repositoryErrors       *prometheus.CounterVec

	// Seed Metrics - bulk load of generated data
	seedRecordsTotal prometheus.Counter
	seedDuration     prometheus.Histogram

	// Error Metrics - detailed error tracking
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	// GC cycles already observed by collectSystem.
	gcMu      sync.Mutex
	lastNumGC uint32
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before any handler reads GetRegistry.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append(append([]Option{}, opts...), WithPrometheusRegistry(registry))
	globalManager = NewManager(all...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	// Query Metrics
	m.queriesTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "queries_total",
			Help:        "Total number of analytics queries by kind, field and outcome",
			ConstLabels: labels,
		},
		[]string{"kind", "field", "outcome"},
	)

	m.queryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "query_latency_milliseconds",
			Help:        "End-to-end analytics query latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "validation_failures_total",
			Help:        "Total number of rejected query parameters by error code",
			ConstLabels: labels,
		},
		[]string{"code"},
	)

	m.noDataResults = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "no_data_total",
			Help:        "Total number of series and metrics queries that matched no values",
			ConstLabels: labels,
		},
		[]string{"field"},
	)

	m.seriesPoints = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        "series_points",
		Help:        "Number of points returned by range queries",
		Buckets:     []float64{0, 1, 10, 48, 100, 336, 1000, 5000, 20000},
		ConstLabels: labels,
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds (user experience)",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Repository Metrics
	m.repositoryRecordsTotal = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "repository_records_total",
			Help:        "Number of measurements held by the store",
			ConstLabels: labels,
		},
		[]string{"backend"},
	)

	m.repositoryQueryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "repository_query_latency_milliseconds",
			Help:        "Repository operation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"operation", "backend"},
	)

	m.repositoryRowsReturned = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "repository_rows_returned",
			Help:        "Rows returned per repository read",
			Buckets:     []float64{0, 1, 10, 100, 1000, 10000},
			ConstLabels: labels,
		},
		[]string{"operation", "backend"},
	)

	m.repositoryErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "repository_errors_total",
			Help:        "Total number of failed repository operations",
			ConstLabels: labels,
		},
		[]string{"operation", "backend"},
	)

	// Seed Metrics
	m.seedRecordsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        "seed_records_total",
		Help:        "Total number of generated measurements written by the seeder",
		ConstLabels: labels,
	})

	m.seedDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        "seed_duration_milliseconds",
		Help:        "Duration of a complete seed run in milliseconds",
		Buckets:     []float64{10, 50, 100, 500, 1000, 5000, 10000, 60000},
		ConstLabels: labels,
	})

	// Error Metrics - Detailed error tracking
	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Query Metrics Functions.

// RecordQuery counts a query of kind ("series" or "metrics") for field with
// the given outcome ("ok", "no_data", "invalid", "error").
func RecordQuery(kind, field, outcome string) {
	globalManager.queriesTotal.WithLabelValues(kind, field, outcome).Inc()
}

// RecordQueryLatency records end-to-end query latency.
func RecordQueryLatency(kind string, latencyMs float64) {
	globalManager.queryLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordValidationFailure counts a rejected request by error code.
func RecordValidationFailure(code string) {
	globalManager.validationFailures.WithLabelValues(code).Inc()
}

// RecordNoData counts a metrics query that matched nothing.
func RecordNoData(field string) {
	globalManager.noDataResults.WithLabelValues(field).Inc()
}

// RecordSeriesPoints records the size of a range query result.
func RecordSeriesPoints(n int) {
	globalManager.seriesPoints.Observe(float64(n))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Repository Metrics Functions.

// UpdateRepositoryRecordsTotal sets the number of records held by backend.
func UpdateRepositoryRecordsTotal(backend string, count int) {
	globalManager.repositoryRecordsTotal.WithLabelValues(backend).Set(float64(count))
}

// RecordRepositoryQueryLatency records repository operation latency.
func RecordRepositoryQueryLatency(operation, backend string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation, backend).Observe(latencyMs)
}

// RecordRepositoryRowsReturned records how many rows a read produced.
func RecordRepositoryRowsReturned(operation, backend string, n int) {
	globalManager.repositoryRowsReturned.WithLabelValues(operation, backend).Observe(float64(n))
}

// RecordRepositoryError increments the repository error counter.
func RecordRepositoryError(operation, backend string) {
	globalManager.repositoryErrors.WithLabelValues(operation, backend).Inc()
}

// Seed Metrics Functions.

// RecordSeededRecords adds n to the seeded records counter.
func RecordSeededRecords(n int) {
	globalManager.seedRecordsTotal.Add(float64(n))
}

// RecordSeedDuration records the duration of a seed run.
func RecordSeedDuration(latencyMs float64) {
	globalManager.seedDuration.Observe(latencyMs)
}

// Error Metrics Functions.

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// collectSystem samples memory and goroutines, and observes the pause of
// every GC cycle completed since the previous call. The runtime keeps only
// the last 256 pauses.
func (m *Manager) collectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))

	m.gcMu.Lock()
	defer m.gcMu.Unlock()
	from := m.lastNumGC
	if ms.NumGC-from > uint32(len(ms.PauseNs)) {
		from = ms.NumGC - uint32(len(ms.PauseNs))
	}
	for n := from + 1; n <= ms.NumGC; n++ {
		pause := ms.PauseNs[(n+255)%256]
		m.systemGCPauseTime.Observe(float64(pause) / float64(time.Millisecond))
	}
	m.lastNumGC = ms.NumGC
}

// RunSystemCollector samples runtime metrics every refresh interval until
// ctx is done. It returns immediately when metrics are disabled.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	if !m.enabled {
		return
	}
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	m.collectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectSystem()
		}
	}
}

// RunSystemCollector runs the global manager's collector.
func RunSystemCollector(ctx context.Context) {
	globalManager.RunSystemCollector(ctx)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
