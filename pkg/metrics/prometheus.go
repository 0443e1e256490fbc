package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Report pipeline
	reportsGenerated *prometheus.CounterVec
	reportsFailed    *prometheus.CounterVec
	reportLatency    prometheus.Histogram
	topicsRanked     prometheus.Gauge

	// Record store
	recordsLoaded    *prometheus.CounterVec
	recordsSkipped   *prometheus.CounterVec
	storeLoadLatency *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec

	// Report cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "gatecompass",
		subsystem:        "analysis",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		refreshInterval:  defaultRefreshInterval,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval is how often runtime gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.reportsGenerated = auto.NewCounterVec(
		m.counterOpts("reports_generated_total", "Reports assembled, by status"),
		[]string{"status"},
	)
	m.reportsFailed = auto.NewCounterVec(
		m.counterOpts("reports_failed_total", "Report requests that failed, by error kind"),
		[]string{"kind"},
	)
	m.reportLatency = auto.NewHistogram(
		m.histogramOpts("report_latency_milliseconds", "End-to-end report latency in milliseconds"),
	)
	m.topicsRanked = auto.NewGauge(
		m.gaugeOpts("topics_ranked", "Number of topics in the most recent report"),
	)

	m.recordsLoaded = auto.NewCounterVec(
		m.counterOpts("records_loaded_total", "Observation records loaded, by store backend"),
		[]string{"backend"},
	)
	m.recordsSkipped = auto.NewCounterVec(
		m.counterOpts("records_skipped_total", "Malformed observation records skipped, by store backend"),
		[]string{"backend"},
	)
	m.storeLoadLatency = auto.NewHistogramVec(
		m.histogramOpts("store_load_latency_milliseconds", "Record store load latency in milliseconds"),
		[]string{"backend"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Record store failures, by backend"),
		[]string{"backend"},
	)

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Report cache hits"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Report cache misses"))
	m.cacheErrors = auto.NewCounter(m.counterOpts("cache_errors_total", "Report cache errors (bypassed)"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and error kind"),
		[]string{"endpoint", "method", "kind"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordReportGenerated counts an assembled report ("success" or "degraded").
func RecordReportGenerated(status string) {
	globalManager.reportsGenerated.WithLabelValues(status).Inc()
}

// RecordReportFailed counts a failed report request by error kind.
func RecordReportFailed(kind string) {
	globalManager.reportsFailed.WithLabelValues(kind).Inc()
}

// RecordReportLatency records end-to-end report latency.
func RecordReportLatency(latencyMs float64) {
	globalManager.reportLatency.Observe(latencyMs)
}

// UpdateTopicsRanked sets the topic count of the latest report.
func UpdateTopicsRanked(count int) {
	globalManager.topicsRanked.Set(float64(count))
}

// RecordRecordsLoaded adds to the loaded-records counter for a backend.
func RecordRecordsLoaded(backend string, n int) {
	globalManager.recordsLoaded.WithLabelValues(backend).Add(float64(n))
}

// RecordRecordsSkipped adds to the skipped-records counter for a backend.
func RecordRecordsSkipped(backend string, n int) {
	globalManager.recordsSkipped.WithLabelValues(backend).Add(float64(n))
}

// RecordStoreLoadLatency records how long a store load took.
func RecordStoreLoadLatency(backend string, latencyMs float64) {
	globalManager.storeLoadLatency.WithLabelValues(backend).Observe(latencyMs)
}

// RecordStoreError counts a store failure.
func RecordStoreError(backend string) {
	globalManager.storeErrors.WithLabelValues(backend).Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordCacheError increments the cache error counter.
func RecordCacheError() { globalManager.cacheErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method and kind labels.
func RecordErrorByEndpoint(endpoint, method, kind string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, kind).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval returns the sampling interval of the global manager.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
