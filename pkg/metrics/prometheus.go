// Package metrics provides Prometheus metrics for the tally service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bridge outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeTimeout   = "timeout"
	OutcomeTransport = "transport"
	OutcomeMalformed = "malformed"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeCanceled  = "canceled"
)

// Collection sources.
const (
	SourceRemote = "remote"
	SourceCache  = "cache"
)

// Manager manages all Prometheus metrics for the tally service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Bridge
	bridgeRequests *prometheus.CounterVec
	bridgeLatency  *prometheus.HistogramVec
	bridgePending  prometheus.Gauge
	bridgeLate     prometheus.Counter

	// Directory data
	collectionSize  *prometheus.GaugeVec
	cacheFallbacks  *prometheus.CounterVec
	cacheErrors     *prometheus.CounterVec
	refreshDuration prometheus.Histogram

	// Business
	submissions         *prometheus.CounterVec
	eventWrites         *prometheus.CounterVec
	summaryBuilds       prometheus.Counter
	summaryLatency      prometheus.Histogram
	summaryParticipants prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPauseTime prometheus.Histogram
	dedupeEntries     prometheus.Gauge

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		subsystem:        "attendance",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.bridgeRequests = m.counterVec("bridge_requests_total",
		"Callback bridge requests by backend action and outcome", "action", "outcome")
	m.bridgeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "bridge_latency_milliseconds",
		Help:        "Callback bridge round trip latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"action"})
	m.bridgePending = m.gauge("bridge_pending_callbacks", "Callback registrations awaiting a payload")
	m.bridgeLate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "bridge_late_deliveries_total",
		Help:        "Payloads delivered after their request had already resolved",
		ConstLabels: m.constLabels,
	})

	m.collectionSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "collection_size",
		Help:        "Rows held per directory collection and where they came from",
		ConstLabels: m.constLabels,
	}, []string{"collection", "source"})
	m.cacheFallbacks = m.counterVec("cache_fallbacks_total",
		"Loads served from the local cache because the backend failed or was empty", "collection")
	m.cacheErrors = m.counterVec("cache_errors_total",
		"Local cache read or write failures", "collection", "op")
	m.refreshDuration = m.histogram("refresh_duration_milliseconds", "Duration of a full directory refresh")

	m.submissions = m.counterVec("submissions_total", "Attendance submissions by outcome", "outcome")
	m.eventWrites = m.counterVec("event_writes_total", "Event create, update and delete by outcome", "op", "outcome")
	m.summaryBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "summary_builds_total",
		Help:        "Number of participant summaries built",
		ConstLabels: m.constLabels,
	})
	m.summaryLatency = m.histogram("summary_latency_milliseconds", "Time to build a participant summary")
	m.summaryParticipants = m.gauge("summary_participants", "Participants in the most recent summary")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutines = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: m.constLabels,
	})
	m.dedupeEntries = m.gauge("dedupe_entries", "Submission keys held by the duplicate tracker")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")
}

// RecordBridgeRequest counts one bridge call and its latency.
func RecordBridgeRequest(action, outcome string, latencyMs float64) {
	globalManager.bridgeRequests.WithLabelValues(action, outcome).Inc()
	globalManager.bridgeLatency.WithLabelValues(action).Observe(latencyMs)
}

// UpdateBridgePending sets the number of callback registrations in flight.
func UpdateBridgePending(n int) {
	globalManager.bridgePending.Set(float64(n))
}

// RecordBridgeLateDelivery counts a payload that arrived after resolution.
func RecordBridgeLateDelivery() {
	globalManager.bridgeLate.Inc()
}

// UpdateCollectionSize sets the size of a collection and its source.
func UpdateCollectionSize(collection, source string, n int) {
	globalManager.collectionSize.WithLabelValues(collection, source).Set(float64(n))
}

// RecordCacheFallback counts a load served from the local cache.
func RecordCacheFallback(collection string) {
	globalManager.cacheFallbacks.WithLabelValues(collection).Inc()
}

// RecordCacheError counts a failed cache read or write.
func RecordCacheError(collection, op string) {
	globalManager.cacheErrors.WithLabelValues(collection, op).Inc()
}

// RecordRefreshDuration observes the duration of a refresh in milliseconds.
func RecordRefreshDuration(ms float64) {
	globalManager.refreshDuration.Observe(ms)
}

// RecordSubmission counts an attendance submission by outcome.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordEventWrite counts an event mutation by operation and outcome.
func RecordEventWrite(op, outcome string) {
	globalManager.eventWrites.WithLabelValues(op, outcome).Inc()
}

// RecordSummaryBuild counts a summary build.
func RecordSummaryBuild(latencyMs float64, participants int) {
	globalManager.summaryBuilds.Inc()
	globalManager.summaryLatency.Observe(latencyMs)
	globalManager.summaryParticipants.Set(float64(participants))
}

// UpdateSystemMemoryUsage sets the allocated heap size in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime observes the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

// UpdateDedupeEntries sets the number of tracked submission keys.
func UpdateDedupeEntries(n int) {
	globalManager.dedupeEntries.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request with endpoint, method, and status code.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
