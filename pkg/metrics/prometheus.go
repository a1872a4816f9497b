// Package metrics provides Prometheus metrics for the playoff processor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the processor.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Event intake
	eventsReceived    prometheus.Counter
	eventsSkipped     *prometheus.CounterVec
	eventsProcessed   *prometheus.CounterVec
	processingLatency prometheus.Histogram

	// Pipeline stages
	winnerResolutionLatency prometheus.Histogram
	playersCreated          prometheus.Counter
	playersExisting         prometheus.Counter
	actionsPlayed           prometheus.Counter

	// Outbound calls
	externalRequests        *prometheus.CounterVec
	externalRequestDuration *prometheus.HistogramVec
	tokenRefreshes          *prometheus.CounterVec
	tokenErrors             *prometheus.CounterVec

	// Stream consumer
	consumerUp    prometheus.Gauge
	offsetCommits prometheus.Counter
	commitErrors  prometheus.Counter
	fetchErrors   prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// ServiceName is attached as the service label of every metric.
const ServiceName = "playoff-processor"

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(
		WithPrometheusRegistry(customRegistry),
		WithConstLabels(map[string]string{"service": ServiceName}),
	)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "playoff",
		subsystem:        "processor",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.eventsReceived = m.counter("events_received_total", "Total number of stream messages handed to the processor")
	m.eventsSkipped = m.counterVec("events_skipped_total", "Messages dropped before dispatch, by reason", "reason")
	m.eventsProcessed = m.counterVec("events_processed_total", "Dispatched events by terminal outcome", "outcome")
	m.processingLatency = m.histogram("event_processing_milliseconds", "End-to-end handling latency per message in milliseconds")

	m.winnerResolutionLatency = m.histogram("winner_resolution_milliseconds", "Latency of winner resolution in milliseconds")
	m.playersCreated = m.counter("players_created_total", "Playoff players created by the processor")
	m.playersExisting = m.counter("players_existing_total", "Winners already present as playoff players")
	m.actionsPlayed = m.counter("actions_played_total", "Win actions played in playoff")

	m.externalRequests = m.counterVec("external_requests_total", "Outbound API requests by client, operation and status",
		"client", "operation", "status_code")
	m.externalRequestDuration = m.histogramVec("external_request_duration_milliseconds", "Outbound API request latency in milliseconds",
		"client", "operation")
	m.tokenRefreshes = m.counterVec("token_refreshes_total", "Access tokens fetched from the authorization server", "provider")
	m.tokenErrors = m.counterVec("token_errors_total", "Failed access token fetches", "provider")

	m.consumerUp = m.gauge("consumer_up", "1 when the last stream fetch succeeded")
	m.offsetCommits = m.counter("offset_commits_total", "Stream offsets committed")
	m.commitErrors = m.counter("offset_commit_errors_total", "Stream offset commits that failed")
	m.fetchErrors = m.counter("fetch_errors_total", "Stream fetches that failed")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and error type",
		"component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Current memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds")
}

// RecordEventReceived increments the received messages counter.
func RecordEventReceived() {
	globalManager.eventsReceived.Inc()
}

// RecordEventSkipped counts a message dropped before dispatch.
func RecordEventSkipped(reason string) {
	globalManager.eventsSkipped.WithLabelValues(reason).Inc()
}

// RecordEventProcessed counts a dispatched event by outcome.
func RecordEventProcessed(outcome string) {
	globalManager.eventsProcessed.WithLabelValues(outcome).Inc()
}

// RecordProcessingLatency records end-to-end message handling latency.
func RecordProcessingLatency(latencyMs float64) {
	globalManager.processingLatency.Observe(latencyMs)
}

// RecordWinnerResolutionLatency records winner resolution latency.
func RecordWinnerResolutionLatency(latencyMs float64) {
	globalManager.winnerResolutionLatency.Observe(latencyMs)
}

// RecordPlayerCreated increments the created players counter.
func RecordPlayerCreated() {
	globalManager.playersCreated.Inc()
}

// RecordPlayerExisting increments the counter of winners already known to playoff.
func RecordPlayerExisting() {
	globalManager.playersExisting.Inc()
}

// RecordActionPlayed increments the played actions counter.
func RecordActionPlayed() {
	globalManager.actionsPlayed.Inc()
}

// RecordExternalRequest records one outbound API call.
func RecordExternalRequest(client, operation, statusCode string, latencyMs float64) {
	globalManager.externalRequests.WithLabelValues(client, operation, statusCode).Inc()
	globalManager.externalRequestDuration.WithLabelValues(client, operation).Observe(latencyMs)
}

// RecordTokenRefresh counts a token fetch for the named provider.
func RecordTokenRefresh(provider string) {
	globalManager.tokenRefreshes.WithLabelValues(provider).Inc()
}

// RecordTokenError counts a failed token fetch for the named provider.
func RecordTokenError(provider string) {
	globalManager.tokenErrors.WithLabelValues(provider).Inc()
}

// UpdateConsumerUp sets the consumer liveness gauge.
func UpdateConsumerUp(up bool) {
	if up {
		globalManager.consumerUp.Set(1)
		return
	}
	globalManager.consumerUp.Set(0)
}

// RecordOffsetCommit increments the committed offsets counter.
func RecordOffsetCommit() {
	globalManager.offsetCommits.Inc()
}

// RecordCommitError increments the failed commits counter.
func RecordCommitError() {
	globalManager.commitErrors.Inc()
}

// RecordFetchError increments the failed fetches counter.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
