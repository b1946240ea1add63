// Package metrics provides Prometheus metrics for the FIRE scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the FIRE service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core Business Metrics
	scoreRequests     prometheus.Counter
	playersScored     prometheus.Counter
	eligiblePlayers   *prometheus.GaugeVec
	scoringDuration   prometheus.Histogram
	deltaSignals      *prometheus.CounterVec
	weightRedistMeter prometheus.Counter

	// Data Quality Metrics
	dataGaps          *prometheus.CounterVec
	computationErrors *prometheus.CounterVec

	// Fact Store Metrics
	factStoreQueryLatency prometheus.Histogram
	factRowsFetched       prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fire",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoreRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_requests_total",
		Help:      "Total number of score computations requested",
	})

	m.playersScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_scored_total",
		Help:      "Total number of player scores computed",
	})

	m.eligiblePlayers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eligible_players",
		Help:      "Eligible pool size from the most recent request, per position",
	}, []string{"position"})

	m.scoringDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_duration_milliseconds",
		Help:      "Histogram of full scoring pipeline duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.deltaSignals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_signals_total",
		Help:      "Total number of delta signals generated, per direction",
	}, []string{"direction"})

	m.weightRedistMeter = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "role_weight_redistributions_total",
		Help:      "Total number of role blends that renormalized around a missing source",
	})

	m.dataGaps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "data_gaps_total",
		Help:      "Total number of empty upstream pools encountered, per position",
	}, []string{"position"})

	m.computationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computation_errors_total",
		Help:      "Total number of unexpected computation states, per position",
	}, []string{"position"})

	m.factStoreQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fact_store_query_milliseconds",
		Help:      "Histogram of fact store batch query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.factRowsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fact_rows_fetched_total",
		Help:      "Total number of weekly fact rows fetched from the store",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers against the global manager.

// RecordScoreRequest counts one scoring pipeline run.
func RecordScoreRequest() {
	globalManager.scoreRequests.Inc()
}

// RecordPlayersScored counts scored players.
func RecordPlayersScored(n int) {
	globalManager.playersScored.Add(float64(n))
}

// UpdateEligiblePlayers records the eligible pool size for a position.
func UpdateEligiblePlayers(position string, n int) {
	globalManager.eligiblePlayers.WithLabelValues(position).Set(float64(n))
}

// RecordScoringDuration records one pipeline duration.
func RecordScoringDuration(ms float64) {
	globalManager.scoringDuration.Observe(ms)
}

// RecordDeltaSignal counts one generated delta signal.
func RecordDeltaSignal(direction string) {
	globalManager.deltaSignals.WithLabelValues(direction).Inc()
}

// RecordWeightRedistribution counts one role blend renormalization.
func RecordWeightRedistribution() {
	globalManager.weightRedistMeter.Inc()
}

// RecordDataGap counts one empty upstream pool.
func RecordDataGap(position string) {
	globalManager.dataGaps.WithLabelValues(position).Inc()
}

// RecordComputationError counts one unexpected computation state.
func RecordComputationError(position string) {
	globalManager.computationErrors.WithLabelValues(position).Inc()
}

// RecordFactStoreQueryLatency records one batch query duration.
func RecordFactStoreQueryLatency(ms float64) {
	globalManager.factStoreQueryLatency.Observe(ms)
}

// RecordFactRowsFetched counts fetched fact rows.
func RecordFactRowsFetched(n int) {
	globalManager.factRowsFetched.Add(float64(n))
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateSystemMemoryUsage records current heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount records the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
