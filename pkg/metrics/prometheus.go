package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	circuitState     *prometheus.GaugeVec
	rateLimitDrops   *prometheus.CounterVec
	executions       *prometheus.CounterVec
	openPositions    prometheus.Gauge
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aaiti_provider_requests_total",
				Help: "Total provider call attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aaiti_provider_latency_seconds",
				Help:    "Provider call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aaiti_cache_hits_total",
				Help: "Aggregation cache hits by request kind",
			},
			[]string{"kind"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aaiti_cache_misses_total",
				Help: "Aggregation cache misses by request kind",
			},
			[]string{"kind"},
		),
		circuitState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aaiti_circuit_state",
				Help: "Circuit breaker state per provider (0=closed, 1=open, 2=half_open)",
			},
			[]string{"provider"},
		),
		rateLimitDrops: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aaiti_rate_limit_drops_total",
				Help: "Provider skips due to exhausted rate budget",
			},
			[]string{"provider"},
		),
		executions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aaiti_executions_total",
				Help: "Signal executions by outcome",
			},
			[]string{"outcome"},
		),
		openPositions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "aaiti_open_positions",
				Help: "Number of currently open positions",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aaiti_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderRequest records one provider call attempt.
func (r *Recorder) RecordProviderRequest(providerID string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.providerRequests.WithLabelValues(providerID, outcome).Inc()
}

// RecordProviderLatency records provider call latency in seconds.
func (r *Recorder) RecordProviderLatency(providerID string, seconds float64) {
	r.providerLatency.WithLabelValues(providerID).Observe(seconds)
}

// RecordCacheHit records an aggregation cache hit.
func (r *Recorder) RecordCacheHit(kind string) {
	r.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records an aggregation cache miss.
func (r *Recorder) RecordCacheMiss(kind string) {
	r.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordCircuitState records a provider's breaker state.
func (r *Recorder) RecordCircuitState(providerID string, state int) {
	r.circuitState.WithLabelValues(providerID).Set(float64(state))
}

// RecordRateLimitDrop records a skip due to rate budget exhaustion.
func (r *Recorder) RecordRateLimitDrop(providerID string) {
	r.rateLimitDrops.WithLabelValues(providerID).Inc()
}

// RecordExecution records a signal execution outcome.
func (r *Recorder) RecordExecution(outcome string) {
	r.executions.WithLabelValues(outcome).Inc()
}

// RecordOpenPositions records the open position count.
func (r *Recorder) RecordOpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
