package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRequestsTotal       = "ranking_requests_total"
	MetricStageDuration       = "ranking_stage_duration_seconds"
	MetricCandidatesRetrieved = "ranking_candidates_retrieved"
	MetricCandidatesRanked    = "ranking_candidates_ranked"
	MetricRadiusAttempts      = "ranking_radius_attempts"
	MetricGateFailOpen        = "ranking_gate_fail_open_total"
	MetricEmptyFeeds          = "ranking_empty_feeds_total"
)

// Metrics contains Prometheus metrics for the ranking pipeline.
// All operations are thread-safe.
type Metrics struct {
	requestsTotal       *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec
	candidatesRetrieved prometheus.Histogram
	candidatesRanked    prometheus.Histogram
	radiusAttempts      prometheus.Histogram
	gateFailOpen        *prometheus.CounterVec
	emptyFeeds          prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all
// collectors initialized. The metrics are not registered; call Register
// to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRequestsTotal,
				Help: "Total number of ranking requests by outcome (ok, empty, error)",
			},
			[]string{"outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricStageDuration,
				Help:    "Duration of each ranking pipeline stage in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"stage"},
		),
		candidatesRetrieved: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCandidatesRetrieved,
				Help:    "Candidate pool size after retrieval",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
		),
		candidatesRanked: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCandidatesRanked,
				Help:    "Candidate pool size after gating, entering scoring",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
		),
		radiusAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRadiusAttempts,
				Help:    "Number of nearby-lookup attempts per request",
				Buckets: []float64{1, 2, 3, 4},
			},
		),
		gateFailOpen: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricGateFailOpen,
				Help: "Total number of gate lookups that failed open (degraded filtering)",
			},
			[]string{"gate"},
		),
		emptyFeeds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricEmptyFeeds,
				Help: "Total number of requests that produced an empty feed",
			},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.stageDuration,
		m.candidatesRetrieved,
		m.candidatesRanked,
		m.radiusAttempts,
		m.gateFailOpen,
		m.emptyFeeds,
	}
}

// IncRequests increments the request counter for an outcome.
func (m *Metrics) IncRequests(outcome string) {
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records the duration of one pipeline stage in seconds.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// ObserveRetrieval records the retrieval outcome for one request.
func (m *Metrics) ObserveRetrieval(candidates, attempts int) {
	m.candidatesRetrieved.Observe(float64(candidates))
	m.radiusAttempts.Observe(float64(attempts))
}

// ObserveRanked records the pool size entering scoring.
func (m *Metrics) ObserveRanked(candidates int) {
	m.candidatesRanked.Observe(float64(candidates))
}

// IncGateFailOpen increments the fail-open counter for a gate.
func (m *Metrics) IncGateFailOpen(gate string) {
	m.gateFailOpen.WithLabelValues(gate).Inc()
}

// IncEmptyFeeds increments the empty-feed counter.
func (m *Metrics) IncEmptyFeeds() {
	m.emptyFeeds.Inc()
}
