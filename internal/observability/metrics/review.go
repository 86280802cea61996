package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReviewMetrics contains Prometheus metrics for lease and classification operations.
type ReviewMetrics struct {
	acquisitionsTotal *prometheus.CounterVec
	commitsTotal      *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	candidatesTried   prometheus.Histogram
	leaseContention   prometheus.Counter
	historyQueries    *prometheus.CounterVec
	itemsRegistered   *prometheus.CounterVec
	directoryLookups  *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewReviewMetrics creates and registers review metrics.
func NewReviewMetrics(registry prometheus.Registerer) (*ReviewMetrics, error) {
	m := &ReviewMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ReviewMetrics) initMetrics() {
	m.acquisitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_acquisitions_total",
			Help: "Total number of acquire calls by outcome",
		},
		[]string{"outcome"}, // leased, resumed, no_item, vanished, error
	)

	m.commitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_commits_total",
			Help: "Total number of classification commits by outcome",
		},
		[]string{"outcome"}, // committed, conflict, not_found, lock_timeout, error
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_operation_duration_seconds",
			Help:    "Time taken by review operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.candidatesTried = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_acquire_candidates_tried",
			Help:    "Number of candidate rows examined per acquire",
			Buckets: prometheus.LinearBuckets(1, 1, BucketCount8),
		},
	)

	m.leaseContention = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_lease_contention_total",
			Help: "Candidates lost to a concurrent reviewer during acquire",
		},
	)

	m.historyQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_history_queries_total",
			Help: "Total number of history page queries",
		},
		[]string{"status"},
	)

	m.itemsRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_items_registered_total",
			Help: "Total number of item registrations by outcome",
		},
		[]string{"outcome"},
	)

	m.directoryLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_category_lookups_total",
			Help: "Category directory lookups by cache result",
		},
		[]string{"result"}, // hit, miss
	)

	m.collectors = []prometheus.Collector{
		m.acquisitionsTotal,
		m.commitsTotal,
		m.operationDuration,
		m.candidatesTried,
		m.leaseContention,
		m.historyQueries,
		m.itemsRegistered,
		m.directoryLookups,
	}
}

// Describe implements prometheus.Collector.
func (m *ReviewMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *ReviewMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// All Record methods are safe to call on a nil receiver so callers can run
// without a metrics registry.

// RecordAcquire records an acquire outcome, its duration and candidate count.
func (m *ReviewMetrics) RecordAcquire(outcome string, candidates int, d time.Duration) {
	if m == nil {
		return
	}
	m.acquisitionsTotal.WithLabelValues(outcome).Inc()
	m.operationDuration.WithLabelValues(OpAcquire).Observe(d.Seconds())
	if candidates > 0 {
		m.candidatesTried.Observe(float64(candidates))
	}
}

// RecordLeaseContention counts a candidate lost to another reviewer.
func (m *ReviewMetrics) RecordLeaseContention() {
	if m == nil {
		return
	}
	m.leaseContention.Inc()
}

// RecordCommit records a commit outcome and duration.
func (m *ReviewMetrics) RecordCommit(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(outcome).Inc()
	m.operationDuration.WithLabelValues(OpCommit).Observe(d.Seconds())
}

// RecordHistoryQuery records a history page query.
func (m *ReviewMetrics) RecordHistoryQuery(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.historyQueries.WithLabelValues(status).Inc()
	m.operationDuration.WithLabelValues(OpHistory).Observe(d.Seconds())
}

// RecordRegistration records an item registration outcome.
func (m *ReviewMetrics) RecordRegistration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.itemsRegistered.WithLabelValues(outcome).Inc()
	m.operationDuration.WithLabelValues(OpRegister).Observe(d.Seconds())
}

// RecordDirectoryLookup records a category cache hit or miss.
func (m *ReviewMetrics) RecordDirectoryLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.directoryLookups.WithLabelValues(result).Inc()
}
