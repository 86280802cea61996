package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for transactions and the
// connection pool.
type DatastoreMetrics struct {
	transactionsTotal     *prometheus.CounterVec
	transactionDuration   *prometheus.HistogramVec
	transactionErrors     *prometheus.CounterVec
	lockContentionTotal   *prometheus.CounterVec
	connectionsOpenGauge  prometheus.Gauge
	connectionsInUseGauge prometheus.Gauge
	connectionsIdleGauge  prometheus.Gauge
	connectionsMaxGauge   prometheus.Gauge

	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers datastore metrics.
func NewDatastoreMetrics(registry prometheus.Registerer) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() {
	m.transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_transactions_total",
			Help: "Total number of database transactions",
		},
		[]string{"status"}, // committed, rollback
	)

	m.transactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_db_transaction_duration_seconds",
			Help:    "Time taken for database transactions",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"status"},
	)

	m.transactionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_transaction_errors_total",
			Help: "Total number of failed transactions by error type",
		},
		[]string{"error_type"},
	)

	m.lockContentionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_lock_contention_total",
			Help: "Lock waits that ended in a timeout or deadlock",
		},
		[]string{"reason"}, // lock_timeout, deadlock
	)

	m.connectionsOpenGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_db_connections_open",
		Help: "Number of open database connections",
	})
	m.connectionsInUseGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_db_connections_in_use",
		Help: "Number of database connections in use",
	})
	m.connectionsIdleGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_db_connections_idle",
		Help: "Number of idle database connections",
	})
	m.connectionsMaxGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_db_connections_max",
		Help: "Maximum number of open database connections",
	})

	m.collectors = []prometheus.Collector{
		m.transactionsTotal,
		m.transactionDuration,
		m.transactionErrors,
		m.lockContentionTotal,
		m.connectionsOpenGauge,
		m.connectionsInUseGauge,
		m.connectionsIdleGauge,
		m.connectionsMaxGauge,
	}
}

// Describe implements prometheus.Collector.
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordTransaction records a finished transaction.
func (m *DatastoreMetrics) RecordTransaction(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.transactionsTotal.WithLabelValues(status).Inc()
	m.transactionDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordTransactionError records why a transaction failed.
func (m *DatastoreMetrics) RecordTransactionError(errorType string) {
	if m == nil {
		return
	}
	m.transactionErrors.WithLabelValues(errorType).Inc()
}

// RecordLockContention records a lock wait that did not succeed.
func (m *DatastoreMetrics) RecordLockContention(reason string) {
	if m == nil {
		return
	}
	m.lockContentionTotal.WithLabelValues(reason).Inc()
}

// UpdateConnectionMetrics updates the pool gauges.
func (m *DatastoreMetrics) UpdateConnectionMetrics(open, inUse, idle, maxOpen int) {
	if m == nil {
		return
	}
	m.connectionsOpenGauge.Set(float64(open))
	m.connectionsInUseGauge.Set(float64(inUse))
	m.connectionsIdleGauge.Set(float64(idle))
	m.connectionsMaxGauge.Set(float64(maxOpen))
}
