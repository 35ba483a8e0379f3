// Package metrics provides Prometheus metrics for the shiftboard engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// POS fetch metrics
	ordersFetched      prometheus.Counter
	ordersDiscarded    *prometheus.CounterVec
	orderPagesFetched  prometheus.Counter
	laborEntriesLoaded prometheus.Counter
	laborFetchFailures prometheus.Counter
	tokenRefreshes     prometheus.Counter

	// Attribution metrics
	transactionsAttributed prometheus.Counter
	transactionsNoLeader   prometheus.Counter
	daysSkipped            *prometheus.CounterVec

	// Sync metrics
	syncRuns     *prometheus.CounterVec
	syncDuration prometheus.Histogram

	// Queue metrics
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueues  prometheus.Counter
	queueDequeues  prometheus.Counter
	queueErrors    prometheus.Counter
	workerErrors   prometheus.Counter
	workerDuration prometheus.Histogram

	// Store metrics
	storedOrders prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shiftboard",
		subsystem:        "attribution",
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

	m.ordersFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "orders_fetched_total",
		Help:      "Total number of closed transactions fetched from the point of sale",
	})

	m.ordersDiscarded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "orders_discarded_total",
			Help:      "Total number of transactions discarded during fetch by reason",
		},
		[]string{"reason"},
	)

	m.orderPagesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "order_pages_fetched_total",
		Help:      "Total number of order listing pages requested",
	})

	m.laborEntriesLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "labor_entries_loaded_total",
		Help:      "Total number of attendance records loaded from the point of sale",
	})

	m.laborFetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "labor_fetch_failures_total",
		Help:      "Total number of failed labor fetches (days skipped downstream)",
	})

	m.tokenRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "token_refreshes_total",
		Help:      "Total number of bearer token exchanges performed",
	})

	m.transactionsAttributed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transactions_attributed_total",
		Help:      "Total number of transactions assigned to an on-duty leader",
	})

	m.transactionsNoLeader = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transactions_no_leader_total",
		Help:      "Total number of transactions dropped because no leader was on duty",
	})

	m.daysSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "days_skipped_total",
			Help:      "Total number of business dates skipped during attribution by reason",
		},
		[]string{"reason"},
	)

	m.syncRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sync_runs_total",
			Help:      "Total number of attribution sync runs by outcome",
		},
		[]string{"outcome"},
	)

	m.syncDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_duration_seconds",
		Help:      "Duration of attribution sync runs in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_queue_size",
		Help:      "Current number of queued sync jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_queue_capacity",
		Help:      "Configured capacity of the sync job queue",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_queue_enqueues_total",
		Help:      "Total number of sync jobs enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_queue_dequeues_total",
		Help:      "Total number of sync jobs dequeued by workers",
	})

	m.queueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_queue_errors_total",
		Help:      "Total number of rejected enqueues (closed or full queue)",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_worker_errors_total",
		Help:      "Total number of sync jobs that failed in a worker",
	})

	m.workerDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_worker_duration_seconds",
		Help:      "Duration of sync job execution in workers in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.storedOrders = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attributed_orders_stored",
		Help:      "Current number of attributed orders held by the store",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Fetch metrics functions.

// RecordOrdersFetched adds to the fetched transaction counter.
func RecordOrdersFetched(n int) {
	globalManager.ordersFetched.Add(float64(n))
}

// RecordOrderDiscarded increments the discard counter for a reason
// ("voided", "not_closed", "negative_turn_time", "turn_time_ceiling").
func RecordOrderDiscarded(reason string) {
	globalManager.ordersDiscarded.WithLabelValues(reason).Inc()
}

// RecordOrderPageFetched increments the page counter.
func RecordOrderPageFetched() {
	globalManager.orderPagesFetched.Inc()
}

// RecordLaborEntriesLoaded adds to the attendance record counter.
func RecordLaborEntriesLoaded(n int) {
	globalManager.laborEntriesLoaded.Add(float64(n))
}

// RecordLaborFetchFailure increments the labor failure counter.
func RecordLaborFetchFailure() {
	globalManager.laborFetchFailures.Inc()
}

// RecordTokenRefresh increments the token exchange counter.
func RecordTokenRefresh() {
	globalManager.tokenRefreshes.Inc()
}

// Attribution metrics functions.

// RecordTransactionAttributed increments the attributed transaction counter.
func RecordTransactionAttributed() {
	globalManager.transactionsAttributed.Inc()
}

// RecordTransactionNoLeader increments the no-leader drop counter.
func RecordTransactionNoLeader() {
	globalManager.transactionsNoLeader.Inc()
}

// RecordDaySkipped increments the skipped-day counter for a reason
// ("no_attendance", "fetch_error").
func RecordDaySkipped(reason string) {
	globalManager.daysSkipped.WithLabelValues(reason).Inc()
}

// Sync metrics functions.

// RecordSyncRun records a completed sync run with an outcome ("ok", "error").
func RecordSyncRun(outcome string) {
	globalManager.syncRuns.WithLabelValues(outcome).Inc()
}

// RecordSyncDuration records the duration of a sync run in seconds.
func RecordSyncDuration(seconds float64) {
	globalManager.syncDuration.Observe(seconds)
}

// Queue metrics functions.

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueError increments the rejected-enqueue counter.
func RecordQueueError() {
	globalManager.queueErrors.Inc()
}

// RecordWorkerError increments the failed-job counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerDuration records sync job execution time in seconds.
func RecordWorkerDuration(seconds float64) {
	globalManager.workerDuration.Observe(seconds)
}

// Store metrics functions.

// UpdateStoredOrders sets the current attributed order count in the store.
func UpdateStoredOrders(n int) {
	globalManager.storedOrders.Set(float64(n))
}

// HTTP metrics functions.

// RecordHTTPRequest records a request with endpoint, method and status labels.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
