package api

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects server metrics. Counters are kept twice: as atomics for the
// JSON /metricz snapshot and as Prometheus collectors for /metrics. Each
// Metrics owns its registry so several servers can coexist in one process.
type Metrics struct {
	startTime    time.Time
	requests     atomic.Int64
	serverErrors atomic.Int64
	clientErrors atomic.Int64
	conflicts    atomic.Int64
	mutations    atomic.Int64
	activity     atomic.Int64

	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	mutationsTotal  *prometheus.CounterVec
	conflictsTotal  *prometheus.CounterVec
	activityTotal   *prometheus.CounterVec
}

// MetricsSnapshot is a point-in-time view of server metrics.
type MetricsSnapshot struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Requests         int64   `json:"requests"`
	ServerErrors     int64   `json:"server_errors"`
	ClientErrors     int64   `json:"client_errors"`
	Conflicts        int64   `json:"conflicts"`
	ContactMutations int64   `json:"contact_mutations"`
	ActivityAppended int64   `json:"activity_appended"`
}

// NewMetrics creates a new Metrics instance with the current time as start.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),
		registry:  reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rolo_store",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rolo_store",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method"}),
		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rolo_store",
			Subsystem: "contacts",
			Name:      "mutations_total",
			Help:      "Committed contact mutations by operation",
		}, []string{"op"}),
		conflictsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rolo_store",
			Subsystem: "contacts",
			Name:      "conflicts_total",
			Help:      "Writes rejected by a uniqueness constraint, by field",
		}, []string{"field"}),
		activityTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rolo_store",
			Subsystem: "activity",
			Name:      "appended_total",
			Help:      "Activity log entries appended by action",
		}, []string{"action"}),
	}
}

// RecordRequest records one finished request.
func (m *Metrics) RecordRequest(method string, code int, dur time.Duration) {
	m.requests.Add(1)
	switch {
	case code >= 500:
		m.serverErrors.Add(1)
	case code >= 400:
		m.clientErrors.Add(1)
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(dur.Seconds())
}

// RecordMutation counts a committed contact write.
func (m *Metrics) RecordMutation(op string) {
	m.mutations.Add(1)
	m.mutationsTotal.WithLabelValues(op).Inc()
}

// RecordConflict counts a uniqueness rejection on field.
func (m *Metrics) RecordConflict(field string) {
	m.conflicts.Add(1)
	m.conflictsTotal.WithLabelValues(field).Inc()
}

// RecordActivity counts an appended activity entry.
func (m *Metrics) RecordActivity(action string) {
	m.activity.Add(1)
	m.activityTotal.WithLabelValues(action).Inc()
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UptimeSeconds:    time.Since(m.startTime).Seconds(),
		Requests:         m.requests.Load(),
		ServerErrors:     m.serverErrors.Load(),
		ClientErrors:     m.clientErrors.Load(),
		Conflicts:        m.conflicts.Load(),
		ContactMutations: m.mutations.Load(),
		ActivityAppended: m.activity.Load(),
	}
}
