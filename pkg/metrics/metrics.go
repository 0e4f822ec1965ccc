package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its registry so several instances can coexist in one
// process (tests build one per server). All methods accept a nil receiver.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	PatientsCreatedTotal   prometheus.Counter
	HistoryEditsTotal      *prometheus.CounterVec
	OdontogramEditsTotal   *prometheus.CounterVec
	ReviewTransitionsTotal *prometheus.CounterVec
	ExportsTotal           prometheus.Counter
	AuthAttemptsTotal      *prometheus.CounterVec

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	ns := strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		PatientsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "patients_created_total",
			Help:      "Total number of patient records created.",
		}),

		HistoryEditsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "history_edits_total",
			Help:      "Clinical history edits by kind (field, note_add, note_delete).",
		}, []string{"kind"}),

		OdontogramEditsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "odontogram_edits_total",
			Help:      "Odontogram edits by kind (surface, missing).",
		}, []string{"kind"}),

		ReviewTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "review_transitions_total",
			Help:      "Review workflow transitions by action and outcome.",
		}, []string{"action", "outcome"}),

		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "exports_total",
			Help:      "Total clinical history documents exported.",
		}),

		AuthAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by operation and result.",
		}, []string{"operation", "result"}),

		AuditEntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) ObserveRequest(method, path, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(method, path, status).Inc()
	c.RequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

func (c *Collector) RequestStarted() {
	if c != nil {
		c.InFlightGauge.Inc()
	}
}

func (c *Collector) RequestFinished() {
	if c != nil {
		c.InFlightGauge.Dec()
	}
}

func (c *Collector) PatientCreated() {
	if c != nil {
		c.PatientsCreatedTotal.Inc()
	}
}

func (c *Collector) HistoryEdited(kind string) {
	if c != nil {
		c.HistoryEditsTotal.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) OdontogramEdited(kind string) {
	if c != nil {
		c.OdontogramEditsTotal.WithLabelValues(kind).Inc()
	}
}

// ReviewTransition records a workflow action; outcome is "ok" or an error
// class such as "invalid_transition".
func (c *Collector) ReviewTransition(action, outcome string) {
	if c != nil {
		c.ReviewTransitionsTotal.WithLabelValues(action, outcome).Inc()
	}
}

func (c *Collector) Exported() {
	if c != nil {
		c.ExportsTotal.Inc()
	}
}

func (c *Collector) AuthAttempt(operation, result string) {
	if c != nil {
		c.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
	}
}

func (c *Collector) AuditWritten() {
	if c != nil {
		c.AuditEntriesTotal.Inc()
	}
}

func (c *Collector) AuditDropped() {
	if c != nil {
		c.AuditBufferDropped.Inc()
	}
}
