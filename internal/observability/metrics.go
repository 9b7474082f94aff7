package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the service's Prometheus collectors.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	emails        *prometheus.CounterVec
	demotedCalls  prometheus.Counter
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Error responses by route, method and domain error code.",
		}, []string{"route", "method", "code"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_written_total",
			Help: "Notification rows written by type and outcome.",
		}, []string{"type", "outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Outbound emails by outcome.",
		}, []string{"outcome"}),
		demotedCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calls_put_on_hold_total",
			Help: "Active calls moved to on-hold because a sibling call was activated.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.errors,
		m.notifications,
		m.emails,
		m.demotedCalls,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordNotification counts a notification write attempt.
func (m *Metrics) RecordNotification(notificationType string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notificationType, outcome(err)).Inc()
}

// RecordEmail counts an email delivery attempt.
func (m *Metrics) RecordEmail(err error) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(outcome(err)).Inc()
}

// RecordCallsOnHold counts calls demoted by an activation.
func (m *Metrics) RecordCallsOnHold(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.demotedCalls.Add(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
