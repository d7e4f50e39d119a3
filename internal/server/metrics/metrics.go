// Package metrics holds the Prometheus collectors of the auth server. All
// Record* methods are no-ops on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for workflow operations.
const (
	OutcomeSuccess            = "success"
	OutcomeDuplicateEmail     = "duplicate_email"
	OutcomeNotFound           = "not_found"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeEmailNotConfirmed  = "email_not_confirmed"
	OutcomeTimeout            = "timeout"
	OutcomeError              = "error"
)

// Metrics contains the auth server's collectors, registered on a private
// registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	OperationsTotal      *prometheus.CounterVec
	NotificationFailures prometheus.Counter
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmate_auth_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookmate_auth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmate_auth_operations_total",
				Help: "Total number of auth workflow operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		NotificationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmate_auth_notification_failures_total",
				Help: "Confirmation messages that could not be delivered after the account was stored",
			},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.OperationsTotal,
		m.NotificationFailures,
	)

	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest counts one HTTP request and observes its duration.
func (m *Metrics) RecordRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordOperation counts one workflow operation.
//   - operation: "register", "confirm_email" or "login"
//   - outcome: one of the Outcome* constants
func (m *Metrics) RecordOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordNotificationFailure counts a confirmation message that failed to send.
func (m *Metrics) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.NotificationFailures.Inc()
}
