// Package metrics provides Prometheus metrics for the clinic service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	PatientsRegistered  prometheus.Counter
	QueueEntriesCreated prometheus.Counter
	PrescriptionsFilled prometheus.Counter
	PaymentsProcessed   prometheus.Counter
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		PatientsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_patients_registered_total",
			Help: "Total patients registered",
		}),
		QueueEntriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_queue_entries_total",
			Help: "Total queue entries created",
		}),
		PrescriptionsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_prescriptions_dispensed_total",
			Help: "Total prescriptions dispensed",
		}),
		PaymentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_payments_processed_total",
			Help: "Total invoice payments processed",
		}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.PatientsRegistered,
		m.QueueEntriesCreated,
		m.PrescriptionsFilled,
		m.PaymentsProcessed,
	)

	return m
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
