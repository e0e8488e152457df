package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	PaymentsCreated          *prometheus.CounterVec
	PaymentsConfirmed        *prometheus.CounterVec
	WebhookSignatureFailures prometheus.Counter
	GatewayFallbacks         prometheus.Counter
}

// New creates and registers the service metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "In-flight HTTP requests.",
		}),
		PaymentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_created_total",
			Help: "Payments created by method.",
		}, []string{"method"}),
		PaymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Payment confirmations by method and resulting status.",
		}, []string{"method", "status"}),
		WebhookSignatureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webhook_signature_failures_total",
			Help: "Gateway webhooks rejected for a bad signature.",
		}),
		GatewayFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_simulated_fallbacks_total",
			Help: "Gateway payments served by the simulated fallback path.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.PaymentsCreated,
		m.PaymentsConfirmed,
		m.WebhookSignatureFailures,
		m.GatewayFallbacks,
	)
	return m
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
