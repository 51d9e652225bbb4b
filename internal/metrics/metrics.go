package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "varologs"

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	AIAttempts       *prometheus.CounterVec
	AIAttemptLatency *prometheus.HistogramVec
	AIResolutions    *prometheus.CounterVec
	AIConfigured     prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AIAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_attempts_total",
				Help:      "Model attempts by model and outcome (success, call, empty, parse, schema).",
			},
			[]string{"model", "outcome"},
		),
		AIAttemptLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_attempt_duration_seconds",
				Help:      "Duration of a single model attempt.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
			},
			[]string{"model"},
		),
		AIResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_resolutions_total",
				Help:      "Autocomplete resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		AIConfigured: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ai_configured",
				Help:      "1 when an AI client handle is installed.",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route pattern and status code.",
			},
			[]string{"route", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route pattern.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// AttemptFinished records one cascade attempt.
func (m *Metrics) AttemptFinished(model, outcome string, elapsed time.Duration) {
	m.AIAttempts.WithLabelValues(model, outcome).Inc()
	m.AIAttemptLatency.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ResolutionFinished records the outcome of a whole cascade.
func (m *Metrics) ResolutionFinished(outcome string) {
	m.AIResolutions.WithLabelValues(outcome).Inc()
}

// SetConfigured mirrors the credential manager's readiness.
func (m *Metrics) SetConfigured(ready bool) {
	if ready {
		m.AIConfigured.Set(1)
		return
	}
	m.AIConfigured.Set(0)
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}
