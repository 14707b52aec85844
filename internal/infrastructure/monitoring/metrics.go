package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session lifecycle metrics
	OpenAttempts    *prometheus.CounterVec
	OpenDuration    *prometheus.HistogramVec
	Redirects       prometheus.Counter
	SessionsRemoved prometheus.Counter
	UsageErrors     prometheus.Counter

	// Transport metrics
	RemoteCalls       *prometheus.CounterVec
	FeedSubscriptions prometheus.Gauge

	// Registry metrics
	ViewsRegistered prometheus.Gauge
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		OpenAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_open_attempts_total",
				Help: "Settled session open attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		OpenDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_open_duration_seconds",
				Help:    "Time from issuing an open call to its result",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		Redirects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_redirects_total",
				Help: "Token opens redirected to an owned grain",
			},
		),
		SessionsRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_sessions_removed_total",
				Help: "Sessions torn down by the server while a view watched them",
			},
		),
		UsageErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_usage_errors_total",
				Help: "Operations rejected because the view was in the wrong state",
			},
		),

		RemoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_remote_calls_total",
				Help: "Remote session calls by method and status code",
			},
			[]string{"method", "code"},
		),
		FeedSubscriptions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_feed_subscriptions",
				Help: "Live session feed subscriptions",
			},
		),

		ViewsRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_views_registered",
				Help: "Views currently in the registry",
			},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOpen records a settled open attempt
func (m *Metrics) RecordOpen(kind, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OpenAttempts.WithLabelValues(kind, result).Inc()
	m.OpenDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRedirect records a token open that redirected to an owned grain
func (m *Metrics) RecordRedirect() {
	if m == nil {
		return
	}
	m.Redirects.Inc()
}

// RecordSessionRemoved records a remote session teardown
func (m *Metrics) RecordSessionRemoved() {
	if m == nil {
		return
	}
	m.SessionsRemoved.Inc()
}

// RecordUsageError records a rejected operation
func (m *Metrics) RecordUsageError() {
	if m == nil {
		return
	}
	m.UsageErrors.Inc()
}

// RecordRemoteCall records one remote session call
func (m *Metrics) RecordRemoteCall(method, code string) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(method, code).Inc()
}

// IncFeedSubscriptions increments live feed subscriptions
func (m *Metrics) IncFeedSubscriptions() {
	if m == nil {
		return
	}
	m.FeedSubscriptions.Inc()
}

// DecFeedSubscriptions decrements live feed subscriptions
func (m *Metrics) DecFeedSubscriptions() {
	if m == nil {
		return
	}
	m.FeedSubscriptions.Dec()
}

// SetViewsRegistered sets the number of registered views
func (m *Metrics) SetViewsRegistered(count int) {
	if m == nil {
		return
	}
	m.ViewsRegistered.Set(float64(count))
}
