// Package metrics exposes Prometheus counters for chart rendering and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render outcomes.
const (
	OutcomeRendered   = "rendered"
	OutcomeSuppressed = "suppressed"
	OutcomeFailed     = "failed"
	OutcomeCached     = "cached"
)

const namespace = "painel"

// Option applies a configuration option to the Metrics.
type Option func(*Metrics)

// WithRegistry registers the metrics on reg instead of a fresh private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Metrics) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Metrics) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// Metrics holds every collector of the service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	renders             *prometheus.CounterVec
	markersDropped      prometheus.Counter
	budgetAlerts        *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them.
func New(opts ...Option) *Metrics {
	m := &Metrics{namespace: namespace}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)

	m.renders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "chart",
		Name:      "renders_total",
		Help:      "Chart render attempts by chart kind and outcome",
	}, []string{"kind", "outcome"})

	m.markersDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "chart",
		Name:      "markers_dropped_total",
		Help:      "Measurement events whose date matched no point of the series",
	})

	m.budgetAlerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "budget",
		Name:      "alerts_total",
		Help:      "Budget overrun alerts by delivery result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRender(kind, outcome string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordMarkersDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.markersDropped.Add(float64(n))
}

func (m *Metrics) RecordBudgetAlert(result string) {
	if m == nil {
		return
	}
	m.budgetAlerts.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
