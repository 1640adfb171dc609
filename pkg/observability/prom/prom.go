// Package prom implements the observability hooks with Prometheus metrics.
//
// Metrics live on a private registry so that embedding applications control
// what is exposed; [Metrics.Handler] serves that registry.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/observability"
)

// Metrics collects resolve, cache and HTTP metrics.
type Metrics struct {
	resolves        *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	templateIndex   *prometheus.HistogramVec
	validations     *prometheus.CounterVec
	validationDelta *prometheus.HistogramVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	_ observability.ResolveHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)

// New creates metrics under namespace on a fresh registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		resolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolves_total",
				Help:      "Surfaces resolved, by family and outcome code",
			},
			[]string{"family", "code"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolve_duration_seconds",
				Help:      "Time spent selecting a template",
				Buckets:   []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2},
			},
			[]string{"family"},
		),
		templateIndex: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "template_index",
				Help:      "Catalog position of the selected template",
				Buckets:   []float64{0, 1, 2, 3, 4},
			},
			[]string{"family"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Round-trip checks of realized assemblies, by outcome code",
			},
			[]string{"family", "code"},
		),
		validationDelta: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_delta_abs",
				Help:      "Absolute difference between realized and target R-value",
				Buckets:   []float64{1e-12, 1e-9, 1e-6, 1e-3, 1e-2, 1e-1},
			},
			[]string{"family"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache operations by key type and result",
			},
			[]string{"key_type", "op"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.resolves,
		m.resolveDuration,
		m.templateIndex,
		m.validations,
		m.validationDelta,
		m.cacheOps,
		m.cacheBytes,
		m.requests,
		m.requestDuration,
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Register installs m as the global resolve, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetResolveHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// OnResolve implements observability.ResolveHooks.
func (m *Metrics) OnResolve(_ context.Context, family, _ string, index int, d time.Duration, err error) {
	m.resolves.WithLabelValues(family, code(err)).Inc()
	m.resolveDuration.WithLabelValues(family).Observe(d.Seconds())
	if err == nil {
		m.templateIndex.WithLabelValues(family).Observe(float64(index))
	}
}

// OnValidate implements observability.ResolveHooks.
func (m *Metrics) OnValidate(_ context.Context, family string, delta float64, err error) {
	m.validations.WithLabelValues(family, code(err)).Inc()
	if delta < 0 {
		delta = -delta
	}
	m.validationDelta.WithLabelValues(family).Observe(delta)
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks. Requests are counted on
// completion, so this only exists to satisfy the interface.
func (m *Metrics) OnRequest(context.Context, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func code(err error) string {
	if err == nil {
		return "ok"
	}
	if c := errors.GetCode(err); c != "" {
		return string(c)
	}
	return "error"
}
