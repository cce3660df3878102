// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "dispatch"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	boardBuilds   *prometheus.CounterVec
	boardCards    prometheus.Histogram
	bufferedOps   *prometheus.CounterVec
	bufferDrained *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		boardBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_builds_total",
			Help:      "Board views built, by grouping mode and freshness",
		}, []string{"mode", "source"}),
		boardCards: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "board_cards",
			Help:      "Cards rendered per board view",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		bufferedOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffered_operations_total",
			Help:      "Operations queued in the offline buffer",
		}, []string{"entity", "operation"}),
		bufferDrained: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffer_drained_total",
			Help:      "Buffered operations replayed, by result",
		}, []string{"result"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache name and outcome",
		}, []string{"cache", "outcome"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveBoard records one board build. source is "live" or "stale".
func (m *Metrics) ObserveBoard(mode, source string, cards int) {
	if m == nil {
		return
	}
	m.boardBuilds.WithLabelValues(mode, source).Inc()
	m.boardCards.Observe(float64(cards))
}

func (m *Metrics) IncBuffered(entity, operation string) {
	if m == nil {
		return
	}
	m.bufferedOps.WithLabelValues(entity, operation).Inc()
}

// IncDrained counts a replayed buffer item. result is "ok", "retry" or "dropped".
func (m *Metrics) IncDrained(result string) {
	if m == nil {
		return
	}
	m.bufferDrained.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCache(cache, outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	if m == nil {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware times every request handled by next.
func (m *Metrics) Middleware(route string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if m == nil {
		return next
	}
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		m.ObserveHTTP(string(ctx.Method()), route, ctx.Response.StatusCode(), time.Since(start))
	}
}
