package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/flowgrid/pkg/observability"
)

const namespace = "flowgrid"

// Metrics holds the Prometheus collectors for the HTTP layer and the
// engine, cache and image-metrics hooks.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight *prometheus.GaugeVec

	layouts         *prometheus.CounterVec
	layoutDuration  *prometheus.HistogramVec
	placements      *prometheus.CounterVec
	itemsRejected   *prometheus.CounterVec
	resizeCoalesced prometheus.Counter

	cacheOps *prometheus.CounterVec

	resolves        *prometheus.CounterVec
	resolveDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "Duration of HTTP requests in seconds", Buckets: prometheus.DefBuckets,
		}, []string{"path", "method", "status"}),
		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "In-flight HTTP requests",
		}, []string{"path"}),

		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "layouts_total",
			Help: "Layout passes by strategy and result",
		}, []string{"strategy", "result"}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "engine", Name: "layout_duration_seconds",
			Help:    "Duration of layout passes in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"strategy"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "placements_total",
			Help: "Placements produced by successful layout passes",
		}, []string{"strategy"}),
		itemsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "items_rejected_total",
			Help: "Items dropped from a layout, by error code",
		}, []string{"code"}),
		resizeCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "resizes_coalesced_total",
			Help: "Resize requests superseded inside the debounce window",
		}),

		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "operations_total",
			Help: "Cache operations by key type and outcome",
		}, []string{"key_type", "op"}),

		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "metrics", Name: "resolves_total",
			Help: "Image metrics resolutions by result",
		}, []string{"result"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "metrics", Name: "resolve_duration_seconds",
			Help: "Duration of image metrics resolutions in seconds", Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.httpInflight,
		m.layouts, m.layoutDuration, m.placements, m.itemsRejected, m.resizeCoalesced,
		m.cacheOps,
		m.resolves, m.resolveDuration,
	)
	return m
}

// Install registers m as the global engine, cache and metrics hooks.
func (m *Metrics) Install() {
	observability.SetEngineHooks(engineHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
	observability.SetMetricsHooks(resolveHooks{m})
}

// =============================================================================
// HTTP middleware
// =============================================================================

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware instruments requests. The route is labeled by its chi pattern
// once routing has matched, so path parameters never reach label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)

		path := routePatternOrPath(r)
		status := strconv.Itoa(sr.status)
		m.httpRequests.WithLabelValues(path, r.Method, status).Inc()
		m.httpDuration.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// Inflight tracks concurrent requests per raw path.
func (m *Metrics) Inflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := m.httpInflight.WithLabelValues(r.URL.Path)
		g.Inc()
		defer g.Dec()
		next.ServeHTTP(w, r)
	})
}

func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// =============================================================================
// Hook implementations
// =============================================================================

type engineHooks struct{ m *Metrics }

func (engineHooks) OnLayoutStart(context.Context, string, int) {}

func (h engineHooks) OnLayoutComplete(_ context.Context, strategy string, placed int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.m.layouts.WithLabelValues(strategy, result).Inc()
	h.m.layoutDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if err == nil {
		h.m.placements.WithLabelValues(strategy).Add(float64(placed))
	}
}

func (h engineHooks) OnItemRejected(_ context.Context, code string) {
	h.m.itemsRejected.WithLabelValues(code).Inc()
}

func (h engineHooks) OnResizeCoalesced(context.Context) {
	h.m.resizeCoalesced.Inc()
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

type resolveHooks struct{ m *Metrics }

func (h resolveHooks) OnResolve(_ context.Context, _ string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.m.resolves.WithLabelValues(result).Inc()
	h.m.resolveDuration.Observe(d.Seconds())
}

var (
	_ observability.EngineHooks  = engineHooks{}
	_ observability.CacheHooks   = cacheHooks{}
	_ observability.MetricsHooks = resolveHooks{}
)
