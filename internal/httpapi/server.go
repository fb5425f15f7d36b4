// Package httpapi serves one-shot layout computations over HTTP.
//
// Routes:
//
//	POST /v1/layout      compute placements for an item list
//	GET  /v1/strategies  list the available strategies
//	GET  /healthz        liveness probe
//	GET  /metrics        Prometheus metrics
//
// Each layout request runs a fresh engine with no resize debouncing and no
// image-metrics resolver: items must declare an aspect ratio or a pixel
// size, and items that do not are reported back as LOAD_FAILED. Identical
// requests are answered from a response cache and marked with the
// X-Flowgrid-Cache: hit header.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/config"
	"github.com/matzehuels/flowgrid/pkg/engine"
	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

const (
	// DefaultMaxBodyBytes bounds the request body of POST /v1/layout.
	DefaultMaxBodyBytes int64 = 4 << 20

	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// DefaultCacheEntries bounds the in-process response cache.
	DefaultCacheEntries = 1024

	// responseTTL is how long a cached layout response is served.
	responseTTL = 10 * time.Minute

	// cacheHeader marks responses served from the cache.
	cacheHeader = "X-Flowgrid-Cache"

	shutdownTimeout = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	// Logger receives request and lifecycle logs. Nil discards them.
	Logger *log.Logger

	// Defaults is the configuration used for requests that carry none.
	Defaults config.File

	// MaxBodyBytes bounds request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Registry collects the server's metrics. Nil creates a private
	// registry with the Go and process collectors.
	Registry *prometheus.Registry

	// Cache stores layout responses. Nil uses a bounded in-process cache
	// of DefaultCacheEntries entries.
	Cache cache.Cache
}

// Server is the HTTP layout service.
type Server struct {
	logger   *log.Logger
	defaults config.File
	maxBody  int64
	registry *prometheus.Registry
	metrics  *Metrics
	cache    cache.Cache
	keyer    cache.Keyer
	router   chi.Router
}

// New validates the default configuration and builds the router.
func New(cfg Config) (*Server, error) {
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		logger:   cfg.Logger,
		defaults: cfg.Defaults,
		maxBody:  cfg.MaxBodyBytes,
		registry: cfg.Registry,
		cache:    cfg.Cache,
		keyer:    cache.NewScopedKeyer(cache.NewDefaultKeyer(), "http:"),
	}
	if s.cache == nil {
		s.cache = cache.NewBoundedMemoryCache(DefaultCacheEntries)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	s.metrics = NewMetrics(s.registry)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Inflight)
	r.Use(s.metrics.Middleware)
	r.Use(s.logRequests)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/strategies", s.handleStrategies)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"dur", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	// Strategy overrides the configured strategy.
	Strategy string `json:"strategy,omitempty"`

	// Width is the container width; required.
	Width float64 `json:"width"`

	// ViewportHeight feeds fit-screen layouts.
	ViewportHeight float64 `json:"viewport_height,omitempty"`

	// Config replaces the server's default configuration for this request.
	Config *config.File `json:"config,omitempty"`

	Items []item.Input `json:"items"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	layout.Result
	Errors []ErrorBody `json:"errors"`
}

// ErrorBody is the JSON shape of an error, both for whole-request failures
// and for the per-item entries of LayoutResponse.Errors.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, errors.New(errors.ErrCodeInvalidInput, "Content-Type must be application/json"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req LayoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return
	}

	key, err := s.responseKey(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode items"))
		return
	}
	ctx := r.Context()
	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Debug("response cache read failed", "error", err)
	} else if hit {
		w.Header().Set(cacheHeader, "hit")
		writeRaw(w, http.StatusOK, data)
		return
	}

	resp, err := s.layout(req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "encode response"))
		return
	}
	if err := s.cache.Set(ctx, key, append(data, '\n'), responseTTL); err != nil {
		s.logger.Warn("response cache write failed", "error", err)
	}
	w.Header().Set(cacheHeader, "miss")
	writeRaw(w, http.StatusOK, append(data, '\n'))
}

// responseKey identifies a layout request by everything its response
// depends on. Requests without a config of their own resolve against the
// server defaults.
func (s *Server) responseKey(req LayoutRequest) (string, error) {
	itemsHash, err := cache.HashJSON(req.Items)
	if err != nil {
		return "", err
	}
	cfg := s.defaults
	if req.Config != nil {
		cfg = *req.Config
	}
	return s.keyer.LayoutKey(cache.LayoutKeyOpts{
		Strategy: req.Strategy,
		Width:    req.Width,
		Params: struct {
			Config         config.File `json:"config"`
			ViewportHeight float64     `json:"viewport_height,omitempty"`
		}{cfg, req.ViewportHeight},
		ItemsHash: itemsHash,
	}), nil
}

// layout runs one engine pass for req.
func (s *Server) layout(req LayoutRequest) (LayoutResponse, error) {
	cfg := s.defaults
	if req.Config != nil {
		cfg = *req.Config
	}
	strategy, err := cfg.StrategyValue()
	if err != nil {
		return LayoutResponse{}, err
	}
	if req.Strategy != "" {
		if strategy, err = layout.ParseStrategy(req.Strategy); err != nil {
			return LayoutResponse{}, err
		}
	}
	opts, err := cfg.Options()
	if err != nil {
		return LayoutResponse{}, err
	}
	if req.Width <= 0 {
		return LayoutResponse{}, errors.Configuration("width must be positive, got %v", req.Width)
	}

	itemErrs := []ErrorBody{}
	econf := engine.Config{
		Strategy: strategy,
		Options:  opts,
		Width:    req.Width,
		Debounce: engine.NoDebounce,
	}
	if vh := req.ViewportHeight; vh > 0 {
		econf.Viewport = func() float64 { return vh }
	}
	e, err := engine.New(econf,
		engine.WithLogger(s.logger),
		engine.WithListener(engine.ListenerFuncs{
			Error: func(err error) {
				itemErrs = append(itemErrs, ErrorBody{Code: string(errors.GetCode(err)), Message: err.Error()})
			},
		}))
	if err != nil {
		return LayoutResponse{}, err
	}
	defer e.Destroy()

	if err := e.SetItems(req.Items); err != nil {
		return LayoutResponse{}, err
	}
	return LayoutResponse{
		Result: layout.NewResult(e.Strategy(), req.Width, e.Params(), e.Placements()),
		Errors: itemErrs,
	}, nil
}

// StrategiesResponse is the body of GET /v1/strategies.
type StrategiesResponse struct {
	Strategies []layout.Strategy `json:"strategies"`
	Default    layout.Strategy   `json:"default"`
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	def, err := s.defaults.StrategyValue()
	if err != nil {
		def = layout.DefaultStrategy
	}
	writeJSON(w, http.StatusOK, StrategiesResponse{Strategies: layout.Strategies(), Default: def})
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody(err))
}

func errorBody(err error) ErrorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return ErrorBody{Code: string(code), Message: errors.UserMessage(err)}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfiguration, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidItem:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
