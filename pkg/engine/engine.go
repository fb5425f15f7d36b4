// Package engine owns a layout session and keeps its placements current.
//
// An [Engine] holds the item list, the active strategy, the option set and
// the container width, and recomputes the full placement set whenever any
// of them changes. There is no incremental re-layout: every pass runs a
// pure strategy function over a snapshot of the session.
//
// # Concurrency
//
// All operations are serialized by one lock; concurrent callers are safe.
// Two kinds of work happen off the caller's goroutine:
//
//   - Image metrics: items without a known aspect ratio are measured in
//     batches by a [metrics.Resolver]. A pass proceeds with the items
//     already resolved; each finished batch triggers another pass.
//   - Resize: [Engine.Resize] is debounced, so a burst of width changes
//     inside the window yields one pass at the last width.
//
// Pending work is tagged with a generation number. SetItems and Destroy
// advance the generation and cancel outstanding work, and any result that
// arrives for an older generation is dropped.
//
// # Errors
//
// Rejected items and failed metrics are reported through
// [Listener.OnError] while the pass continues with the remaining items.
// Configuration errors abort the operation, leave the session unchanged,
// and are both returned and reported. After [Engine.Destroy] every
// operation except [Engine.Placements] and [Engine.State] fails with
// errors.ErrDestroyed.
package engine

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/layout"
	"github.com/matzehuels/flowgrid/pkg/metrics"
	"github.com/matzehuels/flowgrid/pkg/responsive"
)

const (
	// DefaultDebounce is the resize coalescing window.
	DefaultDebounce = 50 * time.Millisecond

	// NoDebounce makes Resize recompute immediately.
	NoDebounce time.Duration = -1

	// DefaultConcurrency bounds parallel metrics resolutions per batch.
	DefaultConcurrency = 8
)

// Config is the initial engine configuration.
type Config struct {
	// Strategy is the initial layout strategy; empty means
	// layout.DefaultStrategy.
	Strategy layout.Strategy

	// Options holds base values, per-strategy records and breakpoints.
	Options layout.Options

	// Width is the initial container width. Zero means unknown: no
	// placements are produced until Resize supplies one.
	Width float64

	// Viewport, when set, is asked for the viewport height on every pass.
	// The fit-screen strategy requires it.
	Viewport func() float64

	// Debounce is the resize coalescing window. Zero means DefaultDebounce;
	// NoDebounce disables coalescing.
	Debounce time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithResolver sets the image-metrics resolver. Without one, images that
// lack a declared size fail with LOAD_FAILED.
func WithResolver(r metrics.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithListener sets the notification listener.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listener = l
		}
	}
}

// WithClock sets the clock driving resize debouncing.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithConcurrency bounds parallel resolutions within one metrics batch.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// Engine is a layout session with a single-writer lock.
type Engine struct {
	mu sync.Mutex

	id        string
	sess      session
	destroyed bool
	viewport  func() float64

	// Generation of the current item set. Metrics batches record it at
	// start; a mismatch on completion marks the batch stale.
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc
	ctx       context.Context
	cancel    context.CancelFunc

	inflight int
	idle     chan struct{}

	debounce     time.Duration
	resizeTimer  clockwork.Timer
	resizeSeq    uint64
	pendingWidth float64

	clock       clockwork.Clock
	resolver    metrics.Resolver
	listener    Listener
	logger      *log.Logger
	concurrency int
}

// New validates cfg and returns an idle engine with no items.
func New(cfg Config, opts ...Option) (*Engine, error) {
	s := cfg.Strategy
	if s == "" {
		s = layout.DefaultStrategy
	}
	if !s.Valid() {
		return nil, errors.Configuration("invalid strategy: %q", s)
	}
	if err := responsive.ValidateOptions(cfg.Options); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.Width) || math.IsInf(cfg.Width, 0) || cfg.Width < 0 {
		return nil, errors.Configuration("width must be finite and non-negative, got %v", cfg.Width)
	}

	debounce := cfg.Debounce
	switch {
	case debounce == 0:
		debounce = DefaultDebounce
	case debounce < 0:
		debounce = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		id: uuid.NewString(),
		sess: session{
			seen:       map[string]bool{},
			strategy:   s,
			opts:       cfg.Options.Clone(),
			width:      cfg.Width,
			placements: []layout.Placement{},
		},
		viewport:    cfg.Viewport,
		ctx:         ctx,
		cancel:      cancel,
		debounce:    debounce,
		clock:       clockwork.NewRealClock(),
		listener:    NoopListener{},
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		concurrency: DefaultConcurrency,
	}
	e.genCtx, e.genCancel = context.WithCancel(ctx)
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("session", e.id[:8])
	return e, nil
}

// ID returns the session identifier used in log output.
func (e *Engine) ID() string { return e.id }

// Placements returns a copy of the current placement set. It remains
// readable after Destroy.
func (e *Engine) Placements() []layout.Placement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return layout.Clone(e.sess.placements)
}

// State reports the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	switch {
	case e.destroyed:
		return StateDestroyed
	case e.inflight > 0:
		return StateAwaitingMetrics
	}
	return StateIdle
}

// Strategy returns the active strategy.
func (e *Engine) Strategy() layout.Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.strategy
}

// Width returns the container width of the last committed pass.
func (e *Engine) Width() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.width
}

// Params returns the effective parameters for the current session.
func (e *Engine) Params() layout.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params(e.sess)
}

// Len returns the number of items in the session, resolved or not.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sess.items)
}

// Wait blocks until no metrics batch is in flight or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	if e.inflight == 0 {
		e.mu.Unlock()
		return nil
	}
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
