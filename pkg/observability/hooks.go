// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through package-level hook registries; the binary
// registers concrete implementations (for example Prometheus collectors)
// at startup. Every registry defaults to a no-op, so library code never
// checks whether instrumentation is configured.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnLayoutStart(ctx, "masonry", len(items))
//	// ... compute ...
//	observability.Engine().OnLayoutComplete(ctx, "masonry", len(placements), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from layout passes.
type EngineHooks interface {
	// OnLayoutStart fires before a layout pass over itemCount resolved items.
	OnLayoutStart(ctx context.Context, strategy string, itemCount int)

	// OnLayoutComplete fires after a pass, successful or not.
	OnLayoutComplete(ctx context.Context, strategy string, placed int, duration time.Duration, err error)

	// OnItemRejected fires for each item dropped with the given error code.
	OnItemRejected(ctx context.Context, code string)

	// OnResizeCoalesced fires when a pending resize is superseded by a
	// newer one inside the debounce window.
	OnResizeCoalesced(ctx context.Context)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Metrics Hooks
// =============================================================================

// MetricsHooks receives events from image-metrics resolution.
type MetricsHooks interface {
	// OnResolve records one source resolution against the backing resolver.
	OnResolve(ctx context.Context, src string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopEngineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopEngineHooks) OnItemRejected(context.Context, string)                              {}
func (NoopEngineHooks) OnResizeCoalesced(context.Context)                                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopMetricsHooks is a no-op implementation of MetricsHooks.
type NoopMetricsHooks struct{}

func (NoopMetricsHooks) OnResolve(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks  EngineHooks  = NoopEngineHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	metricsHooks MetricsHooks = NoopMetricsHooks{}
	hooksMu      sync.RWMutex
)

// SetEngineHooks registers custom engine hooks. Nil is ignored.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetMetricsHooks registers custom metrics-resolution hooks. Nil is ignored.
func SetMetricsHooks(h MetricsHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		metricsHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Metrics returns the registered metrics-resolution hooks.
func Metrics() MetricsHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return metricsHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	metricsHooks = NoopMetricsHooks{}
}
