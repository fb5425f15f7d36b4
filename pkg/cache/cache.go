// Package cache provides byte-oriented caches for image metrics and
// computed layouts.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (multi-process servers)
//   - [MemoryCache]: an in-process map, optionally bounded (the HTTP server's
//     response cache)
//
// [NullCache] disables caching without special-casing callers.
//
// Keys are built by a [Keyer] so every backend agrees on key layout:
//
//	k := cache.NewDefaultKeyer()
//	key := k.MetricsKey("photos/a.jpg")     // "metrics:<sha256>"
//
// Values are opaque bytes; callers encode and decode their own payloads.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	// MetricsTTL is how long measured image dimensions stay cached. Images
	// behind a given source rarely change size.
	MetricsTTL = 7 * 24 * time.Hour

	// LayoutTTL is how long computed placements stay cached.
	LayoutTTL = 24 * time.Hour
)

// Cache stores opaque values by key. A zero or negative ttl means no expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
