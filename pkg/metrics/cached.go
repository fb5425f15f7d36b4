package metrics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/observability"
)

const keyType = "metrics"

// CachedResolver memoizes an inner Resolver in a cache.Cache. Failures are
// not cached, so a later pass retries them.
type CachedResolver struct {
	inner Resolver
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCachedResolver wraps inner. A nil cache disables caching and a nil
// keyer uses cache.NewDefaultKeyer.
func NewCachedResolver(inner Resolver, c cache.Cache, k cache.Keyer) *CachedResolver {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &CachedResolver{inner: inner, cache: c, keyer: k, ttl: cache.MetricsTTL}
}

// WithTTL sets the entry lifetime and returns r.
func (r *CachedResolver) WithTTL(ttl time.Duration) *CachedResolver {
	r.ttl = ttl
	return r
}

// Resolve implements Resolver.
func (r *CachedResolver) Resolve(ctx context.Context, src string) (Dimensions, error) {
	key := r.keyer.MetricsKey(src)
	if data, ok, _ := r.cache.Get(ctx, key); ok {
		var d Dimensions
		if json.Unmarshal(data, &d) == nil && d.Valid() {
			observability.Cache().OnCacheHit(ctx, keyType)
			return d, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	start := time.Now()
	d, err := r.inner.Resolve(ctx, src)
	observability.Metrics().OnResolve(ctx, src, time.Since(start), err)
	if err != nil {
		return Dimensions{}, err
	}

	if data, err := json.Marshal(d); err == nil {
		if r.cache.Set(ctx, key, data, r.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, keyType, len(data))
		}
	}
	return d, nil
}
