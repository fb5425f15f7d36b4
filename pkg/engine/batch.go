package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/metrics"
)

// batchResult is the outcome for one item of a metrics batch.
type batchResult struct {
	id   string
	dims metrics.Dimensions
	err  error
}

// startBatch resolves items in the background. Must hold e.mu.
func (e *Engine) startBatch(items []item.Item) {
	if len(items) == 0 || e.resolver == nil {
		return
	}
	if e.inflight == 0 {
		e.idle = make(chan struct{})
	}
	e.inflight++

	gen, ctx := e.gen, e.genCtx
	resolver, limit := e.resolver, e.concurrency
	e.logger.Debug("metrics batch started", "items", len(items), "generation", gen)

	go func() {
		results := make([]batchResult, len(items))
		var g errgroup.Group
		g.SetLimit(limit)
		for i, it := range items {
			g.Go(func() error {
				d, err := resolver.Resolve(ctx, it.Src)
				if err == nil && !d.Valid() {
					err = errors.New(errors.ErrCodeLoad, "empty dimensions")
				}
				results[i] = batchResult{id: it.ID, dims: d, err: err}
				return nil
			})
		}
		_ = g.Wait()
		e.finishBatch(ctx, gen, results)
	}()
}

// finishBatch merges a batch into the session unless the generation moved
// on while it ran.
func (e *Engine) finishBatch(ctx context.Context, gen uint64, results []batchResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Waiters wake only after the batch is merged and reported.
	defer func() {
		e.inflight--
		if e.inflight == 0 {
			close(e.idle)
		}
	}()

	if e.destroyed || gen != e.gen || ctx.Err() != nil {
		e.logger.Debug("stale metrics batch dropped", "generation", gen, "current", e.gen)
		return
	}

	next := e.sess.clone()
	resolved := make(map[string]metrics.Dimensions, len(results))
	failed := map[string]bool{}
	for _, r := range results {
		if r.err != nil {
			failed[r.id] = true
			delete(next.seen, r.id)
			e.reportItem(errors.Wrap(errors.ErrCodeLoad, r.err, "item %s", r.id))
			continue
		}
		resolved[r.id] = r.dims
	}
	next.items = without(next.items, failed)
	for i, it := range next.items {
		if d, ok := resolved[it.ID]; ok {
			next.items[i] = it.WithDimensions(float64(d.Width), float64(d.Height))
		}
	}

	if err := e.commit(next, false); err != nil {
		// Keep the measurements even though the pass failed, so the next
		// successful operation places these items.
		next.placements = e.sess.placements
		e.sess = next
		return
	}
	e.logger.Debug("metrics batch applied", "resolved", len(resolved), "failed", len(failed))
}
