package engine

import (
	"context"
	"math"
	"time"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/layout"
	"github.com/matzehuels/flowgrid/pkg/observability"
	"github.com/matzehuels/flowgrid/pkg/responsive"
)

// =============================================================================
// Item operations
// =============================================================================

// SetItems replaces the item set. Invalid inputs are dropped and reported;
// the rest are laid out. Outstanding metrics work for the previous set is
// cancelled, and a pending resize is applied immediately.
func (e *Engine) SetItems(inputs []item.Input) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}

	next := e.sess.clone()
	next.seen = map[string]bool{}
	accepted, rejected := item.NormalizeAll(inputs, next.seen)
	next.items = accepted
	if e.resizeTimer != nil {
		next.width = e.pendingWidth
	}
	next, unmeasurable := e.withoutUnmeasurable(next)

	if err := e.commit(next, false); err != nil {
		return err
	}
	e.stopResize()
	e.advanceGeneration()
	e.reportRejected(rejected, unmeasurable)
	e.startBatch(pending(e.sess.items))

	e.logger.Debug("items set", "accepted", len(accepted), "rejected", len(rejected), "generation", e.gen)
	return nil
}

// AddItems appends items to the current set. Items whose id is already
// present are rejected.
func (e *Engine) AddItems(inputs []item.Input) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}

	next := e.sess.clone()
	accepted, rejected := item.NormalizeAll(inputs, next.seen)
	next.items = append(next.items, accepted...)
	next, unmeasurable := e.withoutUnmeasurable(next)

	if err := e.commit(next, false); err != nil {
		return err
	}
	e.reportRejected(rejected, unmeasurable)
	e.startBatch(pending(accepted))

	e.logger.Debug("items added", "accepted", len(accepted), "rejected", len(rejected), "total", len(e.sess.items))
	return nil
}

// =============================================================================
// Configuration operations
// =============================================================================

// SetLayout switches the active strategy.
func (e *Engine) SetLayout(s layout.Strategy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if !s.Valid() {
		return e.fail(errors.Configuration("invalid strategy: %q", s))
	}

	next := e.sess.clone()
	next.strategy = s
	if err := e.commit(next, true); err != nil {
		return err
	}
	e.logger.Debug("layout changed", "strategy", s)
	return nil
}

// SetOptions merges partial into the option record of the active strategy.
// Only fields set in partial change.
func (e *Engine) SetOptions(partial layout.Overrides) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if err := partial.Validate(); err != nil {
		return e.fail(err)
	}

	next := e.sess.clone()
	if next.opts.Layouts == nil {
		next.opts.Layouts = map[layout.Strategy]layout.Overrides{}
	}
	next.opts.Layouts[next.strategy] = next.opts.Layouts[next.strategy].Merge(partial)
	if err := responsive.ValidateOptions(next.opts); err != nil {
		return e.fail(err)
	}
	return e.commit(next, false)
}

// SetBreakpoints replaces the responsive breakpoint table.
func (e *Engine) SetBreakpoints(table []layout.Breakpoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if err := responsive.Validate(table); err != nil {
		return e.fail(err)
	}

	next := e.sess.clone()
	next.opts.Responsive = append([]layout.Breakpoint(nil), table...)
	if err := responsive.ValidateOptions(next.opts); err != nil {
		return e.fail(err)
	}
	return e.commit(next, false)
}

// =============================================================================
// Resize, refresh and teardown
// =============================================================================

// Resize records a new container width. The pass runs once the width has
// been stable for the debounce window; intermediate widths are discarded.
func (e *Engine) Resize(width float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	if math.IsNaN(width) || math.IsInf(width, 0) || width <= 0 {
		return e.fail(errors.Configuration("container width must be positive, got %v", width))
	}

	if e.debounce <= 0 {
		next := e.sess.clone()
		next.width = width
		return e.commit(next, false)
	}

	if e.resizeTimer != nil {
		e.resizeTimer.Stop()
		observability.Engine().OnResizeCoalesced(e.ctx)
	}
	e.pendingWidth = width
	e.resizeSeq++
	seq := e.resizeSeq
	e.resizeTimer = e.clock.AfterFunc(e.debounce, func() { e.fireResize(seq) })
	return nil
}

func (e *Engine) fireResize(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || seq != e.resizeSeq || e.resizeTimer == nil {
		return
	}
	e.resizeTimer = nil

	next := e.sess.clone()
	next.width = e.pendingWidth
	if err := e.commit(next, false); err == nil {
		e.logger.Debug("resized", "width", next.width)
	}
}

// Refresh recomputes placements from the unchanged session. Two refreshes
// with nothing in between produce identical placements.
func (e *Engine) Refresh() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	return e.commit(e.sess.clone(), false)
}

// Destroy ends the session: pending resizes and metrics batches are
// cancelled and every later operation fails. The last placements stay
// readable.
func (e *Engine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.live(); err != nil {
		return err
	}
	e.destroyed = true
	e.stopResize()
	e.gen++
	e.cancel()
	e.logger.Debug("destroyed", "placements", len(e.sess.placements))
	return nil
}

// =============================================================================
// Internals (engine lock held)
// =============================================================================

func (e *Engine) live() error {
	if e.destroyed {
		return e.fail(errors.ErrDestroyed)
	}
	return nil
}

// fail reports err to the listener and returns it.
func (e *Engine) fail(err error) error {
	e.listener.OnError(err)
	return err
}

// params resolves the effective parameters for s: defaults, base values,
// the strategy record, the active breakpoint, then the viewport height.
func (e *Engine) params(s session) layout.Params {
	p := s.opts.Params(s.strategy)
	p = responsive.Resolve(s.width, s.opts.Responsive, p)
	if e.viewport != nil {
		p.ViewportHeight = e.viewport()
	}
	return p
}

// compute runs one layout pass over s.
func (e *Engine) compute(s session) ([]layout.Placement, error) {
	if s.width <= 0 {
		return []layout.Placement{}, nil
	}
	p := e.params(s)

	ctx := e.ctx
	observability.Engine().OnLayoutStart(ctx, string(s.strategy), len(s.items))
	start := e.clock.Now()
	ps, err := layout.Compute(s.strategy, s.items, s.width, p)
	elapsed := e.clock.Since(start)
	observability.Engine().OnLayoutComplete(ctx, string(s.strategy), len(ps), elapsed, err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("layout computed", "strategy", s.strategy, "width", s.width, "placed", len(ps), "elapsed", elapsed.Round(time.Microsecond))
	return ps, nil
}

// commit computes next and, on success, makes it the session and notifies
// the listener. On failure the session is untouched.
func (e *Engine) commit(next session, strategyChanged bool) error {
	ps, err := e.compute(next)
	if err != nil {
		return e.fail(err)
	}
	next.placements = ps
	e.sess = next

	if strategyChanged {
		e.listener.OnLayoutChange(next.strategy)
	}
	e.listener.OnLayoutComputed(layout.Clone(ps), next.strategy)
	return nil
}

// withoutUnmeasurable drops unresolved images when there is no resolver to
// measure them and returns a load failure for each.
func (e *Engine) withoutUnmeasurable(s session) (session, []error) {
	if e.resolver != nil {
		return s, nil
	}
	var errs []error
	drop := map[string]bool{}
	for _, it := range pending(s.items) {
		drop[it.ID] = true
		delete(s.seen, it.ID)
		errs = append(errs, errors.New(errors.ErrCodeLoad, "item %s: no metrics resolver for %s", it.ID, it.Src))
	}
	s.items = without(s.items, drop)
	return s, errs
}

func (e *Engine) reportRejected(rejected []item.Rejection, unmeasurable []error) {
	for _, r := range rejected {
		e.reportItem(r)
	}
	for _, err := range unmeasurable {
		e.reportItem(err)
	}
}

func (e *Engine) reportItem(err error) {
	observability.Engine().OnItemRejected(e.ctx, string(errors.GetCode(err)))
	e.logger.Debug("item rejected", "err", err)
	e.listener.OnError(err)
}

func (e *Engine) stopResize() {
	if e.resizeTimer != nil {
		e.resizeTimer.Stop()
		e.resizeTimer = nil
	}
	e.resizeSeq++
}

// advanceGeneration invalidates every outstanding metrics batch.
func (e *Engine) advanceGeneration() {
	e.gen++
	e.genCancel()
	e.genCtx, e.genCancel = context.WithCancel(e.ctx)
}
