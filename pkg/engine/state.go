package engine

import (
	"github.com/matzehuels/flowgrid/pkg/item"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

// State is the engine's externally visible lifecycle state.
type State int

const (
	// StateIdle means the placements reflect every resolved item.
	StateIdle State = iota

	// StateAwaitingMetrics means at least one metrics batch is in flight;
	// the current placements cover only the items resolved so far.
	StateAwaitingMetrics

	// StateDestroyed is terminal.
	StateDestroyed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingMetrics:
		return "awaiting-metrics"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// session is the engine's owned layout state. Operations build a modified
// copy and swap it in only once the layout pass over it succeeded.
type session struct {
	items      []item.Item
	seen       map[string]bool
	strategy   layout.Strategy
	opts       layout.Options
	width      float64
	placements []layout.Placement
}

// clone returns a copy safe to modify without touching s.
func (s session) clone() session {
	out := s
	out.items = append([]item.Item(nil), s.items...)
	out.seen = make(map[string]bool, len(s.seen))
	for k := range s.seen {
		out.seen[k] = true
	}
	out.opts = s.opts.Clone()
	return out
}

// without returns the items not in drop, preserving order.
func without(items []item.Item, drop map[string]bool) []item.Item {
	if len(drop) == 0 {
		return items
	}
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if !drop[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// pending returns the image items still waiting for metrics.
func pending(items []item.Item) []item.Item {
	var out []item.Item
	for _, it := range items {
		if !it.Resolved() && it.Kind == item.KindImage {
			out = append(out, it)
		}
	}
	return out
}
