package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
)

// Strategy identifies one of the closed set of layout algorithms.
type Strategy string

const (
	Justified      Strategy = "justified"
	Masonry        Strategy = "masonry"
	Square         Strategy = "square"
	OverflowHeight Strategy = "overflow-height"
	FitScreen      Strategy = "fit-screen"
)

// DefaultStrategy is used when none is configured.
const DefaultStrategy = Justified

// Func computes placements for resolved items in a container of the given
// width. Implementations are pure and must not retain items.
type Func func(items []item.Item, width float64, p Params) ([]Placement, error)

// strategies is the dispatch table. Adding a strategy means adding a
// constant, a Func and an entry here.
var strategies = map[Strategy]Func{
	Justified:      justified,
	Masonry:        masonry,
	Square:         square,
	OverflowHeight: overflowHeight,
	FitScreen:      fitScreen,
}

// order fixes the listing order of Strategies.
var order = []Strategy{Justified, Masonry, Square, OverflowHeight, FitScreen}

// Strategies returns every known strategy in a stable order.
func Strategies() []Strategy {
	return append([]Strategy(nil), order...)
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := strategies[s]
	return ok
}

// String implements fmt.Stringer.
func (s Strategy) String() string { return string(s) }

// Next returns the strategy after s in listing order, wrapping around.
func (s Strategy) Next() Strategy {
	for i, o := range order {
		if o == s {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// ParseStrategy converts a name to a Strategy. Matching is case-insensitive
// and accepts underscores in place of dashes.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-"))
	if !s.Valid() {
		names := make([]string, len(order))
		for i, o := range order {
			names[i] = string(o)
		}
		return "", errors.Configuration("invalid strategy: %q (must be one of: %s)", name, strings.Join(names, ", "))
	}
	return s, nil
}

// Compute runs strategy s over the resolved subset of items.
//
// Items without a usable aspect ratio are excluded, never placed with a
// fallback. An empty input yields an empty, non-nil placement slice.
func Compute(s Strategy, items []item.Item, width float64, p Params) ([]Placement, error) {
	fn, ok := strategies[s]
	if !ok {
		return nil, errors.Configuration("invalid strategy: %q", s)
	}
	if !finite(width) || width <= 0 {
		return nil, errors.Configuration("container width must be positive, got %v", width)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ready := item.Resolved(items)
	if len(ready) == 0 {
		return []Placement{}, nil
	}

	out, err := fn(ready, p.ContainerWidth(width), p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	return out, nil
}
