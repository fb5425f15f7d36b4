// Package responsive selects option overrides by container width.
//
// A breakpoint table maps minimum container widths to partial option
// records. The active breakpoint for a width is the one with the largest
// threshold not exceeding that width; its overrides are applied over the
// base parameters. Resolution is a pure function of width and table.
//
// A non-empty table must contain a breakpoint at width 0 so every width
// resolves to something. An empty table is valid and leaves the base
// parameters untouched.
package responsive

import (
	"math"
	"sort"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

// Validate checks a breakpoint table: widths must be finite, non-negative
// and distinct, a non-empty table must contain width 0, and every record
// must pass isolated option checks.
func Validate(table []layout.Breakpoint) error {
	if len(table) == 0 {
		return nil
	}
	seen := make(map[float64]bool, len(table))
	for _, bp := range table {
		if math.IsNaN(bp.Width) || math.IsInf(bp.Width, 0) || bp.Width < 0 {
			return errors.Configuration("breakpoint width must be finite and non-negative, got %v", bp.Width)
		}
		if seen[bp.Width] {
			return errors.Configuration("duplicate breakpoint width %v", bp.Width)
		}
		seen[bp.Width] = true
		if err := bp.Overrides.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "breakpoint %v", bp.Width)
		}
	}
	if !seen[0] {
		return errors.Configuration("breakpoint table must contain a breakpoint at width 0")
	}
	return nil
}

// Active returns the breakpoint that applies at width, and false when the
// table is empty or no threshold is at or below width.
func Active(width float64, table []layout.Breakpoint) (layout.Breakpoint, bool) {
	var best layout.Breakpoint
	found := false
	for _, bp := range table {
		if bp.Width <= width && (!found || bp.Width > best.Width) {
			best, found = bp, true
		}
	}
	return best, found
}

// Resolve returns base with the active breakpoint's overrides applied.
func Resolve(width float64, table []layout.Breakpoint, base layout.Params) layout.Params {
	bp, ok := Active(width, table)
	if !ok {
		return base
	}
	return bp.Overrides.Apply(base)
}

// ValidateOptions checks o as a whole: its base values and per-strategy
// records, its breakpoint table, and the parameters every strategy resolves
// to under each breakpoint. Cross-field rules such as max_row_height not
// below target_row_height only show up in the resolved parameters.
func ValidateOptions(o layout.Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := Validate(o.Responsive); err != nil {
		return err
	}
	table := Sorted(o.Responsive)
	for _, s := range layout.Strategies() {
		base := o.Params(s)
		if len(table) == 0 {
			if err := base.Validate(); err != nil {
				return errors.Wrap(errors.ErrCodeConfiguration, err, "layouts.%s", s)
			}
			continue
		}
		for _, bp := range table {
			if err := bp.Overrides.Apply(base).Validate(); err != nil {
				return errors.Wrap(errors.ErrCodeConfiguration, err, "%s at breakpoint %v", s, bp.Width)
			}
		}
	}
	return nil
}

// Sorted returns a copy of table ordered by ascending width.
func Sorted(table []layout.Breakpoint) []layout.Breakpoint {
	out := append([]layout.Breakpoint(nil), table...)
	sort.Slice(out, func(i, j int) bool { return out[i].Width < out[j].Width })
	return out
}
