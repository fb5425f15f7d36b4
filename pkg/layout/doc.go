// Package layout computes item placements for a container of a given width.
//
// Five strategies are available, selected by [Strategy]:
//
//   - [Justified]: rows that exactly fill the width, each scaled to a height
//     near the target row height
//   - [Masonry]: fixed-width columns, each item dropped into the currently
//     shortest column
//   - [Square]: a grid of equal square cells, non-square items center-cropped
//   - [OverflowHeight]: one full-width column, unbounded height
//   - [FitScreen]: one column, items shrunk to fit the viewport height
//
// # Computing a Layout
//
// [Compute] is a pure function of the items, the container width and the
// effective [Params]. Items without a resolved aspect ratio are skipped:
//
//	p := layout.DefaultParams()
//	p.Gutter = 8
//	placements, err := layout.Compute(layout.Justified, items, 1200, p)
//
// # Options
//
// [Options] holds base values plus per-strategy [Overrides] and the
// responsive breakpoint table. [Options.Params] resolves the first two
// layers; breakpoints are applied on top by the responsive package.
//
// # Output
//
// Placements are returned in input order with coordinates relative to the
// container's top-left corner. [Result] wraps them for serialization:
//
//	layout.WriteResultFile(layout.NewResult(s, width, p, placements), "layout.json")
package layout
