package layout

import (
	"math"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
)

// masonry assigns each item, in input order, to the column with the
// smallest accumulated height. Ties go to the lowest column index.
//
// Captions count toward a column's height, so a captioned item pushes its
// column further down than its image alone would. The result is
// deterministic for a given item order and column count; no attempt is
// made at globally optimal balancing.
func masonry(items []item.Item, width float64, p Params) ([]Placement, error) {
	cols := MasonryColumns(width, p)
	colWidth := (width - float64(cols-1)*p.Gutter) / float64(cols)
	if colWidth <= 0 {
		return nil, errors.Configuration("gutter %v leaves no room for %d columns in width %v", p.Gutter, cols, width)
	}

	heights := make([]float64, cols)
	counts := make([]int, cols)
	out := make([]Placement, 0, len(items))

	for _, it := range items {
		c := shortest(heights)
		imgHeight := colWidth / it.AspectRatio
		pl := Placement{
			ItemID: it.ID,
			X:      float64(c) * (colWidth + p.Gutter),
			Y:      heights[c],
			Width:  colWidth,
			Height: imgHeight + it.CaptionHeight,
			Row:    counts[c],
			Column: c,
		}
		if it.CaptionHeight > 0 {
			pl.CaptionOffset = imgHeight
		}
		out = append(out, pl)

		heights[c] += pl.Height + p.Gutter
		counts[c]++
	}
	return out, nil
}

// MasonryColumns returns the column count masonry uses for width: the fixed
// Columns option when set, otherwise as many MinColumnWidth columns (plus
// gutter) as fit, and never fewer than one.
func MasonryColumns(width float64, p Params) int {
	if p.Columns > 0 {
		return p.Columns
	}
	n := int(math.Floor(width / (p.MinColumnWidth + p.Gutter)))
	if n < 1 {
		return 1
	}
	return n
}

// shortest returns the index of the smallest height, lowest index on ties.
func shortest(heights []float64) int {
	best := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[best] {
			best = i
		}
	}
	return best
}
