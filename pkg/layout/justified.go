package layout

import (
	"math"

	"github.com/matzehuels/flowgrid/pkg/item"
)

// eps absorbs float error before flooring pixel widths, so 399.99999999
// counts as 400.
const eps = 1e-6

// justified packs items into rows that exactly fill the container width,
// each row scaled to a height close to TargetRowHeight.
//
// Items are accumulated greedily. A row of n items with aspect ratio sum S
// has natural height (width - (n-1)*gutter) / S, which shrinks as items
// are added. Once adding the next item would take the height to or below
// the target, the row closes either with that item (overflow) or without it
// (undershoot), whichever lands closer to the target. A row that would
// exceed MaxRowHeight without the item always takes the overflow option.
//
// Closed rows are pixel-rounded: heights are rounded, widths floored, and
// the lost remainder is handed out one pixel per gutter (then to the last
// item) so items plus gutters sum to the container width.
func justified(items []item.Item, width float64, p Params) ([]Placement, error) {
	rw := &rowWriter{width: width, gutter: p.Gutter}
	target := p.TargetRowHeight

	start := 0
	sum := 0.0
	for i := 0; i < len(items); i++ {
		n := i - start + 1
		h := naturalHeight(width, p.Gutter, n, sum+items[i].AspectRatio)
		if h > target {
			sum += items[i].AspectRatio
			continue
		}

		if n == 1 {
			// A lone item already at or below target gets its own row.
			rw.fill(items[i:i+1], h)
			start, sum = i+1, 0
			continue
		}

		prev := naturalHeight(width, p.Gutter, n-1, sum)
		overflow := (target - h) / target
		undershoot := (prev - target) / target
		tooTall := p.MaxRowHeight > 0 && prev > p.MaxRowHeight

		if h > 0 && (tooTall || overflow <= undershoot) {
			rw.fill(items[start:i+1], h)
			start, sum = i+1, 0
			continue
		}

		rw.fill(items[start:i], prev)
		start, sum = i, 0
		i-- // item i opens the next row
	}

	if start < len(items) {
		rest := items[start:]
		h := naturalHeight(width, p.Gutter, len(rest), sum)
		switch p.LastRow {
		case LastRowJustify:
			if p.MaxRowHeight > 0 && h > p.MaxRowHeight {
				rw.left(rest, p.MaxRowHeight)
			} else {
				rw.fill(rest, h)
			}
		case LastRowLeft:
			rw.left(rest, math.Min(h, target))
		case LastRowHide:
		}
	}
	return rw.out, nil
}

// naturalHeight is the height at which n items with aspect ratio sum
// ratioSum exactly fill width.
func naturalHeight(width, gutter float64, n int, ratioSum float64) float64 {
	return (width - float64(n-1)*gutter) / ratioSum
}

// rowWriter emits placements row by row, tracking the running y offset.
type rowWriter struct {
	width  float64
	gutter float64
	y      float64
	row    int
	out    []Placement
}

// fill emits a row stretched to the full width at height h.
func (w *rowWriter) fill(row []item.Item, h float64) {
	n := len(row)
	widths := make([]float64, n)
	used := 0.0
	for i, it := range row {
		widths[i] = math.Floor(h*it.AspectRatio + eps)
		used += widths[i]
	}

	gaps := make([]float64, n)
	rem := w.width - float64(n-1)*w.gutter - used
	for i := 0; i < n-1; i++ {
		gaps[i] = w.gutter
		if rem >= 1 {
			gaps[i]++
			rem--
		}
	}
	if rem > 0 {
		widths[n-1] += rem
	}

	w.emit(row, math.Round(h), widths, gaps)
}

// left emits a row at height h without stretching it.
func (w *rowWriter) left(row []item.Item, h float64) {
	widths := make([]float64, len(row))
	gaps := make([]float64, len(row))
	for i, it := range row {
		widths[i] = math.Round(h * it.AspectRatio)
		gaps[i] = w.gutter
	}
	w.emit(row, math.Round(h), widths, gaps)
}

func (w *rowWriter) emit(row []item.Item, h float64, widths, gaps []float64) {
	caption := 0.0
	for _, it := range row {
		caption = math.Max(caption, it.CaptionHeight)
	}

	x := 0.0
	for i, it := range row {
		pl := Placement{
			ItemID: it.ID,
			X:      x,
			Y:      w.y,
			Width:  widths[i],
			Height: h + caption,
			Row:    w.row,
			Column: i,
		}
		if caption > 0 {
			pl.CaptionOffset = h
		}
		w.out = append(w.out, pl)
		x += widths[i] + gaps[i]
	}
	w.y += h + caption + w.gutter
	w.row++
}
