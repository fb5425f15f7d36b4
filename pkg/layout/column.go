package layout

import (
	"math"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
)

// overflowHeight stacks items in a single full-width column with no height
// cap; the container is expected to scroll.
func overflowHeight(items []item.Item, width float64, p Params) ([]Placement, error) {
	out := make([]Placement, len(items))
	y := 0.0
	for i, it := range items {
		imgHeight := width / it.AspectRatio
		out[i] = stacked(it, i, 0, y, width, imgHeight)
		y += out[i].Height + p.Gutter
	}
	return out, nil
}

// fitScreen stacks items in a single column, shrinking any item taller than
// the viewport (minus padding) so it fits on screen. Shrunk items keep their
// aspect ratio and are centered horizontally.
func fitScreen(items []item.Item, width float64, p Params) ([]Placement, error) {
	if p.ViewportHeight <= 0 {
		return nil, errors.Configuration("fit-screen requires a viewport height")
	}
	limit := p.ViewportHeight - p.Padding
	if limit <= 0 {
		return nil, errors.Configuration("padding %v leaves no room in viewport height %v", p.Padding, p.ViewportHeight)
	}

	out := make([]Placement, len(items))
	y := 0.0
	for i, it := range items {
		imgHeight := math.Min(width/it.AspectRatio, limit)
		w := imgHeight * it.AspectRatio
		out[i] = stacked(it, i, (width-w)/2, y, w, imgHeight)
		y += out[i].Height + p.Gutter
	}
	return out, nil
}

func stacked(it item.Item, i int, x, y, w, imgHeight float64) Placement {
	pl := Placement{
		ItemID: it.ID,
		X:      x,
		Y:      y,
		Width:  w,
		Height: imgHeight + it.CaptionHeight,
		Row:    i,
	}
	if it.CaptionHeight > 0 {
		pl.CaptionOffset = imgHeight
	}
	return pl
}
