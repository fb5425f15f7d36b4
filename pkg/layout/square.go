package layout

import (
	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
)

// square places items in a fixed-column grid of equal square cells.
//
// Items are never stretched: a non-square item is flagged for center
// cropping, and the crop offsets tell the renderer where to draw the
// aspect-preserving image (scaled to cover the cell) relative to the cell.
func square(items []item.Item, width float64, p Params) ([]Placement, error) {
	cols := p.Columns
	if cols == 0 {
		cols = DefaultSquareColumns
	}
	side := (width - float64(cols-1)*p.Gutter) / float64(cols)
	if side <= 0 {
		return nil, errors.Configuration("gutter %v leaves no room for %d columns in width %v", p.Gutter, cols, width)
	}

	out := make([]Placement, len(items))
	for i, it := range items {
		row, col := i/cols, i%cols
		pl := Placement{
			ItemID: it.ID,
			X:      float64(col) * (side + p.Gutter),
			Y:      float64(row) * (side + p.Gutter),
			Width:  side,
			Height: side,
			Row:    row,
			Column: col,
		}
		switch ar := it.AspectRatio; {
		case ar > 1:
			pl.Crop = true
			pl.CropOffsetX = -(side*ar - side) / 2
		case ar < 1:
			pl.Crop = true
			pl.CropOffsetY = -(side/ar - side) / 2
		}
		if it.CaptionHeight > 0 {
			// Captions overlay the bottom of the cell.
			pl.CaptionOffset = max(side-it.CaptionHeight, 0)
		}
		out[i] = pl
	}
	return out, nil
}
