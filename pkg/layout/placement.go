package layout

// Placement is the computed box for one item. All coordinates are in
// container units (typically CSS pixels) with the origin at the top-left.
//
// Placements are output-only snapshots: every layout pass recomputes the
// full set, nothing is patched in place.
type Placement struct {
	ItemID string  `json:"item_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Row and Column locate the item in the strategy's own grid: the row
	// and position-in-row for justified, the column and position-in-column
	// for masonry, the grid cell for square, and the running index for the
	// single-column strategies.
	Row    int `json:"row"`
	Column int `json:"column"`

	// Rendering hints.
	Crop          bool    `json:"crop,omitempty"`
	CropOffsetX   float64 `json:"crop_offset_x,omitempty"`
	CropOffsetY   float64 `json:"crop_offset_y,omitempty"`
	CaptionOffset float64 `json:"caption_offset,omitempty"`
}

// Right returns the x coordinate of the right edge.
func (p Placement) Right() float64 { return p.X + p.Width }

// Bottom returns the y coordinate of the bottom edge.
func (p Placement) Bottom() float64 { return p.Y + p.Height }

// CenterX returns the horizontal center point of the box.
func (p Placement) CenterX() float64 { return p.X + p.Width/2 }

// CenterY returns the vertical center point of the box.
func (p Placement) CenterY() float64 { return p.Y + p.Height/2 }

// Extent returns the total height covered by a placement set.
func Extent(ps []Placement) float64 {
	var h float64
	for _, p := range ps {
		if b := p.Bottom(); b > h {
			h = b
		}
	}
	return h
}

// Clone returns a copy of ps that shares no memory with it.
func Clone(ps []Placement) []Placement {
	if ps == nil {
		return nil
	}
	out := make([]Placement, len(ps))
	copy(out, ps)
	return out
}
