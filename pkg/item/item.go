// Package item defines the normalized content units that flowgrid lays out.
//
// An [Item] is a rectangular box with an intrinsic aspect ratio: an image
// (identified by its src) or a text block (carrying its own content). Raw
// input arrives as an [Input], which is either a bare source string or a
// full record, and is turned into an Item by [Normalize].
//
// Normalization is pure: it never performs I/O. Images whose aspect ratio
// is unknown at input time come out unresolved ([Item.Resolved] reports
// false) and must be measured by an image-metrics resolver before they can
// be placed.
package item

import (
	"math"

	"github.com/google/uuid"
)

// Kind distinguishes image items from text items.
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// Item is one normalized content unit.
// Items are treated as immutable once handed to a layout computation.
type Item struct {
	ID            string  `json:"id"`
	Kind          Kind    `json:"kind"`
	Src           string  `json:"src,omitempty"`
	Content       string  `json:"content,omitempty"`
	AspectRatio   float64 `json:"aspect_ratio,omitempty"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	CaptionHeight float64 `json:"caption_height,omitempty"`
}

// Resolved reports whether the item has a usable aspect ratio.
func (it Item) Resolved() bool {
	return validRatio(it.AspectRatio)
}

// WithDimensions returns a copy of the item with its intrinsic size set and
// its aspect ratio derived from it.
func (it Item) WithDimensions(width, height float64) Item {
	it.Width = width
	it.Height = height
	it.AspectRatio = width / height
	return it
}

// Resolved filters items down to those with a usable aspect ratio,
// preserving order.
func Resolved(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Resolved() {
			out = append(out, it)
		}
	}
	return out
}

// StableID derives a deterministic identifier for an item that was given
// none. The same kind and source always yield the same id.
func StableID(kind Kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(kind)+":"+key)).String()
}

func validRatio(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
