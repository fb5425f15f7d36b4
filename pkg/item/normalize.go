package item

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/flowgrid/pkg/errors"
)

// Input is a raw, not yet validated item. In JSON it is either a bare
// string (promoted to an image with that src) or an object.
type Input struct {
	ID            string  `json:"id,omitempty"`
	Kind          Kind    `json:"kind,omitempty"`
	Src           string  `json:"src,omitempty"`
	Content       string  `json:"content,omitempty"`
	AspectRatio   float64 `json:"aspect_ratio,omitempty"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	CaptionHeight float64 `json:"caption_height,omitempty"`
}

// FromURL promotes a bare source string to an image input.
func FromURL(src string) Input {
	return Input{Kind: KindImage, Src: src}
}

// FromURLs promotes each source string to an image input.
func FromURLs(srcs ...string) []Input {
	out := make([]Input, len(srcs))
	for i, s := range srcs {
		out[i] = FromURL(s)
	}
	return out
}

// UnmarshalJSON accepts either a JSON string or an object.
func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var src string
		if err := json.Unmarshal(data, &src); err != nil {
			return err
		}
		*in = FromURL(src)
		return nil
	}
	type record Input
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*in = Input(r)
	return nil
}

// Normalize validates an input and turns it into an Item.
//
// It fails with an INVALID_ITEM error when the record is missing the field
// its kind requires (src for images, content for text), declares a
// non-positive or non-finite size or ratio, or is a text block without any
// way to know its aspect ratio.
func Normalize(in Input) (Item, error) {
	kind := Kind(strings.ToLower(string(in.Kind)))
	if kind == "" {
		kind = KindImage
		if in.Src == "" && in.Content != "" {
			kind = KindText
		}
	}

	it := Item{
		ID:            in.ID,
		Kind:          kind,
		Src:           in.Src,
		Content:       in.Content,
		Width:         in.Width,
		Height:        in.Height,
		CaptionHeight: in.CaptionHeight,
	}

	var key string
	switch kind {
	case KindImage:
		if err := errors.ValidateSource(in.Src); err != nil {
			return Item{}, err
		}
		key = in.Src
	case KindText:
		if strings.TrimSpace(in.Content) == "" {
			return Item{}, errors.InvalidItem("text item requires content")
		}
		key = in.Content
	default:
		return Item{}, errors.InvalidItem("unknown item kind %q", in.Kind)
	}

	if err := errors.ValidateID(in.ID); err != nil {
		return Item{}, err
	}
	if it.ID == "" {
		it.ID = StableID(kind, key)
	}

	if err := checkDimension("width", in.Width); err != nil {
		return Item{}, err
	}
	if err := checkDimension("height", in.Height); err != nil {
		return Item{}, err
	}
	if err := checkDimension("caption_height", in.CaptionHeight); err != nil {
		return Item{}, err
	}
	if err := checkDimension("aspect_ratio", in.AspectRatio); err != nil {
		return Item{}, err
	}

	switch {
	case in.AspectRatio > 0:
		it.AspectRatio = in.AspectRatio
	case in.Width > 0 && in.Height > 0:
		it.AspectRatio = in.Width / in.Height
	}

	if kind == KindText && !it.Resolved() {
		return Item{}, errors.InvalidItem("text item requires aspect_ratio or width and height")
	}
	return it, nil
}

// Rejection records an input that failed normalization.
type Rejection struct {
	Index int
	Err   error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("item %d: %v", r.Index, r.Err)
}

func (r Rejection) Unwrap() error { return r.Err }

// NormalizeAll normalizes every input, keeping the valid ones in order.
// Invalid inputs and duplicate explicit ids are reported as rejections; they
// never abort the batch. An input without an id that repeats an earlier
// source gets a derived id of its own, so listing the same image twice shows
// it twice.
func NormalizeAll(inputs []Input, seen map[string]bool) ([]Item, []Rejection) {
	if seen == nil {
		seen = make(map[string]bool, len(inputs))
	}
	items := make([]Item, 0, len(inputs))
	var rejected []Rejection
	for i, in := range inputs {
		it, err := Normalize(in)
		if err == nil && seen[it.ID] && in.ID == "" {
			it.ID = repeatID(it, seen)
		}
		if err == nil && seen[it.ID] {
			err = errors.InvalidItem("duplicate item id %q", it.ID)
		}
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Err: err})
			continue
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items, rejected
}

// repeatID derives the id of the nth repeat of an id-less item. The result
// depends only on the item and how many copies came before it.
func repeatID(it Item, seen map[string]bool) string {
	key := it.Src
	if it.Kind == KindText {
		key = it.Content
	}
	for n := 1; ; n++ {
		if id := StableID(it.Kind, fmt.Sprintf("%s#%d", key, n)); !seen[id] {
			return id
		}
	}
}

// checkDimension rejects negative, NaN and infinite declared values.
// Zero means "not declared".
func checkDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errors.InvalidItem("%s must be positive, got %v", name, v)
	}
	return nil
}
