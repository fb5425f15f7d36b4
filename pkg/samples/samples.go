// Package samples generates numbered placeholder images for trying out
// layouts.
//
// Each image is a flat background with its sequence number drawn as large as
// fits inside 80% of the frame. A configurable fraction of the images is
// portrait (the landscape frame rotated), so a generated set exercises every
// strategy's handling of mixed aspect ratios. Alongside the JPEG files an
// items.json is written that lists every image with its pixel size, ready
// for `flowgrid layout`.
package samples

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/item"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultDir              = "samples"
	DefaultCount            = 40
	DefaultPortraitFraction = 0.5
	DefaultAspect           = "3:2"
	DefaultLongEdge         = 3000
	DefaultBackground       = "darkgray"
	DefaultForeground       = "lightgray"

	// ItemsFile is the name of the item list written next to the images.
	ItemsFile = "items.json"

	jpegQuality = 85
	labelFill   = 0.8
	minFontSize = 10
)

// Options configures Generate.
type Options struct {
	Dir              string
	Count            int
	PortraitFraction float64
	Aspect           string
	LongEdge         int
	Background       color.NRGBA
	Foreground       color.NRGBA

	// Seed makes orientation choices reproducible. Nil picks a seed from
	// the clock; zero is a seed like any other.
	Seed *uint64
}

// DefaultOptions returns the generator defaults.
func DefaultOptions() Options {
	bg, _ := ParseColor(DefaultBackground)
	fg, _ := ParseColor(DefaultForeground)
	return Options{
		Dir:              DefaultDir,
		Count:            DefaultCount,
		PortraitFraction: DefaultPortraitFraction,
		Aspect:           DefaultAspect,
		LongEdge:         DefaultLongEdge,
		Background:       bg,
		Foreground:       fg,
	}
}

// Validate checks ranges and the aspect ratio format.
func (o Options) Validate() error {
	if o.Dir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "output directory is required")
	}
	if o.Count < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "count must be at least 1, got %d", o.Count)
	}
	if o.PortraitFraction < 0 || o.PortraitFraction > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "portrait fraction must be between 0 and 1, got %v", o.PortraitFraction)
	}
	if o.LongEdge < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "long edge must be positive, got %d", o.LongEdge)
	}
	_, _, err := ParseAspect(o.Aspect)
	return err
}

// =============================================================================
// Parsing
// =============================================================================

// ParseAspect parses an "H:V" aspect ratio such as "3:2".
func ParseAspect(s string) (h, v int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "invalid aspect ratio %q: use H:V (e.g. 3:2)", s)
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	v, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || h <= 0 || v <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "invalid aspect ratio %q: use positive integers H:V", s)
	}
	return h, v, nil
}

var namedColors = map[string]color.NRGBA{
	"darkgray":  {64, 64, 64, 255},
	"lightgray": {192, 192, 192, 255},
	"white":     {255, 255, 255, 255},
	"black":     {0, 0, 0, 255},
	"red":       {255, 0, 0, 255},
	"green":     {0, 255, 0, 255},
	"blue":      {0, 0, 255, 255},
}

// ParseColor accepts #RRGGBB, #RGB, "R,G,B" or a color name. Names are
// case-insensitive and may be written with a space or underscore
// ("dark_gray").
func ParseColor(s string) (color.NRGBA, error) {
	bad := errors.New(errors.ErrCodeInvalidInput, "unknown color %q", s)

	if hex, ok := strings.CutPrefix(s, "#"); ok {
		switch len(hex) {
		case 3:
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		case 6:
		default:
			return color.NRGBA{}, bad
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, bad
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}

	if parts := strings.Split(s, ","); len(parts) == 3 {
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.NRGBA{}, bad
			}
			rgb[i] = uint8(n)
		}
		return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
	}

	name := strings.NewReplacer(" ", "", "_", "").Replace(strings.ToLower(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}
	return color.NRGBA{}, bad
}

// =============================================================================
// Generation
// =============================================================================

// Frame returns the landscape and portrait frame sizes for an aspect ratio
// and long edge. The landscape frame always has the long edge horizontal;
// portrait is the same frame rotated.
func Frame(aspectH, aspectV, longEdge int) (landscape, portrait image.Point) {
	aspect := float64(aspectH) / float64(aspectV)
	landscape = image.Pt(longEdge, int(float64(longEdge)/aspect))
	return landscape, image.Pt(landscape.Y, landscape.X)
}

// Progress is called after each image is written.
type Progress func(done, total int, it item.Item)

// Generate writes opts.Count numbered JPEG images and the items file into
// opts.Dir and returns the generated items.
func Generate(ctx context.Context, opts Options, progress Progress) ([]item.Item, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	h, v, _ := ParseAspect(opts.Aspect)
	landscape, portrait := Frame(h, v, opts.LongEdge)
	if landscape.Y < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "aspect %s leaves no height at long edge %d", opts.Aspect, opts.LongEdge)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	face, err := newFaceCache()
	if err != nil {
		return nil, err
	}

	seed := uint64(time.Now().UnixNano())
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	items := make([]item.Item, 0, opts.Count)
	for i := 1; i <= opts.Count; i++ {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		size := landscape
		if rng.Float64() < opts.PortraitFraction {
			size = portrait
		}

		name := fmt.Sprintf("%04d.jpg", i)
		img := face.render(strconv.Itoa(i), size, opts.Background, opts.Foreground)
		if err := imaging.Save(img, filepath.Join(opts.Dir, name), imaging.JPEGQuality(jpegQuality)); err != nil {
			return items, fmt.Errorf("write %s: %w", name, err)
		}

		it := item.Item{
			ID:          fmt.Sprintf("%04d", i),
			Kind:        item.KindImage,
			Src:         name,
			Width:       float64(size.X),
			Height:      float64(size.Y),
			AspectRatio: float64(size.X) / float64(size.Y),
		}
		items = append(items, it)
		if progress != nil {
			progress(i, opts.Count, it)
		}
	}

	if err := item.WriteItemsFile(items, filepath.Join(opts.Dir, ItemsFile)); err != nil {
		return items, fmt.Errorf("write %s: %w", ItemsFile, err)
	}
	return items, nil
}

// =============================================================================
// Label rendering
// =============================================================================

// faceCache keeps one parsed font and the faces built from it by size.
type faceCache struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newFaceCache() (*faceCache, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse label font")
	}
	return &faceCache{font: f, faces: map[int]font.Face{}}, nil
}

func (c *faceCache) face(size int) font.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil
	}
	c.faces[size] = f
	return f
}

// fit returns the largest face whose rendering of text fits in box, and
// the text bounds at that size.
func (c *faceCache) fit(text string, box image.Point) (font.Face, fixed.Rectangle26_6) {
	lo, hi := minFontSize, 2*min(box.X, box.Y)
	best := minFontSize
	for lo <= hi {
		mid := (lo + hi) / 2
		f := c.face(mid)
		if f == nil {
			hi = mid - 1
			continue
		}
		b, _ := font.BoundString(f, text)
		if (b.Max.X-b.Min.X).Ceil() <= box.X && (b.Max.Y-b.Min.Y).Ceil() <= box.Y {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	f := c.face(best)
	if f == nil {
		return nil, fixed.Rectangle26_6{}
	}
	b, _ := font.BoundString(f, text)
	return f, b
}

// render draws text centered on a flat background.
func (c *faceCache) render(text string, size image.Point, bg, fg color.NRGBA) *image.NRGBA {
	img := imaging.New(size.X, size.Y, bg)
	box := image.Pt(int(float64(size.X)*labelFill), int(float64(size.Y)*labelFill))

	f, b := c.fit(text, box)
	if f == nil {
		return img
	}
	tw := (b.Max.X - b.Min.X).Ceil()
	th := (b.Max.Y - b.Min.Y).Ceil()
	x := (size.X-tw)/2 - b.Min.X.Floor()
	y := (size.Y-th)/2 - b.Min.Y.Floor()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: f,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	return img
}
