// Package metrics resolves the intrinsic pixel dimensions of image sources.
//
// Layout needs an aspect ratio for every image before it can be placed.
// Items that declare one are resolved at normalization time; the rest go
// through a [Resolver], which may be slow (disk or network) and is
// therefore always called with a context.
//
// Only the image header is decoded. Supported formats are GIF, JPEG and PNG
// from the standard library plus BMP, TIFF and WebP from golang.org/x/image.
//
// Resolvers compose:
//
//	r := metrics.NewCachedResolver(
//	    metrics.NewSchemeResolver(metrics.NewFileResolver("photos"), metrics.NewHTTPResolver(nil)),
//	    fileCache, cache.NewDefaultKeyer(),
//	)
//	dims, err := r.Resolve(ctx, "https://example.com/a.jpg")
package metrics

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/flowgrid/pkg/errors"
)

// Dimensions is an image's intrinsic size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AspectRatio returns Width/Height.
func (d Dimensions) AspectRatio() float64 {
	return float64(d.Width) / float64(d.Height)
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Resolver measures an image source. Failures carry errors.ErrCodeLoad.
type Resolver interface {
	Resolve(ctx context.Context, src string) (Dimensions, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, src string) (Dimensions, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, src string) (Dimensions, error) {
	return f(ctx, src)
}

// Decode reads an image header from r and returns its dimensions.
func Decode(r io.Reader) (Dimensions, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, "", errors.Wrap(errors.ErrCodeLoad, err, "decode image header")
	}
	d := Dimensions{Width: cfg.Width, Height: cfg.Height}
	if !d.Valid() {
		return Dimensions{}, format, errors.New(errors.ErrCodeLoad, "image has empty dimensions %dx%d", d.Width, d.Height)
	}
	return d, format, nil
}
