package metrics

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/flowgrid/pkg/errors"
)

// FileResolver measures images on the local filesystem. Relative sources
// are resolved against BaseDir.
type FileResolver struct {
	BaseDir string
}

// NewFileResolver returns a FileResolver rooted at baseDir.
func NewFileResolver(baseDir string) *FileResolver {
	return &FileResolver{BaseDir: baseDir}
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(ctx context.Context, src string) (Dimensions, error) {
	if err := ctx.Err(); err != nil {
		return Dimensions{}, errors.Wrap(errors.ErrCodeLoad, err, "resolve %s", src)
	}
	if err := errors.ValidatePath(src); err != nil {
		return Dimensions{}, errors.Wrap(errors.ErrCodeLoad, err, "resolve %s", src)
	}

	path := src
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, errors.Wrap(errors.ErrCodeLoad, err, "open %s", src)
	}
	defer f.Close()

	d, _, err := Decode(f)
	if err != nil {
		return Dimensions{}, errors.Wrap(errors.ErrCodeLoad, err, "resolve %s", src)
	}
	return d, nil
}
