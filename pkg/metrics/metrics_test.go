package metrics

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), encodePNG(t, w, h), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDecode(t *testing.T) {
	d, format, err := Decode(bytes.NewReader(encodePNG(t, 30, 20)))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if d != (Dimensions{Width: 30, Height: 20}) || format != "png" {
		t.Errorf("Decode() = %+v %q, want 30x20 png", d, format)
	}
	if d.AspectRatio() != 1.5 {
		t.Errorf("AspectRatio() = %v, want 1.5", d.AspectRatio())
	}

	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); !errors.Is(err, errors.ErrCodeLoad) {
		t.Errorf("Decode(garbage) error = %v, want LOAD_FAILED", err)
	}
}

func TestFileResolver(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 40, 10)
	r := NewFileResolver(dir)
	ctx := context.Background()

	d, err := r.Resolve(ctx, "a.png")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if d.Width != 40 || d.Height != 10 {
		t.Errorf("Resolve() = %+v, want 40x10", d)
	}

	abs, err := NewFileResolver("").Resolve(ctx, filepath.Join(dir, "a.png"))
	if err != nil || abs != d {
		t.Errorf("absolute path = %+v, %v", abs, err)
	}

	for _, src := range []string{"missing.png", "../a.png", ""} {
		if _, err := r.Resolve(ctx, src); !errors.Is(err, errors.ErrCodeLoad) {
			t.Errorf("Resolve(%q) error = %v, want LOAD_FAILED", src, err)
		}
	}
}

func TestFileResolverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileResolver(t.TempDir()).Resolve(ctx, "a.png"); !errors.Is(err, errors.ErrCodeLoad) {
		t.Errorf("Resolve() error = %v, want LOAD_FAILED", err)
	}
}

func TestHTTPResolver(t *testing.T) {
	img := encodePNG(t, 64, 48)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(img)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.Client())
	d, err := r.Resolve(context.Background(), srv.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if d.Width != 64 || d.Height != 48 {
		t.Errorf("Resolve() = %+v, want 64x48", d)
	}

	if _, err := r.Resolve(context.Background(), srv.URL+"/missing.png"); !errors.Is(err, errors.ErrCodeLoad) {
		t.Errorf("Resolve(404) error = %v, want LOAD_FAILED", err)
	}
}

func TestSchemeResolver(t *testing.T) {
	local := ResolverFunc(func(context.Context, string) (Dimensions, error) { return Dimensions{1, 1}, nil })
	remote := ResolverFunc(func(context.Context, string) (Dimensions, error) { return Dimensions{2, 1}, nil })
	r := NewSchemeResolver(local, remote)
	ctx := context.Background()

	if d, _ := r.Resolve(ctx, "HTTPS://cdn.example.com/a.jpg"); d.Width != 2 {
		t.Errorf("remote source went to %+v", d)
	}
	if d, _ := r.Resolve(ctx, "photos/a.jpg"); d.Width != 1 {
		t.Errorf("local source went to %+v", d)
	}
	if _, err := NewSchemeResolver(local, nil).Resolve(ctx, "http://x/a.jpg"); !errors.Is(err, errors.ErrCodeLoad) {
		t.Errorf("missing remote error = %v, want LOAD_FAILED", err)
	}
}

func TestCachedResolver(t *testing.T) {
	var calls atomic.Int32
	inner := ResolverFunc(func(_ context.Context, src string) (Dimensions, error) {
		calls.Add(1)
		if src == "bad.jpg" {
			return Dimensions{}, errors.New(errors.ErrCodeLoad, "boom")
		}
		return Dimensions{Width: 300, Height: 200}, nil
	})
	mem := cache.NewMemoryCache()
	r := NewCachedResolver(inner, mem, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := r.Resolve(ctx, "a.jpg")
		if err != nil || d.Width != 300 {
			t.Fatalf("Resolve() = %+v, %v", d, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("inner calls = %d, want 1", calls.Load())
	}

	for i := 0; i < 2; i++ {
		if _, err := r.Resolve(ctx, "bad.jpg"); err == nil {
			t.Error("expected error")
		}
	}
	if calls.Load() != 3 {
		t.Errorf("failures should not be cached: inner calls = %d, want 3", calls.Load())
	}
	if mem.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", mem.Len())
	}
}
