package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/config"
)

// captureStdout redirects the print helpers to a buffer for one test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestCachePathCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	out := captureStdout(t)

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}

	want := filepath.Join(xdg, appName)
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	out := captureStdout(t)

	fc, err := cache.NewFileCache(filepath.Join(xdg, appName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "metrics:a", []byte(`{"width":1,"height":1}`), time.Hour); err != nil {
		t.Fatal(err)
	}

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, ok, _ := fc.Get(ctx, "metrics:a"); ok {
		t.Error("entry should be gone after clear")
	}
	if !strings.Contains(out.String(), "Cache cleared") {
		t.Errorf("output = %q, want success line", out.String())
	}
	if _, err := os.Stat(filepath.Join(xdg, appName)); err != nil {
		t.Errorf("cache root should survive clear: %v", err)
	}
}

func TestCacheClearEmpty(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureStdout(t)

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "Cache is empty") {
		t.Errorf("output = %q, want empty notice", out.String())
	}
}

func TestNewCacheBackends(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	tests := []struct {
		name    string
		sec     config.CacheSection
		noCache bool
		want    string
	}{
		{name: "flag disables", noCache: true, want: "*cache.NullCache"},
		{name: "config disables", sec: config.CacheSection{Disabled: true}, want: "*cache.NullCache"},
		{name: "default file", want: "*cache.FileCache"},
		{name: "configured dir", sec: config.CacheSection{Dir: t.TempDir()}, want: "*cache.FileCache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.sec, tt.noCache, "")
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer c.Close()
			if got := fmt.Sprintf("%T", c); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestServeCacheBackends(t *testing.T) {
	ctx := context.Background()

	c, err := serveCache(ctx, config.CacheSection{}, true, "")
	if err != nil {
		t.Fatalf("serveCache(no-cache) error: %v", err)
	}
	if got := fmt.Sprintf("%T", c); got != "*cache.NullCache" {
		t.Errorf("serveCache(no-cache) = %s, want *cache.NullCache", got)
	}

	c, err = serveCache(ctx, config.CacheSection{Dir: t.TempDir()}, false, "")
	if err != nil {
		t.Fatalf("serveCache() error: %v", err)
	}
	if c != nil {
		t.Errorf("serveCache() = %T, want nil for the server's memory cache", c)
	}
}
