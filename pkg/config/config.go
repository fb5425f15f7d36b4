// Package config loads flowgrid configuration files.
//
// A configuration file is TOML, YAML or JSON, selected by extension. All
// three share one schema:
//
//	strategy = "justified"
//	gutter = 8
//	max_width = 1600
//	debounce = "50ms"
//
//	[layouts.justified]
//	target_row_height = 260
//	last_row = "left"
//
//	[layouts.masonry]
//	min_column_width = 280
//
//	[[responsive]]
//	width = 0
//	gutter = 4
//
//	[[responsive]]
//	width = 768
//	gutter = 8
//
// Zero values mean "unspecified": the layout package defaults apply.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowgrid/pkg/cache"
	"github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/layout"
	"github.com/matzehuels/flowgrid/pkg/responsive"
)

// File is the on-disk configuration schema.
type File struct {
	Strategy   string                      `json:"strategy,omitempty" toml:"strategy" yaml:"strategy"`
	Gutter     float64                     `json:"gutter,omitempty" toml:"gutter" yaml:"gutter"`
	MaxWidth   float64                     `json:"max_width,omitempty" toml:"max_width" yaml:"max_width"`
	Debounce   string                      `json:"debounce,omitempty" toml:"debounce" yaml:"debounce"`
	Layouts    map[string]layout.Overrides `json:"layouts,omitempty" toml:"layouts" yaml:"layouts"`
	Responsive []layout.Breakpoint         `json:"responsive,omitempty" toml:"responsive" yaml:"responsive"`

	Cache  CacheSection  `json:"cache,omitempty" toml:"cache" yaml:"cache"`
	Server ServerSection `json:"server,omitempty" toml:"server" yaml:"server"`
}

// CacheSection configures the image-metrics cache.
type CacheSection struct {
	// Disabled turns caching off entirely.
	Disabled bool `json:"disabled,omitempty" toml:"disabled" yaml:"disabled"`

	// Dir overrides the file cache directory.
	Dir string `json:"dir,omitempty" toml:"dir" yaml:"dir"`

	// Redis, when Addr is set, replaces the file cache.
	Redis cache.RedisConfig `json:"redis,omitempty" toml:"redis" yaml:"redis"`
}

// ServerSection configures `flowgrid serve`.
type ServerSection struct {
	Addr string `json:"addr,omitempty" toml:"addr" yaml:"addr"`
}

// Load reads a configuration file based on its extension.
// Supports: .toml, .yaml/.yml, .json
func Load(path string) (File, error) {
	var f File
	if path == "" {
		return f, errors.New(errors.ErrCodeInvalidPath, "empty config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, &f)
	case ".yaml", ".yml":
		err = decodeYAML(data, &f)
	case ".json":
		err = decodeJSON(data, &f)
	default:
		return f, errors.New(errors.ErrCodeInvalidFormat, "unsupported config extension: %q", ext)
	}
	if err != nil {
		return f, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", filepath.Base(path))
	}
	return f, nil
}

func decodeTOML(data []byte, f *File) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func decodeJSON(data []byte, f *File) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(f)
}

// StrategyValue returns the configured strategy, or layout.DefaultStrategy
// when none is set.
func (f File) StrategyValue() (layout.Strategy, error) {
	if f.Strategy == "" {
		return layout.DefaultStrategy, nil
	}
	return layout.ParseStrategy(f.Strategy)
}

// DebounceValue returns the configured resize debounce window. Zero means
// the engine default.
func (f File) DebounceValue() (time.Duration, error) {
	if f.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Debounce)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeConfiguration, err, "invalid debounce %q", f.Debounce)
	}
	if d < 0 {
		return 0, errors.Configuration("debounce must be non-negative, got %s", d)
	}
	return d, nil
}

// Options converts the file into validated layout options.
func (f File) Options() (layout.Options, error) {
	opts := layout.Options{
		Gutter:     f.Gutter,
		MaxWidth:   f.MaxWidth,
		Responsive: f.Responsive,
	}
	if len(f.Layouts) > 0 {
		opts.Layouts = make(map[layout.Strategy]layout.Overrides, len(f.Layouts))
		for name, ov := range f.Layouts {
			s, err := layout.ParseStrategy(name)
			if err != nil {
				return layout.Options{}, errors.Wrap(errors.ErrCodeConfiguration, err, "layouts")
			}
			opts.Layouts[s] = opts.Layouts[s].Merge(ov)
		}
	}
	if err := responsive.ValidateOptions(opts); err != nil {
		return layout.Options{}, err
	}
	return opts, nil
}

// Validate checks every section without converting.
func (f File) Validate() error {
	if _, err := f.StrategyValue(); err != nil {
		return err
	}
	if _, err := f.DebounceValue(); err != nil {
		return err
	}
	_, err := f.Options()
	return err
}
