package layout

import (
	"math"

	"github.com/matzehuels/flowgrid/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTargetRowHeight is the row height justified layout aims for.
	DefaultTargetRowHeight = 240.0

	// DefaultMinColumnWidth drives the masonry column count when no fixed
	// column count is configured.
	DefaultMinColumnWidth = 240.0

	// DefaultSquareColumns is the square grid column count.
	DefaultSquareColumns = 3

	// DefaultLastRow is how justified layout treats a trailing row that
	// never reached the target height.
	DefaultLastRow = LastRowLeft
)

// LastRow selects how justified layout renders its leftover row.
type LastRow string

const (
	// LastRowJustify stretches the leftover row to the full width, unless
	// that would exceed MaxRowHeight, in which case it is rendered at
	// MaxRowHeight and left-aligned.
	LastRowJustify LastRow = "justify"

	// LastRowLeft renders the leftover row at the target height, left-aligned.
	LastRowLeft LastRow = "left"

	// LastRowHide omits the leftover row from the output.
	LastRowHide LastRow = "hide"
)

// Valid reports whether l is a known behavior.
func (l LastRow) Valid() bool {
	switch l {
	case LastRowJustify, LastRowLeft, LastRowHide:
		return true
	}
	return false
}

// =============================================================================
// Params - the effective option record a strategy reads
// =============================================================================

// Params is the flat, fully resolved option set passed to a strategy.
type Params struct {
	Gutter          float64 `json:"gutter"`
	MaxWidth        float64 `json:"max_width,omitempty"`
	TargetRowHeight float64 `json:"target_row_height"`
	MaxRowHeight    float64 `json:"max_row_height,omitempty"`
	LastRow         LastRow `json:"last_row"`
	Columns         int     `json:"columns,omitempty"`
	MinColumnWidth  float64 `json:"min_column_width"`
	Padding         float64 `json:"padding,omitempty"`
	ViewportHeight  float64 `json:"viewport_height,omitempty"`
}

// DefaultParams returns the built-in defaults.
func DefaultParams() Params {
	return Params{
		TargetRowHeight: DefaultTargetRowHeight,
		LastRow:         DefaultLastRow,
		MinColumnWidth:  DefaultMinColumnWidth,
	}
}

// Validate checks every field for range errors.
func (p Params) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"gutter", p.Gutter},
		{"max_width", p.MaxWidth},
		{"max_row_height", p.MaxRowHeight},
		{"padding", p.Padding},
		{"viewport_height", p.ViewportHeight},
	}
	for _, c := range checks {
		if err := errors.ValidateFinite(c.name, c.v, false); err != nil {
			return err
		}
	}
	if err := errors.ValidateFinite("target_row_height", p.TargetRowHeight, false); err != nil {
		return err
	}
	if p.TargetRowHeight <= 0 {
		return errors.Configuration("target_row_height must be positive, got %v", p.TargetRowHeight)
	}
	if p.MaxRowHeight > 0 && p.MaxRowHeight < p.TargetRowHeight {
		return errors.Configuration("max_row_height (%v) must not be below target_row_height (%v)", p.MaxRowHeight, p.TargetRowHeight)
	}
	if !p.LastRow.Valid() {
		return errors.Configuration("invalid last_row: %q (must be one of: justify, left, hide)", p.LastRow)
	}
	if p.Columns < 0 {
		return errors.Configuration("columns must be non-negative, got %d", p.Columns)
	}
	if err := errors.ValidateFinite("min_column_width", p.MinColumnWidth, false); err != nil {
		return err
	}
	if p.MinColumnWidth <= 0 {
		return errors.Configuration("min_column_width must be positive, got %v", p.MinColumnWidth)
	}
	return nil
}

// ContainerWidth clamps width to MaxWidth when one is set.
func (p Params) ContainerWidth(width float64) float64 {
	if p.MaxWidth > 0 && width > p.MaxWidth {
		return p.MaxWidth
	}
	return width
}

// =============================================================================
// Overrides - partial option records
// =============================================================================

// Overrides is a partial Params: nil fields leave the underlying value
// untouched. Overrides are used for per-strategy option records, responsive
// breakpoints and Engine.SetOptions.
type Overrides struct {
	Gutter          *float64 `json:"gutter,omitempty" toml:"gutter,omitempty" yaml:"gutter,omitempty"`
	MaxWidth        *float64 `json:"max_width,omitempty" toml:"max_width,omitempty" yaml:"max_width,omitempty"`
	TargetRowHeight *float64 `json:"target_row_height,omitempty" toml:"target_row_height,omitempty" yaml:"target_row_height,omitempty"`
	MaxRowHeight    *float64 `json:"max_row_height,omitempty" toml:"max_row_height,omitempty" yaml:"max_row_height,omitempty"`
	LastRow         *LastRow `json:"last_row,omitempty" toml:"last_row,omitempty" yaml:"last_row,omitempty"`
	Columns         *int     `json:"columns,omitempty" toml:"columns,omitempty" yaml:"columns,omitempty"`
	MinColumnWidth  *float64 `json:"min_column_width,omitempty" toml:"min_column_width,omitempty" yaml:"min_column_width,omitempty"`
	Padding         *float64 `json:"padding,omitempty" toml:"padding,omitempty" yaml:"padding,omitempty"`
}

// Apply returns p with every set field of o written over it.
func (o Overrides) Apply(p Params) Params {
	setF(&p.Gutter, o.Gutter)
	setF(&p.MaxWidth, o.MaxWidth)
	setF(&p.TargetRowHeight, o.TargetRowHeight)
	setF(&p.MaxRowHeight, o.MaxRowHeight)
	setF(&p.MinColumnWidth, o.MinColumnWidth)
	setF(&p.Padding, o.Padding)
	if o.LastRow != nil {
		p.LastRow = *o.LastRow
	}
	if o.Columns != nil {
		p.Columns = *o.Columns
	}
	return p
}

// Merge returns o with every set field of other written over it.
func (o Overrides) Merge(other Overrides) Overrides {
	if other.Gutter != nil {
		o.Gutter = other.Gutter
	}
	if other.MaxWidth != nil {
		o.MaxWidth = other.MaxWidth
	}
	if other.TargetRowHeight != nil {
		o.TargetRowHeight = other.TargetRowHeight
	}
	if other.MaxRowHeight != nil {
		o.MaxRowHeight = other.MaxRowHeight
	}
	if other.LastRow != nil {
		o.LastRow = other.LastRow
	}
	if other.Columns != nil {
		o.Columns = other.Columns
	}
	if other.MinColumnWidth != nil {
		o.MinColumnWidth = other.MinColumnWidth
	}
	if other.Padding != nil {
		o.Padding = other.Padding
	}
	return o
}

// IsZero reports whether no field is set.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// Validate checks the set fields in isolation. Cross-field rules (such as
// max_row_height >= target_row_height) are checked on the resolved Params.
func (o Overrides) Validate() error {
	if o.MaxRowHeight != nil {
		if err := errors.ValidateFinite("max_row_height", *o.MaxRowHeight, false); err != nil {
			return err
		}
	}
	o.MaxRowHeight = nil
	return o.Apply(DefaultParams()).Validate()
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Float returns a pointer to v, for building Overrides literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building Overrides literals.
func Int(v int) *int { return &v }

// Last returns a pointer to v, for building Overrides literals.
func Last(v LastRow) *LastRow { return &v }

// =============================================================================
// Options - the configured option set
// =============================================================================

// Breakpoint maps a minimum container width to option overrides.
// A breakpoint applies when the container is at least Width wide.
type Breakpoint struct {
	Width     float64 `json:"width" toml:"width" yaml:"width"`
	Overrides `yaml:",inline"`
}

// Options is the full layout configuration: base values, per-strategy
// option records and the responsive breakpoint table.
type Options struct {
	Gutter     float64                `json:"gutter"`
	MaxWidth   float64                `json:"max_width,omitempty"`
	Layouts    map[Strategy]Overrides `json:"layouts,omitempty"`
	Responsive []Breakpoint           `json:"responsive,omitempty"`
}

// Validate checks base values and per-strategy records. The breakpoint
// table is validated by the responsive package.
func (o Options) Validate() error {
	if err := errors.ValidateFinite("gutter", o.Gutter, false); err != nil {
		return err
	}
	if err := errors.ValidateFinite("max_width", o.MaxWidth, false); err != nil {
		return err
	}
	for s, ov := range o.Layouts {
		if !s.Valid() {
			return errors.Configuration("unknown strategy in layouts: %q", s)
		}
		if err := ov.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "layouts.%s", s)
		}
	}
	return nil
}

// Params returns defaults overlaid with the base values and the record for
// strategy s. Responsive overrides are applied on top by the caller.
func (o Options) Params(s Strategy) Params {
	p := DefaultParams()
	p.Gutter = o.Gutter
	p.MaxWidth = o.MaxWidth
	if ov, ok := o.Layouts[s]; ok {
		p = ov.Apply(p)
	}
	return p
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	out := o
	if o.Layouts != nil {
		out.Layouts = make(map[Strategy]Overrides, len(o.Layouts))
		for k, v := range o.Layouts {
			out.Layouts[k] = v
		}
	}
	if o.Responsive != nil {
		out.Responsive = append([]Breakpoint(nil), o.Responsive...)
	}
	return out
}

// finite reports whether v is a usable, finite number.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
