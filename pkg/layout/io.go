package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Result - serialized layout output
// =============================================================================

// Result is the wire format for one computed layout: the strategy that
// produced it, the effective container width, the total height and the
// placements in input order.
type Result struct {
	Strategy       Strategy    `json:"strategy"`
	ContainerWidth float64     `json:"container_width"`
	Height         float64     `json:"height"`
	Params         Params      `json:"params"`
	Placements     []Placement `json:"placements"`
}

// NewResult bundles placements with the inputs that produced them.
func NewResult(s Strategy, width float64, p Params, ps []Placement) Result {
	if ps == nil {
		ps = []Placement{}
	}
	return Result{
		Strategy:       s,
		ContainerWidth: p.ContainerWidth(width),
		Height:         Extent(ps),
		Params:         p,
		Placements:     ps,
	}
}

// MarshalResult encodes r as indented JSON.
func MarshalResult(r Result) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return data, nil
}

// WriteResultFile writes r to path as indented JSON.
func WriteResultFile(r Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(r, f)
}

// WriteResult encodes r as indented JSON to w.
func WriteResult(r Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadResultFile reads a Result previously written by WriteResultFile.
func ReadResultFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResult(f)
}

// ReadResult decodes a Result from r.
func ReadResult(r io.Reader) (Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}
	if res.Strategy != "" && !res.Strategy.Valid() {
		return Result{}, fmt.Errorf("decode: unknown strategy %q", res.Strategy)
	}
	return res, nil
}
