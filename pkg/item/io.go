package item

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Items File API
// =============================================================================

// ReadInputsFile reads a JSON items file. The file holds either an array of
// inputs or an object with an "items" array.
func ReadInputsFile(path string) ([]Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadInputs(f)
}

// ReadInputs decodes JSON inputs from an io.Reader.
func ReadInputs(r io.Reader) ([]Input, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var list []Input
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Items []Input `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return wrapped.Items, nil
}

// WriteItemsFile writes items as an {"items": [...]} JSON document.
func WriteItemsFile(items []Item, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteItems(items, f)
}

// WriteItems encodes items as indented JSON.
func WriteItems(items []Item, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Items []Item `json:"items"`
	}{Items: items}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
