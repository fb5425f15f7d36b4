package errors

import (
	"math"
	"strings"
	"unicode"
)

const (
	maxSourceLength = 4096
	maxIDLength     = 256
)

// ValidateSource validates an item source (URL or file path).
//
// The rules are intentionally conservative:
//   - No empty sources
//   - No control characters or null bytes
//   - Maximum length of 4096 characters
//
// Whether the source can actually be loaded is decided later by the
// metrics resolver, not here.
func ValidateSource(src string) error {
	if strings.TrimSpace(src) == "" {
		return New(ErrCodeInvalidItem, "src cannot be empty")
	}
	if len(src) > maxSourceLength {
		return New(ErrCodeInvalidItem, "src too long (max %d characters)", maxSourceLength)
	}
	for _, r := range src {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "src contains invalid control characters")
		}
	}
	return nil
}

// ValidateID validates a caller-supplied item identifier.
func ValidateID(id string) error {
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidItem, "id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "id contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a file path relative to a base directory.
// It prevents path traversal out of the base directory.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}
	return nil
}

// ValidateFinite reports a CONFIGURATION error when v is NaN, infinite or
// (unless allowNegative) below zero.
func ValidateFinite(name string, v float64, allowNegative bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeConfiguration, "%s must be finite, got %v", name, v)
	}
	if !allowNegative && v < 0 {
		return New(ErrCodeConfiguration, "%s must be non-negative, got %v", name, v)
	}
	return nil
}
