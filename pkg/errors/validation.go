package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateSurfaceLabel validates a surface identifier before it is used in
// cache keys, reports and error messages.
//
// The rules are conservative:
//   - No empty labels
//   - No control characters
//   - Maximum length of 256 characters
func ValidateSurfaceLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "surface label cannot be empty")
	}

	if len(label) > 256 {
		return New(ErrCodeInvalidInput, "surface label too long (max 256 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "surface label contains invalid control characters")
		}
	}

	return nil
}

// MaxTarget is the largest accepted target R-value. Far below it float64
// still resolves the 0.01 validation tolerance.
const MaxTarget = 10000

// ValidateTarget checks that an assembly R-value target is a finite positive
// number no larger than MaxTarget.
func ValidateTarget(label string, target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return New(ErrCodeInvalidInput, "surface %q: target R-value must be finite", label)
	}
	if target <= 0 {
		return New(ErrCodeInvalidInput, "surface %q: target R-value must be positive, got %g", label, target)
	}
	if target > MaxTarget {
		return New(ErrCodeInvalidInput, "surface %q: target R-value %g exceeds R-%d", label, target, MaxTarget)
	}
	return nil
}

// ValidateNonNegative checks that a resistance-like quantity is finite and >= 0.
func ValidateNonNegative(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite", what)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must be non-negative, got %g", what, v)
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It prevents control characters and enforces a reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
