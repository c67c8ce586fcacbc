package errors

import (
	"math"
	"slices"
	"strings"
)

// ValidatePositive rejects values <= 0. The field name is used in the message.
func ValidatePositive(field string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be > 0, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative rejects values < 0.
func ValidateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return New(ErrCodeInvalidConfig, "%s must be >= 0, got %v", field, v)
	}
	return nil
}

// ValidateFraction requires 0 < v <= 1, as used by scale floors.
func ValidateFraction(field string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be in (0, 1], got %v", field, v)
	}
	return nil
}

// ValidateOrdered requires lo <= hi, e.g. a minimum card width that does not
// exceed the preferred width.
func ValidateOrdered(loField string, lo float64, hiField string, hi float64) error {
	if lo > hi {
		return New(ErrCodeInvalidConfig, "%s (%v) must not exceed %s (%v)", loField, lo, hiField, hi)
	}
	return nil
}

// ValidateOneOf checks that value is one of the allowed choices. An empty
// value is accepted when allowEmpty is set so callers can fall back to a default.
func ValidateOneOf(code Code, field, value string, allowEmpty bool, choices ...string) error {
	if value == "" && allowEmpty {
		return nil
	}
	if slices.Contains(choices, value) {
		return nil
	}
	return New(code, "invalid %s: %q (must be one of: %s)", field, value, strings.Join(choices, ", "))
}

// ValidateWidth rejects container widths that cannot be laid out. Widths
// that are merely too small for one card are still valid and produce
// fallback metrics; only NaN, infinities and negative values are rejected.
func ValidateWidth(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return New(ErrCodeInvalidWidth, "invalid container width: %v", w)
	}
	return nil
}
