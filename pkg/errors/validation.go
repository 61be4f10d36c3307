package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxNameLength bounds skeleton names and tags accepted at the boundary.
const MaxNameLength = 256

// ValidateName rejects empty, overlong or control-character names. It is
// applied to tag names passed on the command line or in API queries.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains control characters", kind)
		}
	}
	return nil
}

// ValidatePositive checks that v is a finite number greater than zero.
func ValidatePositive(kind string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidIncrement, "%s must be a positive number, got %v", kind, v)
	}
	return nil
}

// ValidateNonNegative checks that v is a finite number not below zero.
func ValidateNonNegative(kind string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %v", kind, v)
	}
	return nil
}
