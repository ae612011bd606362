package validation

import (
	"math/bits"

	gferrors "github.com/vnykmshr/ratebucket/pkg/common/errors"
)

// ValidatePositiveUint validates that an unsigned value is positive (> 0).
// Returns a ValidationError if the value is zero.
func ValidatePositiveUint(module, field string, value uint64) error {
	if value == 0 {
		return gferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return gferrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// ValidateNoOverflow validates that a*b fits in 64 bits.
// field names the product being checked, e.g. "max_tokens*interval".
func ValidateNoOverflow(module, field string, a, b uint64) error {
	if hi, _ := bits.Mul64(a, b); hi != 0 {
		return gferrors.NewValidationError(module, field, [2]uint64{a, b}, "overflows uint64").
			WithHint("use a coarser timestamp unit or fewer tokens")
	}
	return nil
}
