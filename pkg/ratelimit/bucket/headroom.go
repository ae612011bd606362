package bucket

import (
	"math"

	"github.com/vnykmshr/ratebucket/pkg/common/validation"
)

// MaxTimestamp returns the largest timestamp t for which maxTokens*t fits in
// a uint64. Integer buckets give meaningless answers past it.
func MaxTimestamp(maxTokens uint64) uint64 {
	if maxTokens == 0 {
		return math.MaxUint64
	}
	return math.MaxUint64 / maxTokens
}

// CheckHeadroom reports whether a bucket of maxTokens per interval can be
// driven with timestamps up to horizon without overflowing. Accept itself
// never checks.
func CheckHeadroom(maxTokens, interval, horizon uint64) error {
	if err := validation.ValidateNoOverflow("bucket", "max_tokens*interval", maxTokens, interval); err != nil {
		return err
	}
	return validation.ValidateNoOverflow("bucket", "max_tokens*timestamp", maxTokens, horizon)
}
