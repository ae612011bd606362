package bucket

import (
	"strings"

	"github.com/vnykmshr/ratebucket/pkg/common/errors"
	"github.com/vnykmshr/ratebucket/pkg/common/validation"
)

// Bucket decides whether a call made at a given timestamp is admitted.
type Bucket interface {
	// Accept reports whether a call at timestamp is admitted, consuming one
	// token if so. A rejected call leaves the bucket unchanged.
	Accept(timestamp uint64) bool

	// MaxTokens returns the burst size.
	MaxTokens() uint64

	// Interval returns the time needed to refill MaxTokens tokens.
	Interval() uint64
}

// Kind selects a bucket encoding.
// The zero value is KindCombinedMT, the only encoding safe to share.
type Kind int

const (
	// KindCombinedMT is the lock-free packed encoding.
	KindCombinedMT Kind = iota
	// KindFloat is the floating-point accumulator.
	KindFloat
	// KindInt is the two-field integer accumulator.
	KindInt
	// KindCombined is the single-field integer accumulator.
	KindCombined
)

var kindNames = map[Kind]string{
	KindCombinedMT: "combined_mt",
	KindFloat:      "float",
	KindInt:        "int",
	KindCombined:   "combined",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Concurrent reports whether buckets of this kind may be shared between
// goroutines without external locking.
func (k Kind) Concurrent() bool {
	return k == KindCombinedMT
}

// ParseKind parses the names produced by Kind.String. Matching is case
// insensitive and the empty string yields KindCombinedMT.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindCombinedMT, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, errors.NewValidationError("bucket", "kind", s, "unknown bucket kind").
		WithHint("use one of float, int, combined, combined_mt")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Set implements pflag.Value.
func (k *Kind) Set(s string) error {
	return k.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (k *Kind) Type() string {
	return "kind"
}

func validate(interval uint64) error {
	return validation.ValidatePositiveUint("bucket", "interval", interval)
}

// NewSafe creates a bucket of the given kind, returning an error instead of
// panicking when interval is zero or kind is unknown.
func NewSafe(kind Kind, maxTokens, interval uint64) (Bucket, error) {
	if err := validate(interval); err != nil {
		return nil, err
	}
	switch kind {
	case KindFloat:
		return newFloatBucket(maxTokens, interval), nil
	case KindInt:
		return newIntBucket(maxTokens, interval), nil
	case KindCombined:
		return newIntBucketCombined(maxTokens, interval), nil
	case KindCombinedMT:
		return newIntBucketCombinedMT(maxTokens, interval), nil
	default:
		return nil, errors.NewValidationError("bucket", "kind", int(kind), "unknown bucket kind")
	}
}

// New creates a bucket of the given kind and panics on invalid configuration.
func New(kind Kind, maxTokens, interval uint64) Bucket {
	b, err := NewSafe(kind, maxTokens, interval)
	if err != nil {
		panic(err)
	}
	return b
}
