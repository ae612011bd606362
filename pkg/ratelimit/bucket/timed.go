package bucket

import (
	"time"

	"github.com/vnykmshr/ratebucket/pkg/common/errors"
)

// Config holds configuration options for creating a clock-driven bucket.
type Config struct {
	// Kind selects the encoding. The zero value is KindCombinedMT.
	Kind Kind

	// MaxTokens is the burst size.
	MaxTokens uint64

	// Interval is the time needed to refill MaxTokens tokens. It is truncated
	// to whole milliseconds and must be at least 1ms.
	Interval time.Duration

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock
}

// Timed binds a Bucket to a Clock, feeding it milliseconds since the Unix
// epoch. It is as safe for concurrent use as the bucket it wraps.
type Timed struct {
	bucket Bucket
	clock  Clock
}

// NewTimed wraps b. A nil clock means SystemClock.
func NewTimed(b Bucket, clock Clock) *Timed {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timed{bucket: b, clock: clock}
}

// NewWithConfigSafe creates a clock-driven bucket from config, returning an
// error instead of panicking.
func NewWithConfigSafe(config Config) (*Timed, error) {
	interval, err := IntervalMillis(config.Interval)
	if err != nil {
		return nil, err
	}
	b, err := NewSafe(config.Kind, config.MaxTokens, interval)
	if err != nil {
		return nil, err
	}
	return NewTimed(b, config.Clock), nil
}

// NewWithConfig is NewWithConfigSafe that panics on invalid configuration.
func NewWithConfig(config Config) *Timed {
	t, err := NewWithConfigSafe(config)
	if err != nil {
		panic(err)
	}
	return t
}

// IntervalMillis converts d to the whole milliseconds Timed buckets count in.
func IntervalMillis(d time.Duration) (uint64, error) {
	ms := d.Milliseconds()
	if ms < 1 {
		return 0, errors.NewValidationError("bucket", "interval", d, "must be at least 1ms").
			WithHint("clock-driven buckets count time in milliseconds")
	}
	return uint64(ms), nil
}

// Allow reports whether a call made now is admitted.
func (t *Timed) Allow() bool {
	return t.bucket.Accept(Millis(t.clock.Now()))
}

// Bucket returns the wrapped bucket.
func (t *Timed) Bucket() Bucket {
	return t.bucket
}
