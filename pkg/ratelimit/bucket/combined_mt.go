package bucket

import "sync/atomic"

// IntBucketCombinedMT is the packed encoding of IntBucketCombined held in an
// atomic word, so that Accept may be called from any number of goroutines
// without a lock.
//
// Accept loads the word, computes the successor the same way
// IntBucketCombined does and publishes it with CompareAndSwap. A failed swap
// means another caller committed first; the loop reloads and tries again.
// Rejections never write. When more callers race than there are tokens,
// exactly the available number succeed, in no particular order.
type IntBucketCombinedMT struct {
	maxTokens uint64
	interval  uint64

	// combined is only ever written by CompareAndSwap.
	combined atomic.Uint64
}

// NewIntBucketCombinedMT creates an IntBucketCombinedMT that is drained as
// of time zero.
func NewIntBucketCombinedMT(maxTokens, interval uint64) (*IntBucketCombinedMT, error) {
	if err := validate(interval); err != nil {
		return nil, err
	}
	return newIntBucketCombinedMT(maxTokens, interval), nil
}

func newIntBucketCombinedMT(maxTokens, interval uint64) *IntBucketCombinedMT {
	return &IntBucketCombinedMT{maxTokens: maxTokens, interval: interval}
}

// Accept implements Bucket. It is safe for concurrent use.
func (b *IntBucketCombinedMT) Accept(timestamp uint64) bool {
	accepted, _ := b.AcceptWithRetries(timestamp)
	return accepted
}

// AcceptWithRetries is Accept that also reports how many compare-and-swap
// attempts lost to a concurrent caller.
func (b *IntBucketCombinedMT) AcceptWithRetries(timestamp uint64) (accepted bool, retries int) {
	for {
		current := b.combined.Load()

		next, ok := step(b.maxTokens, b.interval, current, timestamp)
		if !ok {
			return false, retries
		}

		if b.combined.CompareAndSwap(current, next) {
			return true, retries
		}
		retries++
	}
}

// MaxTokens implements Bucket.
func (b *IntBucketCombinedMT) MaxTokens() uint64 { return b.maxTokens }

// Interval implements Bucket.
func (b *IntBucketCombinedMT) Interval() uint64 { return b.interval }

// Combined returns the packed state word.
func (b *IntBucketCombinedMT) Combined() uint64 { return b.combined.Load() }
