package bucket

// IntBucketCombined is IntBucket with both fields folded into one word:
//
//	combined = maxTokens*lastFillTime - tokenTime
//
// max(maxTokens*timestamp, combined) both scales the timestamp into
// token-time and refuses to move backwards, so no separate lastFillTime is
// needed. IntBucketCombined is not safe for concurrent use; see
// IntBucketCombinedMT.
type IntBucketCombined struct {
	maxTokens uint64
	interval  uint64

	combined uint64
}

// NewIntBucketCombined creates an IntBucketCombined that is drained as of
// time zero.
func NewIntBucketCombined(maxTokens, interval uint64) (*IntBucketCombined, error) {
	if err := validate(interval); err != nil {
		return nil, err
	}
	return newIntBucketCombined(maxTokens, interval), nil
}

func newIntBucketCombined(maxTokens, interval uint64) *IntBucketCombined {
	return &IntBucketCombined{maxTokens: maxTokens, interval: interval}
}

// Accept implements Bucket.
func (b *IntBucketCombined) Accept(timestamp uint64) bool {
	next, ok := step(b.maxTokens, b.interval, b.combined, timestamp)
	if ok {
		b.combined = next
	}
	return ok
}

// MaxTokens implements Bucket.
func (b *IntBucketCombined) MaxTokens() uint64 { return b.maxTokens }

// Interval implements Bucket.
func (b *IntBucketCombined) Interval() uint64 { return b.interval }

// Combined returns the packed state word.
func (b *IntBucketCombined) Combined() uint64 { return b.combined }

// step computes the state that follows combined after a call at timestamp.
// ok is false, and next equals combined, when less than one token has accrued.
func step(maxTokens, interval, combined, timestamp uint64) (next uint64, ok bool) {
	inflated := max(maxTokens*timestamp, combined)

	newTokenTime := inflated - combined
	if newTokenTime < interval {
		return combined, false
	}

	tokenTime := min(maxTokens*interval, newTokenTime) - interval
	return inflated - tokenTime, true
}
