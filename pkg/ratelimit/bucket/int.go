package bucket

// IntBucket tracks fractional tokens as token-time: one token is worth
// interval units, and every unit of elapsed time adds maxTokens units.
// Integer arithmetic keeps long runs free of rounding drift.
//
// IntBucket is not safe for concurrent use.
type IntBucket struct {
	maxTokens uint64
	interval  uint64

	// tokenTime stays in [0, interval) between calls.
	tokenTime    uint64
	lastFillTime uint64
}

// NewIntBucket creates an IntBucket that is drained as of time zero.
func NewIntBucket(maxTokens, interval uint64) (*IntBucket, error) {
	if err := validate(interval); err != nil {
		return nil, err
	}
	return newIntBucket(maxTokens, interval), nil
}

func newIntBucket(maxTokens, interval uint64) *IntBucket {
	return &IntBucket{maxTokens: maxTokens, interval: interval}
}

// Accept implements Bucket. Timestamps earlier than the last admitted one
// are treated as equal to it.
func (b *IntBucket) Accept(timestamp uint64) bool {
	timestamp = max(timestamp, b.lastFillTime)

	deltaTokenTime := b.maxTokens * (timestamp - b.lastFillTime)
	newTokenTime := b.tokenTime + deltaTokenTime

	if newTokenTime < b.interval {
		return false
	}

	// Capping at a full bucket discards credit beyond maxTokens.
	b.tokenTime = min(b.maxTokens*b.interval, newTokenTime) - b.interval
	b.lastFillTime = timestamp
	return true
}

// MaxTokens implements Bucket.
func (b *IntBucket) MaxTokens() uint64 { return b.maxTokens }

// Interval implements Bucket.
func (b *IntBucket) Interval() uint64 { return b.interval }

// TokenTime returns the token-time left over after the last admitted call.
func (b *IntBucket) TokenTime() uint64 { return b.tokenTime }

// LastFillTime returns the timestamp of the last admitted call.
func (b *IntBucket) LastFillTime() uint64 { return b.lastFillTime }
