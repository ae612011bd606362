package bucket

// acceptThreshold stands in for 1 when comparing accrued float tokens;
// sums such as 0.1+0.3+0.3+0.3 fall just short of 1.
const acceptThreshold = 0.99

// FloatBucket keeps a real-valued token count. It is not safe for
// concurrent use.
type FloatBucket struct {
	maxTokens uint64
	interval  uint64

	tokens       float64
	lastFillTime uint64
}

// NewFloatBucket creates a FloatBucket that is drained as of time zero.
func NewFloatBucket(maxTokens, interval uint64) (*FloatBucket, error) {
	if err := validate(interval); err != nil {
		return nil, err
	}
	return newFloatBucket(maxTokens, interval), nil
}

func newFloatBucket(maxTokens, interval uint64) *FloatBucket {
	return &FloatBucket{maxTokens: maxTokens, interval: interval}
}

// Accept implements Bucket. Timestamps earlier than the last admitted one
// are treated as equal to it.
func (b *FloatBucket) Accept(timestamp uint64) bool {
	timestamp = max(timestamp, b.lastFillTime)

	deltaTime := timestamp - b.lastFillTime
	deltaTokens := float64(b.maxTokens) / float64(b.interval) * float64(deltaTime)

	if b.tokens+deltaTokens < acceptThreshold {
		return false
	}

	b.tokens = min(b.tokens+deltaTokens, float64(b.maxTokens)) - 1
	b.lastFillTime = timestamp
	return true
}

// MaxTokens implements Bucket.
func (b *FloatBucket) MaxTokens() uint64 { return b.maxTokens }

// Interval implements Bucket.
func (b *FloatBucket) Interval() uint64 { return b.interval }

// Tokens returns the tokens left over after the last admitted call.
func (b *FloatBucket) Tokens() float64 { return b.tokens }

// LastFillTime returns the timestamp of the last admitted call.
func (b *FloatBucket) LastFillTime() uint64 { return b.lastFillTime }
