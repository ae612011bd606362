package bucket

import "sync"

type synchronized struct {
	mu     sync.Mutex
	bucket Bucket
}

// Synchronized returns a Bucket whose Accept calls are serialised with a
// mutex, making any encoding safe to share. Buckets that are already safe
// for concurrent use are returned unchanged.
func Synchronized(b Bucket) Bucket {
	if IsConcurrent(b) {
		return b
	}
	return &synchronized{bucket: b}
}

// IsConcurrent reports whether b may be shared between goroutines without
// external locking.
func IsConcurrent(b Bucket) bool {
	switch v := b.(type) {
	case *IntBucketCombinedMT, *synchronized:
		return true
	case *MetricsBucket:
		return IsConcurrent(v.bucket)
	default:
		return false
	}
}

func (s *synchronized) Accept(timestamp uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bucket.Accept(timestamp)
}

func (s *synchronized) MaxTokens() uint64 { return s.bucket.MaxTokens() }

func (s *synchronized) Interval() uint64 { return s.bucket.Interval() }
