package bucket

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/ratebucket/pkg/metrics"
)

// MetricsBucket wraps a Bucket with Prometheus metrics collection.
type MetricsBucket struct {
	bucket     Bucket
	name       string
	kind       string
	collectors atomic.Pointer[collectors]
	enabled    atomic.Bool
}

type collectors struct {
	requests prometheus.Counter
	allowed  prometheus.Counter
	denied   prometheus.Counter
	retries  prometheus.Counter
}

type retryReporter interface {
	AcceptWithRetries(timestamp uint64) (bool, int)
}

// NewMetricsBucket wraps b so that every Accept is counted under name. If
// config is disabled, b is returned as is.
func NewMetricsBucket(b Bucket, name string, config metrics.Config) Bucket {
	if !config.Enabled {
		return b
	}

	mb := &MetricsBucket{
		bucket: b,
		name:   name,
		kind:   KindOf(b),
	}
	mb.EnableMetrics(config)
	return mb
}

// KindOf returns the limiter_type label for b: the name of its Kind, or
// "custom" for implementations outside this package.
func KindOf(b Bucket) string {
	switch v := b.(type) {
	case *FloatBucket:
		return KindFloat.String()
	case *IntBucket:
		return KindInt.String()
	case *IntBucketCombined:
		return KindCombined.String()
	case *IntBucketCombinedMT:
		return KindCombinedMT.String()
	case *synchronized:
		return KindOf(v.bucket)
	case *MetricsBucket:
		return v.kind
	default:
		return "custom"
	}
}

// Accept implements Bucket.
func (mb *MetricsBucket) Accept(timestamp uint64) bool {
	if !mb.enabled.Load() {
		return mb.bucket.Accept(timestamp)
	}
	c := mb.collectors.Load()
	c.requests.Inc()

	var accepted bool
	if rr, ok := mb.bucket.(retryReporter); ok {
		var retries int
		accepted, retries = rr.AcceptWithRetries(timestamp)
		if retries > 0 {
			c.retries.Add(float64(retries))
		}
	} else {
		accepted = mb.bucket.Accept(timestamp)
	}

	if accepted {
		c.allowed.Inc()
	} else {
		c.denied.Inc()
	}
	return accepted
}

// MaxTokens implements Bucket.
func (mb *MetricsBucket) MaxTokens() uint64 { return mb.bucket.MaxTokens() }

// Interval implements Bucket.
func (mb *MetricsBucket) Interval() uint64 { return mb.bucket.Interval() }

// Unwrap returns the instrumented bucket.
func (mb *MetricsBucket) Unwrap() Bucket { return mb.bucket }

// EnableMetrics enables metrics collection.
func (mb *MetricsBucket) EnableMetrics(config metrics.Config) error {
	reg := config.Build()
	mb.collectors.Store(&collectors{
		requests: reg.RateLimitRequests.WithLabelValues(mb.kind, mb.name),
		allowed:  reg.RateLimitAllowed.WithLabelValues(mb.kind, mb.name),
		denied:   reg.RateLimitDenied.WithLabelValues(mb.kind, mb.name),
		retries:  reg.RateLimitCASRetries.WithLabelValues(mb.kind, mb.name),
	})
	mb.enabled.Store(config.Enabled)
	return nil
}

// DisableMetrics disables metrics collection.
func (mb *MetricsBucket) DisableMetrics() {
	mb.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mb *MetricsBucket) MetricsEnabled() bool {
	return mb.enabled.Load()
}

var _ metrics.Instrumentable = (*MetricsBucket)(nil)
