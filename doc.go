/*
Package ratebucket provides local, single-process admission control using
the token-bucket algorithm.

Rate Limiting (pkg/ratelimit):
  - bucket: Token buckets in float, integer and packed-integer encodings,
    plus a lock-free packed variant for concurrent callers
  - registry: Named, long-lived buckets configured in code or YAML

Support packages:
  - metrics: Prometheus collectors for accept/reject counts
  - common/errors, common/validation: Configuration errors and checks

Example usage:

	import "github.com/vnykmshr/ratebucket/pkg/ratelimit/bucket"

	limiter := bucket.NewWithConfig(bucket.Config{
		MaxTokens: 20,
		Interval:  time.Second,
	})

	if limiter.Allow() {
		handle(req)
	}

The cmd/ratebucket tool replays timestamp sequences into any encoding,
stress-tests the lock-free bucket and rate limits output lines.
*/
package ratebucket
