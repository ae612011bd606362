/*
Package bucket implements single-process admission control with the token
bucket algorithm.

A bucket is built from two static parameters: maxTokens, the largest burst
it admits, and interval, the time it takes to refill maxTokens tokens. Each
call to Accept passes a timestamp in a unit of the caller's choosing and gets
back whether the call is admitted. Capacity accrues continuously, so a bucket
of 3 tokens per 10 units admits roughly one call every 3.3 units once its
burst is spent.

Four encodings of the same state are provided:

  - FloatBucket keeps a real-valued token count. It is the easiest to read.
  - IntBucket keeps fractional tokens as integer "token-time" so that long
    runs do not drift.
  - IntBucketCombined folds IntBucket's two fields into one uint64.
  - IntBucketCombinedMT is the packed encoding updated with a
    compare-and-swap loop. It is the only variant safe for concurrent use.

All variants start drained as of time zero: the first call is admitted only
once timestamp*maxTokens reaches interval.

	b := bucket.New(bucket.KindCombinedMT, 3, 10)
	b.Accept(10000) // true
	b.Accept(10000) // true
	b.Accept(10000) // true
	b.Accept(10000) // false

Timestamps must never let maxTokens*timestamp or maxTokens*interval overflow
64 bits; CheckHeadroom reports whether a configuration is safe for a given
horizon. Timed binds a bucket to a Clock in milliseconds so callers need not
pass timestamps themselves.
*/
package bucket
