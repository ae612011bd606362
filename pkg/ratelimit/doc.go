/*
Package ratelimit groups the token-bucket rate limiters.

  - bucket: the four bucket encodings, the clock adapter and the metrics
    decorator
  - registry: named buckets built once at startup, YAML configuration and a
    periodic stats reporter

A bucket holds at most MaxTokens tokens and refills MaxTokens every Interval.
Each admitted call consumes one token; a call that finds less than one
token is rejected without changing the bucket.

	b := bucket.New(bucket.KindInt, 3, 10) // 3 calls per 10 time units
	b.Accept(10000) // true
*/
package ratelimit
