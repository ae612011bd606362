// Package metrics provides Prometheus instrumentation for ratebucket components.
//
// # Quick Start
//
// Wrap a bucket with the metrics decorator:
//
//	b := bucket.NewMetricsBucket(bucket.New(bucket.KindCombinedMT, 10, 1000), "api", metrics.DefaultConfig())
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, typically in tests:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{Enabled: true, Registry: registry}
//
// # Available Metrics
//
//   - ratebucket_ratelimit_requests_total: Total number of accept calls
//   - ratebucket_ratelimit_allowed_total: Total number of accepted calls
//   - ratebucket_ratelimit_denied_total: Total number of rejected calls
//   - ratebucket_ratelimit_cas_retries_total: Failed compare-and-swap attempts
//   - ratebucket_registry_buckets: Number of named buckets in a registry
//
// # Labels
//
//   - limiter_type: "float", "int", "combined" or "combined_mt"
//   - limiter_name: User-provided name for the bucket
//
// Collectors are only touched when an operation occurs; there are no
// background goroutines.
package metrics
