// Package metrics provides Prometheus instrumentation for ratebucket components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for ratebucket components.
type Registry struct {
	RateLimitRequests   *prometheus.CounterVec
	RateLimitAllowed    *prometheus.CounterVec
	RateLimitDenied     *prometheus.CounterVec
	RateLimitCASRetries *prometheus.CounterVec
	BucketsRegistered   prometheus.Gauge
}

// DefaultRegistry is the default metrics registry used by ratebucket components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
// and the default namespace.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithNamespace(reg, DefaultNamespace)
}

// NewRegistryWithNamespace creates a metrics registry whose collectors live
// under namespace instead of the default.
func NewRegistryWithNamespace(reg prometheus.Registerer, namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)
	labels := []string{"limiter_type", "limiter_name"}

	return &Registry{
		RateLimitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "requests_total",
				Help:      "Total number of accept calls",
			},
			labels,
		),

		RateLimitAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "allowed_total",
				Help:      "Total number of accepted calls",
			},
			labels,
		),

		RateLimitDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "denied_total",
				Help:      "Total number of rejected calls",
			},
			labels,
		),

		RateLimitCASRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "cas_retries_total",
				Help:      "Total number of failed compare-and-swap attempts on lock-free buckets",
			},
			labels,
		),

		BucketsRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "buckets",
				Help:      "Number of named buckets in the registry",
			},
		),
	}
}
