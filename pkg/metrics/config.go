package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every collector name.
const DefaultNamespace = "ratebucket"

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, uses DefaultRegistry.
	Registry prometheus.Registerer

	// Namespace overrides the default "ratebucket" namespace for metrics.
	Namespace string
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
	}
}

type registryKey struct {
	reg       prometheus.Registerer
	namespace string
}

var (
	registriesMu sync.Mutex
	registries   = map[registryKey]*Registry{}
)

// Build returns the Registry described by c. Collectors are registered once
// per (registerer, namespace) pair, so any number of components may share a
// Config without tripping duplicate registration.
func (c Config) Build() *Registry {
	reg := c.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := c.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == prometheus.DefaultRegisterer && namespace == DefaultNamespace {
		return DefaultRegistry
	}

	registriesMu.Lock()
	defer registriesMu.Unlock()

	key := registryKey{reg: reg, namespace: namespace}
	if r, ok := registries[key]; ok {
		return r
	}
	r := NewRegistryWithNamespace(reg, namespace)
	registries[key] = r
	return r
}

// Instrumentable is an interface for components that can be instrumented with metrics.
type Instrumentable interface {
	// EnableMetrics enables metrics collection for this component.
	EnableMetrics(config Config) error

	// DisableMetrics disables metrics collection for this component.
	DisableMetrics()

	// MetricsEnabled returns true if metrics are currently enabled.
	MetricsEnabled() bool
}
