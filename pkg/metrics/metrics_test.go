package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.RateLimitRequests.WithLabelValues("int", "api").Add(10)
	r.RateLimitAllowed.WithLabelValues("int", "api").Add(8)
	r.RateLimitDenied.WithLabelValues("int", "api").Add(2)
	r.BucketsRegistered.Set(3)

	if got := testutil.ToFloat64(r.RateLimitAllowed.WithLabelValues("int", "api")); got != 8 {
		t.Errorf("allowed = %v, want 8", got)
	}
	if got := testutil.ToFloat64(r.BucketsRegistered); got != 3 {
		t.Errorf("buckets = %v, want 3", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"ratebucket_ratelimit_requests_total",
		"ratebucket_ratelimit_allowed_total",
		"ratebucket_ratelimit_denied_total",
		"ratebucket_registry_buckets",
	} {
		if !names[want] {
			t.Errorf("missing metric family %s", want)
		}
	}
}

func TestNamespaceOverride(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := Config{Enabled: true, Registry: reg, Namespace: "myapp"}.Build()
	r.RateLimitCASRetries.WithLabelValues("combined_mt", "x").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "myapp_ratelimit_cas_retries_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected myapp_ratelimit_cas_retries_total")
	}
}

func TestConfigBuildDefault(t *testing.T) {
	if (Config{Enabled: true}).Build() != DefaultRegistry {
		t.Error("empty config should resolve to DefaultRegistry")
	}

	cfg := DefaultConfig()
	if !cfg.Enabled || cfg.Namespace != DefaultNamespace {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestConfigBuildShared(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := Config{Enabled: true, Registry: reg}

	first := cfg.Build()
	second := cfg.Build()
	if first != second {
		t.Error("Build should reuse collectors registered on the same registerer")
	}
	if DefaultConfig().Build() != DefaultRegistry {
		t.Error("DefaultConfig should resolve to DefaultRegistry")
	}
}
