package registry

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	gferrors "github.com/vnykmshr/ratebucket/pkg/common/errors"
	"github.com/vnykmshr/ratebucket/pkg/ratelimit/bucket"
)

// DefaultReportSchedule is used when a report section omits its schedule.
const DefaultReportSchedule = "@every 30s"

// Config is the YAML form of a set of buckets.
//
//	buckets:
//	  - name: stdout
//	    max_tokens: 3
//	    interval: 1s
//	  - name: api
//	    max_tokens: 100
//	    interval: 1m
//	    kind: int
//	report:
//	  enabled: true
//	  schedule: "@every 10s"
type Config struct {
	Buckets []BucketConfig `yaml:"buckets"`
	Report  ReportConfig   `yaml:"report"`
}

// BucketConfig describes one named bucket.
type BucketConfig struct {
	Name      string        `yaml:"name"`
	MaxTokens uint64        `yaml:"max_tokens"`
	Interval  time.Duration `yaml:"interval"`
	Kind      bucket.Kind   `yaml:"kind"`
}

// ReportConfig controls the periodic stats report.
type ReportConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Spec returns the registration spec for b.
func (b BucketConfig) Spec() Spec {
	return Spec{MaxTokens: b.MaxTokens, Interval: b.Interval, Kind: b.Kind}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML configuration. Unknown fields are
// rejected.
func ParseConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in omitted optional fields.
func (c *Config) ApplyDefaults() {
	if c.Report.Schedule == "" {
		c.Report.Schedule = DefaultReportSchedule
	}
}

// Validate checks every bucket and the report schedule.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Buckets))
	for i, b := range c.Buckets {
		if b.Name == "" {
			return gferrors.NewValidationError("registry", fmt.Sprintf("buckets[%d].name", i), b.Name, "cannot be empty")
		}
		if _, dup := seen[b.Name]; dup {
			return gferrors.NewValidationError("registry", "name", b.Name, "duplicate bucket name").
				WithHint("bucket names must be unique")
		}
		seen[b.Name] = struct{}{}

		interval, err := bucket.IntervalMillis(b.Interval)
		if err != nil {
			return fmt.Errorf("bucket %q: %w", b.Name, err)
		}
		if err := bucket.CheckHeadroom(b.MaxTokens, interval, Horizon); err != nil {
			return fmt.Errorf("bucket %q: %w", b.Name, err)
		}
	}
	if c.Report.Enabled {
		if _, err := ParseSchedule(c.Report.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// FromConfig builds a Registry holding every bucket in cfg.
func FromConfig(cfg *Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := New(opts...)
	for _, b := range cfg.Buckets {
		if _, err := r.Register(b.Name, b.Spec()); err != nil {
			return nil, err
		}
	}
	return r, nil
}
