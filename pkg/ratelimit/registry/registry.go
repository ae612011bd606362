package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	gferrors "github.com/vnykmshr/ratebucket/pkg/common/errors"
	"github.com/vnykmshr/ratebucket/pkg/common/validation"
	"github.com/vnykmshr/ratebucket/pkg/metrics"
	"github.com/vnykmshr/ratebucket/pkg/ratelimit/bucket"
)

var (
	// ErrUnknownBucket is returned when a name has not been registered.
	ErrUnknownBucket = fmt.Errorf("unknown bucket: %w", gferrors.ErrNotFound)

	// ErrAlreadyRegistered is returned when a name is registered twice.
	ErrAlreadyRegistered = fmt.Errorf("bucket already registered: %w", gferrors.ErrAlreadyExists)
)

// Horizon is the latest wall-clock millisecond registered buckets are
// guaranteed to handle without overflow, roughly the year 2248.
const Horizon = uint64(1) << 43

// Spec describes a bucket to register.
type Spec struct {
	// MaxTokens is the burst size. Zero is allowed and never admits.
	MaxTokens uint64

	// Interval is the time needed to refill MaxTokens tokens, at least 1ms.
	Interval time.Duration

	// Kind selects the encoding. The zero value is bucket.KindCombinedMT.
	// Encodings that are not safe for concurrent use are wrapped with
	// bucket.Synchronized.
	Kind bucket.Kind
}

// Stats is a snapshot of one bucket's counters.
type Stats struct {
	Name      string
	Kind      bucket.Kind
	MaxTokens uint64
	Interval  time.Duration
	Accepted  uint64
	Rejected  uint64
}

type entry struct {
	name     string
	spec     Spec
	timed    *bucket.Timed
	accepted atomic.Uint64
	rejected atomic.Uint64
}

// Registry holds named buckets. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	clock   bucket.Clock
	logger  *slog.Logger
	metrics metrics.Config
	gauge   *metrics.Registry
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock every registered bucket reads.
func WithClock(c bucket.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithLogger sets the logger used for registration events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithMetrics instruments every registered bucket with Prometheus counters.
func WithMetrics(cfg metrics.Config) Option {
	return func(r *Registry) {
		r.metrics = cfg
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		clock:   bucket.SystemClock{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics.Enabled {
		r.gauge = r.metrics.Build()
	}
	return r
}

// Register creates a bucket under name.
func (r *Registry) Register(name string, spec Spec) (*bucket.Timed, error) {
	if err := validation.ValidateNotEmpty("registry", "name", name); err != nil {
		return nil, err
	}
	interval, err := bucket.IntervalMillis(spec.Interval)
	if err != nil {
		return nil, err
	}
	if err := bucket.CheckHeadroom(spec.MaxTokens, interval, Horizon); err != nil {
		return nil, err
	}
	b, err := bucket.NewSafe(spec.Kind, spec.MaxTokens, interval)
	if err != nil {
		return nil, err
	}

	b = bucket.Synchronized(b)
	if r.metrics.Enabled {
		b = bucket.NewMetricsBucket(b, name, r.metrics)
	}
	e := &entry{
		name:  name,
		spec:  spec,
		timed: bucket.NewTimed(b, r.clock),
	}

	r.mu.Lock()
	if _, exists := r.entries[name]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.entries[name] = e
	if r.gauge != nil {
		r.gauge.BucketsRegistered.Set(float64(len(r.entries)))
	}
	r.mu.Unlock()

	r.logger.Info("bucket registered",
		"name", name,
		"kind", spec.Kind.String(),
		"max_tokens", spec.MaxTokens,
		"interval", spec.Interval)
	return e.timed, nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, spec Spec) *bucket.Timed {
	t, err := r.Register(name, spec)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *Registry) lookup(name string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, name)
	}
	return e, nil
}

// Get returns the bucket registered under name.
func (r *Registry) Get(name string) (*bucket.Timed, error) {
	e, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return e.timed, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered buckets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Allow reports whether a call to the named bucket made now is admitted.
func (r *Registry) Allow(name string) (bool, error) {
	e, err := r.lookup(name)
	if err != nil {
		return false, err
	}
	return e.allow(), nil
}

// Check is Allow that reports a rejection as an error wrapping
// errors.ErrRateLimited.
func (r *Registry) Check(name string) error {
	ok, err := r.Allow(name)
	if err != nil {
		return err
	}
	if !ok {
		return gferrors.NewOperationError("registry", "Check", gferrors.ErrRateLimited).
			WithContext("bucket=" + name)
	}
	return nil
}

// Do runs fn only if the named bucket admits the call, and reports whether
// it ran.
func (r *Registry) Do(name string, fn func()) (bool, error) {
	if fn == nil {
		return false, errors.New("registry: fn cannot be nil")
	}
	e, err := r.lookup(name)
	if err != nil {
		return false, err
	}
	if !e.allow() {
		return false, nil
	}
	fn()
	return true, nil
}

// Stats returns a snapshot of every bucket's counters, sorted by name.
func (r *Registry) Stats() []Stats {
	r.mu.RLock()
	out := make([]Stats, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.stats())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (e *entry) allow() bool {
	if e.timed.Allow() {
		e.accepted.Add(1)
		return true
	}
	e.rejected.Add(1)
	return false
}

func (e *entry) stats() Stats {
	return Stats{
		Name:      e.name,
		Kind:      e.spec.Kind,
		MaxTokens: e.spec.MaxTokens,
		Interval:  e.spec.Interval,
		Accepted:  e.accepted.Load(),
		Rejected:  e.rejected.Load(),
	}
}
