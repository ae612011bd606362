package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule parses a cron expression with an optional seconds field, or
// a descriptor such as "@every 30s" or "@hourly".
func ParseSchedule(expr string) (cron.Schedule, error) {
	if expr == "" {
		return nil, fmt.Errorf("report schedule cannot be empty")
	}
	s, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule '%s': %w", expr, err)
	}
	return s, nil
}

// Reporter periodically logs the counters of every bucket in a Registry.
type Reporter struct {
	registry *Registry
	logger   *slog.Logger
	schedule string

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewReporter creates a Reporter for r. An empty schedule means
// DefaultReportSchedule. A nil logger means the registry's logger.
func NewReporter(r *Registry, schedule string, logger *slog.Logger) (*Reporter, error) {
	if schedule == "" {
		schedule = DefaultReportSchedule
	}
	if logger == nil {
		logger = r.logger
	}
	if _, err := ParseSchedule(schedule); err != nil {
		return nil, err
	}
	return &Reporter{registry: r, logger: logger, schedule: schedule}, nil
}

// Start begins reporting on the schedule. Calling Start on a running
// Reporter has no effect.
func (rp *Reporter) Start() error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running {
		return nil
	}

	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(rp.schedule, rp.Report); err != nil {
		return fmt.Errorf("invalid report schedule '%s': %w", rp.schedule, err)
	}
	c.Start()
	rp.cron = c
	rp.running = true
	rp.logger.Debug("stats reporter started", "schedule", rp.schedule)
	return nil
}

// Stop halts reporting and waits for an in-flight report to finish or ctx
// to be done.
func (rp *Reporter) Stop(ctx context.Context) error {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return nil
	}
	c := rp.cron
	rp.cron = nil
	rp.running = false
	rp.mu.Unlock()

	select {
	case <-c.Stop().Done():
		rp.logger.Debug("stats reporter stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report logs one record per bucket immediately.
func (rp *Reporter) Report() {
	for _, s := range rp.registry.Stats() {
		rp.logger.Info("bucket stats",
			"name", s.Name,
			"kind", s.Kind.String(),
			"max_tokens", s.MaxTokens,
			"interval", s.Interval,
			"accepted", s.Accepted,
			"rejected", s.Rejected)
	}
}
