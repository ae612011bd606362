package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vnykmshr/ratebucket/pkg/metrics"
	"github.com/vnykmshr/ratebucket/pkg/ratelimit/bucket"
	"github.com/vnykmshr/ratebucket/pkg/ratelimit/registry"
)

type limitOptions struct {
	configPath  string
	name        string
	kind        bucket.Kind
	maxTokens   uint64
	interval    time.Duration
	duration    time.Duration
	poll        time.Duration
	metricsAddr string
	report      string
	message     string
}

func newLimitCmd(global *globalFlags) *cobra.Command {
	var opts limitOptions

	cmd := &cobra.Command{
		Use:   "limit",
		Short: "Print a line whenever a named bucket admits it",
		Long: `Loop forever, printing a line only when the named bucket admits the call.

Without --config a single bucket is built from --max-tokens, --interval and
--kind. With --config every bucket in the YAML file is registered and
--bucket selects the one that gates output.

Examples:
  # Two lines per half second
  ratebucket limit --max-tokens 2 --interval 500ms

  # Buckets from a file, metrics on :9090, stats logged every 10s
  ratebucket limit --config buckets.yaml --bucket api --metrics-addr :9090 --report "@every 10s"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := global.logger(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runLimit(ctx, cmd.OutOrStdout(), logger, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML bucket configuration file")
	f.StringVarP(&opts.name, "bucket", "b", "stdout", "bucket that gates output")
	f.Var(&opts.kind, "kind", "bucket encoding when no config file is given")
	f.Uint64Var(&opts.maxTokens, "max-tokens", 2, "burst size when no config file is given")
	f.DurationVar(&opts.interval, "interval", 500*time.Millisecond, "refill interval when no config file is given")
	f.DurationVar(&opts.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	f.DurationVar(&opts.poll, "poll", time.Millisecond, "pause between attempts (0 spins)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&opts.report, "report", "", "cron schedule for logging bucket stats, overrides the config file")
	f.StringVar(&opts.message, "message", "hello", "text printed on each admitted call")
	return cmd
}

func loadLimitConfig(opts limitOptions) (*registry.Config, error) {
	if opts.configPath != "" {
		return registry.LoadConfig(opts.configPath)
	}
	cfg := &registry.Config{
		Buckets: []registry.BucketConfig{{
			Name:      opts.name,
			MaxTokens: opts.maxTokens,
			Interval:  opts.interval,
			Kind:      opts.kind,
		}},
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func runLimit(ctx context.Context, out io.Writer, logger *slog.Logger, opts limitOptions) error {
	cfg, err := loadLimitConfig(opts)
	if err != nil {
		return err
	}
	if opts.report != "" {
		cfg.Report = registry.ReportConfig{Enabled: true, Schedule: opts.report}
	}

	regOpts := []registry.Option{registry.WithLogger(logger)}
	var promReg *prometheus.Registry
	if opts.metricsAddr != "" {
		promReg = prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		regOpts = append(regOpts, registry.WithMetrics(metrics.Config{
			Enabled:   true,
			Registry:  promReg,
			Namespace: metrics.DefaultNamespace,
		}))
	}

	reg, err := registry.FromConfig(cfg, regOpts...)
	if err != nil {
		return err
	}
	if _, err := reg.Get(opts.name); err != nil {
		return fmt.Errorf("%w (registered: %v)", err, reg.Names())
	}

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if promReg != nil {
		srv, err := startMetricsServer(opts.metricsAddr, promReg, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	if cfg.Report.Enabled {
		reporter, err := registry.NewReporter(reg, cfg.Report.Schedule, logger)
		if err != nil {
			return err
		}
		if err := reporter.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = reporter.Stop(stopCtx)
			reporter.Report()
		}()
	}

	logger.Info("limiting output", "bucket", opts.name)
	for ctx.Err() == nil {
		if _, err := reg.Do(opts.name, func() {
			fmt.Fprintf(out, "%s at %.6f\n", opts.message, float64(time.Now().UnixNano())/1e9)
		}); err != nil {
			return err
		}
		if opts.poll > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.poll):
			}
		}
	}
	return nil
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

func startMetricsServer(addr string, g prometheus.Gatherer, logger *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{
		Handler:           metricsHandler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "address", ln.Addr().String())
	return srv, nil
}
