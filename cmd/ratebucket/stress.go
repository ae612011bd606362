package main

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/ratebucket/pkg/ratelimit/bucket"
)

type stressOptions struct {
	goroutines int
	maxTokens  uint64
	interval   uint64
	timestamp  uint64
	runs       int
}

type stressResult struct {
	admitted uint64
	retries  uint64
}

func newStressCmd() *cobra.Command {
	var opts stressOptions

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Race goroutines against one lock-free bucket",
		Long: `Start many goroutines that each call Accept once with the same timestamp
on a shared lock-free bucket, and check that exactly as many calls are
admitted as the bucket holds at that time. Exits non-zero on a mismatch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.goroutines, "goroutines", 64, "concurrent callers")
	f.Uint64Var(&opts.maxTokens, "max-tokens", 16, "burst size")
	f.Uint64Var(&opts.interval, "interval", 1000, "time units to refill max-tokens")
	f.Uint64Var(&opts.timestamp, "timestamp", 10000, "timestamp every caller passes")
	f.IntVar(&opts.runs, "runs", 1, "number of independent rounds")
	return cmd
}

// expectedAdmissions is how many calls a bucket drained at time 0 admits at
// timestamp ts.
func expectedAdmissions(maxTokens, interval, ts uint64) uint64 {
	if ts >= interval {
		return maxTokens
	}
	return maxTokens * ts / interval
}

func runStress(cmd *cobra.Command, opts stressOptions) error {
	if opts.goroutines < 1 || opts.runs < 1 {
		return fmt.Errorf("--goroutines and --runs must be positive")
	}
	if err := bucket.CheckHeadroom(opts.maxTokens, opts.interval, opts.timestamp); err != nil {
		return err
	}

	want := min(expectedAdmissions(opts.maxTokens, opts.interval, opts.timestamp), uint64(opts.goroutines))
	out := cmd.OutOrStdout()
	for run := 1; run <= opts.runs; run++ {
		b, err := bucket.NewIntBucketCombinedMT(opts.maxTokens, opts.interval)
		if err != nil {
			return err
		}
		res := stressRound(b, opts.goroutines, opts.timestamp)
		fmt.Fprintf(out, "run %d: admitted %d of %d calls (want %d), %d CAS retries\n",
			run, res.admitted, opts.goroutines, want, res.retries)
		if res.admitted != want {
			return fmt.Errorf("run %d admitted %d calls, want %d", run, res.admitted, want)
		}
	}
	return nil
}

func stressRound(b *bucket.IntBucketCombinedMT, goroutines int, ts uint64) stressResult {
	var admitted, retries atomic.Uint64
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			ok, n := b.AcceptWithRetries(ts)
			if ok {
				admitted.Add(1)
			}
			retries.Add(uint64(n))
		}()
	}
	close(start)
	wg.Wait()
	return stressResult{admitted: admitted.Load(), retries: retries.Load()}
}
