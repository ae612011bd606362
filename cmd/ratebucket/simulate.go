package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/ratebucket/pkg/ratelimit/bucket"
)

type simulateOptions struct {
	kind       bucket.Kind
	maxTokens  uint64
	interval   uint64
	start      uint64
	count      uint64
	step       uint64
	timestamps []uint
	verbose    bool
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{kind: bucket.KindCombinedMT}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a timestamp sequence into a bucket",
		Long: `Replay a timestamp sequence into a freshly built bucket and print the
accept pattern, T for admitted and F for rejected.

Timestamps are unitless. By default the sequence is start, start+step, ...
with count entries; --timestamps replaces it with an explicit list, which
may go backwards.

Examples:
  # Steady state of a 3-per-10 bucket called every time unit
  ratebucket simulate --max-tokens 3 --interval 10 --start 10000 --count 25

  # A clock that jumps backwards
  ratebucket simulate --max-tokens 1 --interval 10 --timestamps 10000,10005,10001,10010`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Var(&opts.kind, "kind", "bucket encoding (float, int, combined, combined_mt)")
	f.Uint64Var(&opts.maxTokens, "max-tokens", 3, "burst size")
	f.Uint64Var(&opts.interval, "interval", 10, "time units to refill max-tokens")
	f.Uint64Var(&opts.start, "start", 10000, "first timestamp")
	f.Uint64Var(&opts.count, "count", 25, "number of calls")
	f.Uint64Var(&opts.step, "step", 1, "time units between calls")
	f.UintSliceVar(&opts.timestamps, "timestamps", nil, "explicit comma-separated timestamps")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print one line per call")
	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	b, err := bucket.NewSafe(opts.kind, opts.maxTokens, opts.interval)
	if err != nil {
		return err
	}

	timestamps := make([]uint64, 0, opts.count)
	if len(opts.timestamps) > 0 {
		for _, ts := range opts.timestamps {
			timestamps = append(timestamps, uint64(ts))
		}
	} else {
		for i := uint64(0); i < opts.count; i++ {
			timestamps = append(timestamps, opts.start+i*opts.step)
		}
	}

	if len(timestamps) == 0 {
		return fmt.Errorf("nothing to simulate: --count is 0 and no --timestamps given")
	}
	var last uint64
	for _, ts := range timestamps {
		last = max(last, ts)
	}
	if err := bucket.CheckHeadroom(opts.maxTokens, opts.interval, last); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pattern := make([]byte, 0, len(timestamps))
	for _, ts := range timestamps {
		ok := b.Accept(ts)
		mark := byte('F')
		if ok {
			mark = 'T'
		}
		pattern = append(pattern, mark)
		if opts.verbose {
			fmt.Fprintf(out, "%d %c\n", ts, mark)
		}
	}
	fmt.Fprintln(out, string(pattern))
	return nil
}
