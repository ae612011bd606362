package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/ratebucket/internal/logging"
)

type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "ratebucket",
		Short: "Token-bucket rate limiting toolkit",
		Long: `ratebucket drives the token-bucket limiters of this module from the shell.

It can replay a timestamp sequence into any bucket encoding, stress the
lock-free encoding from many goroutines, and rate limit a stream of output
lines using buckets declared in a YAML file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(
		newSimulateCmd(),
		newStressCmd(),
		newLimitCmd(&flags),
		newVersionCmd(),
	)
	return cmd
}

func (f *globalFlags) logger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:  f.logLevel,
		Format: f.logFormat,
		Writer: cmd.ErrOrStderr(),
	})
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
