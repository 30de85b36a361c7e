package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/giantswarm/sidecarrun"
)

func newRunCommand(s *settings, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start Lavalink, run the bot and stop Lavalink when the bot exits (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSupervisor(cmd.Context(), s, stderr)
		},
	}
}

// runSupervisor performs one supervised run and returns an exitError
// carrying the code the process must exit with, or nil for exit status 0.
func runSupervisor(ctx context.Context, s *settings, stderr io.Writer) error {
	opts, err := s.options()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	sup, err := sidecarrun.New(opts...)
	if err != nil {
		return err
	}
	out := sup.Run(ctx)
	if err := sup.Close(); err != nil {
		_, _ = fmt.Fprintf(stderr, "warning: closing run history: %v\n", err)
	}

	if out.ExitCode == sidecarrun.ExitSuccess {
		return nil
	}
	return &exitError{code: out.ExitCode}
}
