package main

import (
	"io"

	"github.com/spf13/cobra"
)

// newRootCommand builds the command tree. Running the root command without
// a subcommand is the same as "sidecarrun run".
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	s := newSettings(stderr)

	cmd := &cobra.Command{
		Use:   "sidecarrun",
		Short: "Run a bot together with its Lavalink server",
		Long: `sidecarrun checks that a suitable Java runtime, the Lavalink jar and its
configuration are present, starts the Lavalink server, waits for it to
become ready and then runs the bot in the foreground. When the bot exits,
or sidecarrun receives SIGINT, SIGTERM or SIGHUP, the server is stopped and
sidecarrun exits with the bot's exit code.

Every flag can also be set with a SIDECARRUN_* environment variable, either
in the process environment or in the .env file. Flags take precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // Exit codes are handled in main
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.load(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSupervisor(cmd.Context(), s, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	s.register(cmd.PersistentFlags())

	cmd.AddCommand(newRunCommand(s, stderr))
	cmd.AddCommand(newHistoryCommand(s, stdout))
	cmd.AddCommand(newVersionCommand(stdout))

	return cmd
}
