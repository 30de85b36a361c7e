// Command sidecarrun starts a Lavalink server next to a bot, waits for the
// server to come up, runs the bot in the foreground and tears the server
// down when the bot exits or the supervisor is interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	rootCmd := newRootCommand(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitError carries a process exit code out of a command. Its message has
// already been logged.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitCode reports err on stderr unless it carries its own exit code.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
