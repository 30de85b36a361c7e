package sidecarrun

import "context"

// Supervisor runs one dependency and one main process.
//
// Callers must follow this lifecycle ordering:
//
//	New → Run (once) → Close
type Supervisor interface {
	// Run drives the full lifecycle and returns its Outcome. It installs
	// handlers for SIGINT, SIGTERM and SIGHUP for its duration; a signal
	// or ctx cancellation stops the main process (if running) and tears the
	// dependency down before Run returns.
	//
	// Run is single-use: a second call returns an Outcome whose Err is
	// ErrAlreadyStarted without doing anything.
	Run(ctx context.Context) Outcome

	// Close releases resources held by the Supervisor (the history
	// database). It is safe to call more than once.
	Close() error
}
