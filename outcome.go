package sidecarrun

import "github.com/giantswarm/sidecarrun/internal/core"

// Outcome is the result of a supervisor run. ExitCode is what the
// supervisor process should exit with.
type Outcome = core.Outcome

// Cause identifies why a run ended.
//
// Cause is a type alias so that the String method of [core.Cause] is part
// of the public API.
type Cause = core.Cause

const (
	// CauseMainProcessExited means the main process ran to completion and
	// Outcome.ExitCode is its exit code.
	CauseMainProcessExited = core.CauseMainProcessExited

	// CausePreconditionFailed means the runtime, the jar or the server
	// config did not pass the startup gate, or another supervisor holds the
	// lock. Nothing was spawned.
	CausePreconditionFailed = core.CausePreconditionFailed

	// CauseDependencyFailedToStart means the dependency could not be spawned
	// or exited before the main process was started.
	CauseDependencyFailedToStart = core.CauseDependencyFailedToStart

	// CauseInterruptedBySignal means SIGINT, SIGTERM or SIGHUP (or context
	// cancellation) ended the run. Outcome.Signal is set for signals.
	CauseInterruptedBySignal = core.CauseInterruptedBySignal
)

// Exit codes produced by the supervisor itself. Interrupted runs exit with
// 128 plus the signal number.
const (
	ExitSuccess        = core.ExitSuccess
	ExitFailure        = core.ExitFailure
	ExitMainNotStarted = core.ExitMainNotStarted
)
