package core

import (
	"fmt"
	"os"
	"time"
)

// Process exit codes used by the supervisor itself. Any other code in an
// Outcome is the main process's own.
const (
	ExitSuccess = 0
	ExitFailure = 1
	// ExitMainNotStarted mirrors the shell's "command not found" status for
	// a main process that could not be spawned.
	ExitMainNotStarted = 127
	// exitSignalBase is added to a signal number to form the exit code of a
	// run interrupted by that signal.
	exitSignalBase = 128
)

// Cause identifies why a supervisor run ended.
type Cause int

const (
	// CauseMainProcessExited means the main process ran to completion; the
	// Outcome carries its exit code.
	CauseMainProcessExited Cause = iota
	// CausePreconditionFailed means the gate failed and nothing was spawned.
	CausePreconditionFailed
	// CauseDependencyFailedToStart covers a dependency spawn error and a
	// dependency that exited before the main process was started.
	CauseDependencyFailedToStart
	// CauseInterruptedBySignal means a termination signal (or caller
	// cancellation) ended the run.
	CauseInterruptedBySignal
)

// String returns the name of the cause.
func (c Cause) String() string {
	switch c {
	case CauseMainProcessExited:
		return "MainProcessExited"
	case CausePreconditionFailed:
		return "PreconditionFailed"
	case CauseDependencyFailedToStart:
		return "DependencyFailedToStart"
	case CauseInterruptedBySignal:
		return "InterruptedBySignal"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// Outcome is the result of one supervisor run.
type Outcome struct {
	ExitCode int
	Cause    Cause
	// Err describes the failure for every cause except a main process
	// that exited on its own.
	Err error

	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Signal is the signal that interrupted the run, nil otherwise.
	Signal os.Signal

	DependencyPID int
	MainPID       int
}

// State is the supervisor lifecycle state.
type State int32

const (
	StateInit State = iota
	StatePreconditionChecked
	StateDependencyStarting
	StateDependencyReady
	StateDependencyFailed
	StateMainRunning
	StateTerminating
	StateDone
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StatePreconditionChecked:
		return "PreconditionChecked"
	case StateDependencyStarting:
		return "DependencyStarting"
	case StateDependencyReady:
		return "DependencyReady"
	case StateDependencyFailed:
		return "DependencyFailed"
	case StateMainRunning:
		return "MainRunning"
	case StateTerminating:
		return "Terminating"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
