package sidecarrun

import "github.com/giantswarm/sidecarrun/internal/core"

// Sentinel errors for error inspection with errors.Is on Outcome.Err.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrPreconditionFailed wraps every precondition gate failure.
	ErrPreconditionFailed = core.ErrPreconditionFailed

	// ErrDependencyStart wraps a dependency that could not be spawned or did
	// not survive the readiness wait.
	ErrDependencyStart = core.ErrDependencyStart

	// ErrDependencyExited is reported when the dependency is found dead
	// after the readiness wait.
	ErrDependencyExited = core.ErrDependencyExited

	// ErrMainStart wraps a main process that could not be spawned.
	ErrMainStart = core.ErrMainStart

	// ErrInterrupted wraps a run ended by a signal or context cancellation.
	ErrInterrupted = core.ErrInterrupted

	// ErrLocked is reported when another supervisor holds the lock.
	ErrLocked = core.ErrLocked

	// ErrRuntimeNotFound is reported when no Java runtime can be located.
	ErrRuntimeNotFound = core.ErrRuntimeNotFound

	// ErrRuntimeTooOld is reported when the Java runtime is older than the
	// required major version.
	ErrRuntimeTooOld = core.ErrRuntimeTooOld

	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = core.ErrAlreadyStarted
)
