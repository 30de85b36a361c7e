package sidecarrun_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/giantswarm/sidecarrun"
)

func publicErrors() map[string]error {
	return map[string]error{
		"ErrAlreadyStarted":     sidecarrun.ErrAlreadyStarted,
		"ErrDependencyExited":   sidecarrun.ErrDependencyExited,
		"ErrDependencyStart":    sidecarrun.ErrDependencyStart,
		"ErrInterrupted":        sidecarrun.ErrInterrupted,
		"ErrLocked":             sidecarrun.ErrLocked,
		"ErrMainStart":          sidecarrun.ErrMainStart,
		"ErrPreconditionFailed": sidecarrun.ErrPreconditionFailed,
		"ErrRuntimeNotFound":    sidecarrun.ErrRuntimeNotFound,
		"ErrRuntimeTooOld":      sidecarrun.ErrRuntimeTooOld,
	}
}

// TestPublicErrorConstants verifies that every exported error constant:
//   - implements the error interface (Error() returns a non-empty string)
//   - matches itself via errors.Is
//   - matches itself when wrapped via fmt.Errorf %w
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	for name, sentinel := range publicErrors() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if sentinel == nil {
				t.Fatalf("%s is nil", name)
			}
			if msg := sentinel.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", name)
			}
			if !errors.Is(sentinel, sentinel) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", name, name)
			}
			wrapped := fmt.Errorf("wrapping: %w", sentinel)
			if !errors.Is(wrapped, sentinel) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", name)
			}
		})
	}
}

// TestPublicErrorConstantsAreDistinct verifies that no two exported error
// constants are equal to each other.
func TestPublicErrorConstantsAreDistinct(t *testing.T) {
	t.Parallel()

	errs := publicErrors()
	for a, errA := range errs {
		for b, errB := range errs {
			if a != b && errors.Is(errA, errB) {
				t.Errorf("errors.Is(%s, %s) = true: constants must be distinct", a, b)
			}
		}
	}
}

// TestCauseMethodCount is a canary that detects methods added to core.Cause,
// which automatically become public API through the type alias in
// outcome.go. Update expectedMethods if the addition is intentional.
func TestCauseMethodCount(t *testing.T) {
	t.Parallel()

	const expectedMethods = 1 // String

	if actual := reflect.TypeFor[sidecarrun.Cause]().NumMethod(); actual != expectedMethods {
		t.Errorf("Cause has %d methods, expected %d", actual, expectedMethods)
	}
}

func TestCauseString(t *testing.T) {
	t.Parallel()

	tests := map[sidecarrun.Cause]string{
		sidecarrun.CauseMainProcessExited:       "MainProcessExited",
		sidecarrun.CausePreconditionFailed:      "PreconditionFailed",
		sidecarrun.CauseDependencyFailedToStart: "DependencyFailedToStart",
		sidecarrun.CauseInterruptedBySignal:     "InterruptedBySignal",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
