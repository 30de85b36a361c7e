package sidecarrun

import (
	"log/slog"

	"github.com/giantswarm/sidecarrun/internal/core"
)

// SetLogger replaces the package-level logger used by sidecarrun.
// The provided logger should already have any desired attributes;
// sidecarrun adds only run_id and per-process attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with Run, though a run in
// progress keeps the logger it started with.
//
// Example:
//
//	sidecarrun.SetLogger(myLogger.With("component", "sidecarrun"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
