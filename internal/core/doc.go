// Package core provides the internal implementation of the sidecarrun
// supervisor. It contains the Supervisor (a single-use state machine that
// gates on preconditions, launches the dependency, waits for it, runs the
// main process and guarantees dependency teardown on every exit path), its
// validated Config, and the Launcher abstraction that produces the two
// child processes.
package core
