// Package process manages the OS-level lifecycle of a single child process.
//
// BaseProcess starts a command either detached (own process group, output to
// log files, no stdin) or attached to the supervisor's own stdio, tracks its
// exit through one cmd.Wait goroutine, and stops it with SIGTERM followed by
// SIGKILL. Stop on a process that has already exited is a no-op. WaitReady and
// Hold implement the two readiness strategies: bounded polling and a fixed
// delay that aborts early when the process dies.
package process
