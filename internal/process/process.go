package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giantswarm/sidecarrun/internal/fileutil"
	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrStopTimeout is returned when a process survives both SIGTERM and SIGKILL
// within the allotted time.
const ErrStopTimeout = sentinel.Error("process did not exit after SIGKILL")

// LogFiles manages stdout/stderr file handles for a detached process.
type LogFiles struct {
	stdoutFile *os.File
	stderrFile *os.File
	dir        string
	stdoutName string // e.g., "lavalink-stdout.log"
	stderrName string
}

// NewLogFiles creates <name>-stdout.log and <name>-stderr.log in dir,
// creating dir if needed. Existing logs are appended to so output from
// earlier runs survives a restart.
func NewLogFiles(dir, processName string) (LogFiles, error) {
	l := LogFiles{
		dir:        dir,
		stdoutName: processName + "-stdout.log",
		stderrName: processName + "-stderr.log",
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return LogFiles{}, err
	}
	stdoutFile, err := openLog(l.StdoutPath())
	if err != nil {
		return LogFiles{}, fmt.Errorf("create stdout log: %w", err)
	}
	stderrFile, err := openLog(l.StderrPath())
	if err != nil {
		_ = stdoutFile.Close()
		return LogFiles{}, fmt.Errorf("create stderr log: %w", err)
	}
	l.stdoutFile = stdoutFile
	l.stderrFile = stderrFile
	return l, nil
}

func openLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // G304
}

// Close closes both log file handles and nils them to prevent double-close.
func (l *LogFiles) Close() {
	if l.stdoutFile != nil {
		_ = l.stdoutFile.Close()
		l.stdoutFile = nil
	}
	if l.stderrFile != nil {
		_ = l.stderrFile.Close()
		l.stderrFile = nil
	}
}

// StdoutPath returns the path to the stdout log file.
func (l *LogFiles) StdoutPath() string {
	return filepath.Join(l.dir, l.stdoutName)
}

// StderrPath returns the path to the stderr log file.
func (l *LogFiles) StderrPath() string {
	return filepath.Join(l.dir, l.stderrName)
}

// DefaultStopTimeout is how long a process gets between SIGTERM and SIGKILL
// when no explicit timeout is configured.
const DefaultStopTimeout = 10 * time.Second

// killDrainTimeout bounds the wait for the exit notification after SIGKILL
// has been sent or after a signal failed because the process was already
// gone. SIGKILL cannot be caught, so this only fires if cmd.Wait hangs.
const killDrainTimeout = 5 * time.Second

// waitExited blocks until exited is closed or timeout elapses and reports
// whether the process exited in time.
func waitExited(exited <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-exited:
		return true
	case <-t.C:
		return false
	}
}

// terminate implements the SIGTERM-then-SIGKILL shutdown sequence:
//
//  1. If the process has already exited, return nil without signaling.
//  2. Send SIGTERM and wait up to timeout.
//  3. Send SIGKILL and wait up to killDrainTimeout.
//
// A failed SIGTERM means the process exited between the check and the signal;
// that race is resolved by draining the exit notification, not by erroring.
func terminate(cmd *exec.Cmd, exited <-chan struct{}, timeout time.Duration, name string) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if exited == nil {
		return fmt.Errorf("%s: exited channel must not be nil", name)
	}

	select {
	case <-exited:
		return nil
	default:
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if waitExited(exited, killDrainTimeout) {
			return nil
		}
		return fmt.Errorf("%s: send SIGTERM: %w", name, err)
	}
	if waitExited(exited, timeout) {
		return nil
	}

	// Kill on a process that exited in the meantime returns
	// os.ErrProcessDone, which is harmless.
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("%s: send SIGKILL: %w", name, err)
	}
	if waitExited(exited, killDrainTimeout) {
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrStopTimeout)
}

// exitCode derives the exit code from a finished process. Signal deaths map
// to 128+signal. A Wait error without a ProcessState (I/O copy failure after
// the process was reaped is the only such case) reports 1.
func exitCode(state *os.ProcessState, waitErr error) int {
	if state == nil {
		if waitErr != nil {
			return 1
		}
		return 0
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
