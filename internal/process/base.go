package process

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrAlreadyStarted is returned when Start is called on a process that is
// already running. A BaseProcess is started at most once.
const ErrAlreadyStarted = sentinel.Error("process already started")

// ErrNilCmd is returned when Start is called with a nil *exec.Cmd.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned when Start is called with an empty cmd.Path.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

// ErrNotExited is returned by ExitCode while the process is still running.
const ErrNotExited = sentinel.Error("process has not exited")

// State is the lifecycle state of a child process.
type State int

const (
	// StateStarting covers the time before a successful Start.
	StateStarting State = iota
	// StateRunning means the process was spawned and has not exited.
	StateRunning
	// StateExited means cmd.Wait has returned.
	StateExited
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StartOptions controls how a child is wired to the supervisor.
type StartOptions struct {
	// LogDir, when set, receives <name>-stdout.log and <name>-stderr.log and
	// the child gets no stdin. When empty the child inherits the supervisor's
	// stdin, stdout and stderr.
	LogDir string

	// Detach places the child in its own process group so that signals
	// generated by the terminal reach only the supervisor, which then decides
	// when the child is torn down. On Linux the child additionally receives
	// SIGTERM if the supervisor dies without cleaning up.
	Detach bool
}

// BaseProcess owns one child process from spawn to exit.
//
// BaseProcess is not safe for concurrent use, except for Exited, State and
// ExitCode which may be called from any goroutine once Start has returned.
type BaseProcess struct {
	cmd         *exec.Cmd
	exited      chan struct{} // closed after cmd.Wait returns
	waitErr     error         // written before exited is closed
	startedAt   time.Time
	logFiles    LogFiles
	name        string
	log         *slog.Logger
	stopTimeout time.Duration
}

// NewBaseProcess creates a BaseProcess with the given name, logger, and stop
// timeout. If stopTimeout is zero, DefaultStopTimeout is used. If logger is
// nil, slog.Default() is used. Panics if name is empty.
func NewBaseProcess(name string, logger *slog.Logger, stopTimeout time.Duration) BaseProcess {
	if name == "" {
		panic("sidecarrun: process name must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return BaseProcess{name: name, log: logger, stopTimeout: stopTimeout}
}

// Start spawns cmd. The cmd must already have its Path, Args, Env and Dir set;
// Start sets its stdio and SysProcAttr according to opts.
//
// A single goroutine calling cmd.Wait is started here so that exactly one
// Wait call is made per process. Its completion closes the Exited channel.
func (b *BaseProcess) Start(cmd *exec.Cmd, opts StartOptions) error {
	if cmd == nil {
		return ErrNilCmd
	}
	if cmd.Path == "" {
		return ErrEmptyCmdPath
	}
	if b.cmd != nil {
		return ErrAlreadyStarted
	}

	if opts.Detach {
		configureDetached(cmd)
	}

	if opts.LogDir != "" {
		logFiles, err := NewLogFiles(opts.LogDir, b.name)
		if err != nil {
			return fmt.Errorf("create %s logs: %w", b.name, err)
		}
		cmd.Stdin = nil
		cmd.Stdout = logFiles.stdoutFile
		cmd.Stderr = logFiles.stderrFile
		b.logFiles = logFiles
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		b.logFiles.Close()
		return fmt.Errorf("start %s process: %w", b.name, err)
	}
	b.cmd = cmd
	b.startedAt = time.Now()

	exited := make(chan struct{})
	b.exited = exited
	go func() {
		err := cmd.Wait()
		b.waitErr = err
		close(exited)
	}()

	b.log.Debug("process started", "process", b.name, "pid", cmd.Process.Pid,
		"detached", opts.Detach, "log_dir", opts.LogDir)
	return nil
}

// Stop requests termination with the given timeout: SIGTERM, then SIGKILL if
// the process is still alive when the timeout expires. It returns nil when
// the process was never started or has already exited, so it can be called
// unconditionally on every teardown path.
func (b *BaseProcess) Stop(timeout time.Duration) error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = b.stopTimeout
	}
	pid := b.cmd.Process.Pid
	err := terminate(b.cmd, b.exited, timeout, b.name)
	if err != nil {
		b.log.Warn("process stop failed; process may be orphaned",
			"process", b.name, "pid", pid, "error", err)
	}
	return err
}

// Close stops the process if it is still running and closes log file handles.
// The auto-stop uses the stop timeout given to NewBaseProcess.
func (b *BaseProcess) Close() {
	if b.State() == StateRunning {
		b.log.Warn("process.Close called on running process; stopping automatically",
			"process", b.name)
		if err := b.Stop(b.stopTimeout); err != nil {
			b.log.Warn("auto-stop during Close failed", "process", b.name, "error", err)
		}
	}
	b.logFiles.Close()
}

// Name returns the process name used in logs and log file names.
func (b *BaseProcess) Name() string {
	return b.name
}

// Logger returns the logger used by this process.
func (b *BaseProcess) Logger() *slog.Logger {
	return b.log
}

// Pid returns the OS process id, or 0 if the process was never started.
func (b *BaseProcess) Pid() int {
	if b.cmd == nil || b.cmd.Process == nil {
		return 0
	}
	return b.cmd.Process.Pid
}

// StartedAt returns the time Start succeeded, or the zero time.
func (b *BaseProcess) StartedAt() time.Time {
	return b.startedAt
}

// Exited returns a channel that is closed when the process exits. It is safe
// to select on from any number of goroutines. Returns nil before Start.
func (b *BaseProcess) Exited() <-chan struct{} {
	return b.exited
}

// State reports the current lifecycle state without blocking.
func (b *BaseProcess) State() State {
	if b.exited == nil {
		return StateStarting
	}
	select {
	case <-b.exited:
		return StateExited
	default:
		return StateRunning
	}
}

// ExitCode returns the exit code of a process that has exited. A process
// terminated by a signal reports 128+signal, the shell convention. Returns
// ErrNotExited while the process is still running or was never started.
func (b *BaseProcess) ExitCode() (int, error) {
	if b.State() != StateExited {
		return 0, ErrNotExited
	}
	return exitCode(b.cmd.ProcessState, b.waitErr), nil
}

// LogFiles returns the log files of a detached process. The zero value is
// returned for attached processes.
func (b *BaseProcess) LogFiles() LogFiles {
	return b.logFiles
}
