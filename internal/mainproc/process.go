package mainproc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/giantswarm/sidecarrun/internal/process"
)

// DefaultName is the process name used for logs and log file names.
const DefaultName = "bot"

// Config holds the configuration for the main process.
type Config struct {
	Name    string   // Process name (default: DefaultName)
	Command []string // argv; Command[0] is resolved via PATH
	Dir     string   // Working directory (default: supervisor's)
	Env     []string // Full environment for the child

	// Detached sends output to <LogDir>/<name>-{stdout,stderr}.log and puts the
	// process in its own process group. LogDir is required when Detached.
	Detached bool
	LogDir   string

	StopTimeout time.Duration
	Logger      *slog.Logger
}

func (c Config) validate() error {
	var errs []error
	if len(c.Command) == 0 || c.Command[0] == "" {
		errs = append(errs, errors.New("command must not be empty"))
	}
	if c.Detached && c.LogDir == "" {
		errs = append(errs, errors.New("log dir must be set when detached"))
	}
	return errors.Join(errs...)
}

// Process manages the main process lifecycle.
type Process struct {
	config Config
	base   process.BaseProcess
}

// New creates a main Process. It performs no I/O.
func New(cfg Config) (*Process, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid main process config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	return &Process{
		config: cfg,
		base:   process.NewBaseProcess(cfg.Name, cfg.Logger, cfg.StopTimeout),
	}, nil
}

// Start spawns the main process.
func (p *Process) Start(_ context.Context) error {
	if p.base.State() != process.StateStarting {
		return process.ErrAlreadyStarted
	}

	cmd := exec.Command(p.config.Command[0], p.config.Command[1:]...) //nolint:gosec // G204: command comes from supervisor config
	cmd.Dir = p.config.Dir
	cmd.Env = p.config.Env

	opts := process.StartOptions{}
	if p.config.Detached {
		opts = process.StartOptions{LogDir: p.config.LogDir, Detach: true}
	}

	p.base.Logger().Info("starting main process", "process", p.config.Name,
		"command", p.config.Command, "detached", p.config.Detached)
	if err := p.base.Start(cmd, opts); err != nil {
		return fmt.Errorf("start %s: %w", p.config.Name, err)
	}
	return nil
}

// Wait blocks until the process exits and returns its exit code. If ctx is
// done first, Wait returns the context error and leaves the process running;
// stopping it is the caller's decision.
func (p *Process) Wait(ctx context.Context) (int, error) {
	exited := p.base.Exited()
	if exited == nil {
		return 0, fmt.Errorf("%s: %w", p.config.Name, process.ErrNotExited)
	}
	select {
	case <-exited:
		return p.base.ExitCode()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// ExitCode returns the exit code once the process has exited.
func (p *Process) ExitCode() (int, error) {
	return p.base.ExitCode()
}

// Exited returns a channel closed when the process exits.
func (p *Process) Exited() <-chan struct{} {
	return p.base.Exited()
}

// Pid returns the process id, or 0 before Start.
func (p *Process) Pid() int {
	return p.base.Pid()
}

// Name returns the process name.
func (p *Process) Name() string {
	return p.config.Name
}

// Stop terminates the process. It is a no-op after exit.
func (p *Process) Stop(timeout time.Duration) error {
	return p.base.Stop(timeout)
}

// Close releases log file handles.
func (p *Process) Close() {
	p.base.Close()
}
