package sidecar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/giantswarm/sidecarrun/internal/fileutil"
	"github.com/giantswarm/sidecarrun/internal/netutil"
	"github.com/giantswarm/sidecarrun/internal/precheck"
	"github.com/giantswarm/sidecarrun/internal/process"
	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrExited is returned by WaitReady when the dependency exits during the
// readiness wait.
const ErrExited = sentinel.Error("dependency exited during readiness wait")

// readinessPollInterval is the interval between TCP probe attempts.
const readinessPollInterval = 250 * time.Millisecond

// DefaultName is the process name used for logs and log file names.
const DefaultName = "lavalink"

// DefaultJVMArgs are passed to the runtime before -jar. IPv4 is preferred
// because Lavalink's HTTP clients misbehave on some dual-stack hosts.
var DefaultJVMArgs = []string{"-Djava.net.preferIPv4Stack=true"}

// Config holds the configuration for the dependency process.
type Config struct {
	Name    string   // Process name (default: DefaultName)
	Java    string   // Resolved runtime binary
	JarPath string   // Server jar
	WorkDir string   // Working directory; plugins are resolved relative to it
	LogDir  string   // Directory for <name>-stdout.log / <name>-stderr.log
	JVMArgs []string // Extra runtime arguments placed before -jar
	Env     []string // Full environment for the child

	// ConfigPath is the server's application.yml. When set it is passed as
	// spring.config.location. ExampleConfigPath, when set and ConfigPath is
	// missing, is copied into place before launch.
	ConfigPath        string
	ExampleConfigPath string

	// ListenAddr, when set, is checked before spawning; a bound port fails
	// the launch instead of letting the server crash during the wait.
	ListenAddr string

	// ProbeAddr, when set, turns the readiness wait into a TCP probe bounded
	// by the same delay.
	ProbeAddr string

	StopTimeout time.Duration
	Logger      *slog.Logger
}

func (c Config) validate() error {
	var errs []error
	if c.Java == "" {
		errs = append(errs, errors.New("runtime binary must not be empty"))
	}
	if c.JarPath == "" {
		errs = append(errs, errors.New("jar path must not be empty"))
	}
	if c.LogDir == "" {
		errs = append(errs, errors.New("log dir must not be empty"))
	}
	return errors.Join(errs...)
}

// Process manages the dependency process lifecycle.
type Process struct {
	config Config
	base   process.BaseProcess
}

// New creates a dependency Process. It performs no I/O.
func New(cfg Config) (*Process, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid sidecar config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.JVMArgs == nil {
		cfg.JVMArgs = DefaultJVMArgs
	}
	return &Process{
		config: cfg,
		base:   process.NewBaseProcess(cfg.Name, cfg.Logger, cfg.StopTimeout),
	}, nil
}

// Args returns the runtime arguments used to launch the server.
func (p *Process) Args() []string {
	return p.args(p.config.ConfigPath != "")
}

func (p *Process) args(withConfig bool) []string {
	args := append([]string(nil), p.config.JVMArgs...)
	if withConfig {
		abs, err := filepath.Abs(p.config.ConfigPath)
		if err != nil {
			abs = p.config.ConfigPath
		}
		args = append(args, "-Dspring.config.location=file:"+abs)
	}
	return append(args, "-jar", p.config.JarPath)
}

// Start prepares the config file, checks the listen port and spawns the
// server detached from the supervisor's stdio.
func (p *Process) Start(_ context.Context) error {
	if p.base.State() != process.StateStarting {
		return process.ErrAlreadyStarted
	}
	log := p.base.Logger()

	withConfig, err := p.prepareConfig()
	if err != nil {
		return err
	}

	if p.config.ListenAddr != "" {
		if err := netutil.CheckPortFree(p.config.ListenAddr); err != nil {
			return fmt.Errorf("check %s listen address: %w", p.config.Name, err)
		}
	}

	// exec.Command rather than CommandContext: teardown is driven by the
	// supervisor so the server always gets SIGTERM before SIGKILL.
	cmd := exec.Command(p.config.Java, p.args(withConfig)...) //nolint:gosec // G204: runtime and jar come from supervisor config
	cmd.Dir = p.config.WorkDir
	cmd.Env = p.config.Env

	log.Info("starting dependency", "process", p.config.Name, "runtime", p.config.Java,
		"jar", p.config.JarPath, "config", p.config.ConfigPath)
	if err := p.base.Start(cmd, process.StartOptions{LogDir: p.config.LogDir, Detach: true}); err != nil {
		return fmt.Errorf("start %s: %w", p.config.Name, err)
	}
	lf := p.base.LogFiles()
	log.Info("dependency started", "process", p.config.Name, "pid", p.base.Pid(),
		"stdout", lf.StdoutPath(), "stderr", lf.StderrPath())
	return nil
}

// prepareConfig seeds a missing config from the example and reports
// whether a config file is present to pass to the server. Without one the
// server runs on its built-in defaults.
func (p *Process) prepareConfig() (bool, error) {
	if p.config.ConfigPath == "" {
		return false, nil
	}
	log := p.base.Logger()

	copied, err := precheck.SeedAppConfig(p.config.ConfigPath, p.config.ExampleConfigPath)
	if err != nil {
		return false, fmt.Errorf("seed config from example: %w", err)
	}
	if copied {
		log.Warn("created dependency config from example; review it before production use",
			"config", p.config.ConfigPath, "example", p.config.ExampleConfigPath)
	}

	ok, err := fileutil.IsFile(p.config.ConfigPath)
	if err != nil {
		return false, fmt.Errorf("check dependency config: %w", err)
	}
	if !ok {
		log.Warn("dependency config not found; running on defaults", "config", p.config.ConfigPath)
	}
	return ok, nil
}

// WaitReady waits for the server to become usable. Without a probe address
// it sleeps for delay. With one it polls the address until it accepts a
// connection or delay elapses; a probe that never succeeds is logged and
// treated like the plain delay, leaving the verdict to the liveness check.
// With watchExit it returns ErrExited as soon as the process exits;
// without it the wait is purely time-based. It returns the context error if
// ctx is done first.
func (p *Process) WaitReady(ctx context.Context, delay time.Duration, watchExit bool) error {
	log := p.base.Logger()
	var exited <-chan struct{}
	if watchExit {
		exited = p.base.Exited()
	}

	if p.config.ProbeAddr == "" {
		log.Info("waiting for dependency", "process", p.config.Name, "delay", delay)
		if err := process.Hold(ctx, delay, exited); err != nil {
			return p.waitError(err)
		}
		return nil
	}

	log.Info("probing dependency", "process", p.config.Name, "addr", p.config.ProbeAddr, "max_wait", delay)
	err := process.WaitReady(ctx, process.WaitReadyConfig{
		Interval:      readinessPollInterval,
		Timeout:       delay,
		Name:          p.config.Name,
		Addr:          p.config.ProbeAddr,
		Logger:        log,
		ProcessExited: exited,
	}, func(checkCtx context.Context, attempt int) (bool, error) {
		ok, dialErr := netutil.Probe(checkCtx, p.config.ProbeAddr, netutil.DefaultDialTimeout)
		if !ok {
			log.Debug("dependency probe attempt", "addr", p.config.ProbeAddr, "attempt", attempt, "error", dialErr)
		}
		return ok, nil
	})
	if err == nil {
		log.Info("dependency accepting connections", "process", p.config.Name, "addr", p.config.ProbeAddr)
		return nil
	}
	if errors.Is(err, process.ErrProcessExited) || ctx.Err() != nil {
		return p.waitError(err)
	}
	log.Warn("dependency probe did not succeed within the readiness delay; continuing",
		"process", p.config.Name, "addr", p.config.ProbeAddr, "delay", delay, "error", err)
	return nil
}

func (p *Process) waitError(err error) error {
	if errors.Is(err, process.ErrProcessExited) {
		code, _ := p.base.ExitCode()
		return fmt.Errorf("%s (exit code %d): %w", p.config.Name, code, ErrExited)
	}
	return fmt.Errorf("wait for %s: %w", p.config.Name, err)
}

// State reports the lifecycle state of the server process.
func (p *Process) State() process.State {
	return p.base.State()
}

// Exited returns a channel closed when the server exits.
func (p *Process) Exited() <-chan struct{} {
	return p.base.Exited()
}

// Pid returns the server's process id, or 0 before Start.
func (p *Process) Pid() int {
	return p.base.Pid()
}

// Name returns the process name.
func (p *Process) Name() string {
	return p.config.Name
}

// LogFiles returns the paths the server's output is written to.
func (p *Process) LogFiles() process.LogFiles {
	return p.base.LogFiles()
}

// Stop terminates the server with the given timeout. It is a no-op if the
// server was never started or has already exited.
func (p *Process) Stop(timeout time.Duration) error {
	return p.base.Stop(timeout)
}

// Close releases log file handles.
func (p *Process) Close() {
	p.base.Close()
}
