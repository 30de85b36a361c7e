package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/sidecarrun/internal/envfile"
	"github.com/giantswarm/sidecarrun/internal/mainproc"
	"github.com/giantswarm/sidecarrun/internal/precheck"
	"github.com/giantswarm/sidecarrun/internal/process"
	"github.com/giantswarm/sidecarrun/internal/sidecar"
)

// Dependency is the sidecar server the main process needs.
type Dependency interface {
	Start(ctx context.Context) error
	// WaitReady blocks for at most delay. It returns an error if ctx is
	// done first, or with watchExit if the process exits first.
	WaitReady(ctx context.Context, delay time.Duration, watchExit bool) error
	State() process.State
	Exited() <-chan struct{}
	Pid() int
	// Stop must be a no-op for a process that has already exited.
	Stop(timeout time.Duration) error
	Close()
}

// MainProcess is the primary application.
type MainProcess interface {
	Start(ctx context.Context) error
	// Wait blocks until exit and returns the exit code, or returns the
	// context error without stopping the process.
	Wait(ctx context.Context) (int, error)
	Pid() int
	Stop(timeout time.Duration) error
	Close()
}

// Launcher creates the child processes of one run. Creating a process
// performs no I/O; spawning happens in Start.
type Launcher interface {
	NewDependency(runtime string, log *slog.Logger) (Dependency, error)
	NewMain(log *slog.Logger) (MainProcess, error)
}

// Preconditions evaluates the startup gate.
type Preconditions func(ctx context.Context) precheck.Result

// Verify the real processes satisfy the interfaces at compile time.
var (
	_ Dependency  = (*sidecar.Process)(nil)
	_ MainProcess = (*mainproc.Process)(nil)
	_ Launcher    = (*ProcessLauncher)(nil)
)

// ProcessLauncher launches the dependency with the Java runtime and the main
// process from its configured command line.
type ProcessLauncher struct {
	cfg Config
	env *envfile.Env
}

// NewProcessLauncher returns a Launcher whose children receive env.
func NewProcessLauncher(cfg Config, env *envfile.Env) *ProcessLauncher {
	if env == nil {
		env = envfile.FromMap(nil)
	}
	return &ProcessLauncher{cfg: cfg, env: env}
}

// NewDependency implements Launcher.
func (l *ProcessLauncher) NewDependency(runtime string, log *slog.Logger) (Dependency, error) {
	if runtime == "" {
		runtime = l.cfg.Java
	}
	p, err := sidecar.New(sidecar.Config{
		Name:              l.cfg.DependencyName,
		Java:              runtime,
		JarPath:           l.cfg.JarPath,
		WorkDir:           l.cfg.DependencyDir,
		LogDir:            l.cfg.LogDir,
		JVMArgs:           l.cfg.JVMArgs,
		Env:               l.env.Environ(),
		ConfigPath:        l.cfg.DependencyConfig,
		ExampleConfigPath: l.cfg.ExampleConfig,
		ListenAddr:        l.cfg.ListenAddr,
		ProbeAddr:         l.cfg.ProbeAddr,
		StopTimeout:       l.cfg.StopTimeout,
		Logger:            log,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewMain implements Launcher.
func (l *ProcessLauncher) NewMain(log *slog.Logger) (MainProcess, error) {
	if keys := l.env.PassThrough(); len(keys) > 0 {
		log.Debug("forwarding settings to main process", "keys", keys)
	}
	p, err := mainproc.New(mainproc.Config{
		Name:        l.cfg.MainName,
		Command:     l.cfg.MainCommand,
		Dir:         l.cfg.MainDir,
		Env:         l.env.Environ(),
		Detached:    l.cfg.MainDetached,
		LogDir:      l.cfg.LogDir,
		StopTimeout: l.cfg.StopTimeout,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultPreconditions returns the gate used in production: runtime and
// version, dependency jar, dependency config sanity. A missing dependency
// config is created from the example first so that it is checked too.
func DefaultPreconditions(cfg Config, env *envfile.Env) Preconditions {
	if env == nil {
		env = envfile.FromMap(nil)
	}
	return func(ctx context.Context) precheck.Result {
		return precheck.Run(ctx, precheck.Config{
			RuntimeOverride:   cfg.Java,
			JavaHome:          env.Get("JAVA_HOME"),
			MinMajorVersion:   cfg.MinRuntimeVersion,
			JarPath:           cfg.JarPath,
			AppConfigPath:     cfg.DependencyConfig,
			PluginsDir:        cfg.PluginsDir,
			ExampleConfigPath: cfg.ExampleConfig,
			Getenv:            env.Get,
		})
	}
}
