package sidecarrun

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/giantswarm/sidecarrun/internal/core"
	"github.com/giantswarm/sidecarrun/internal/envfile"
	"github.com/giantswarm/sidecarrun/internal/history"
)

// Compile-time interface satisfaction check.
var _ Supervisor = (*supervisorWrapper)(nil)

// supervisorWrapper wraps core.Supervisor to implement the Supervisor
// interface. The core value is a named field rather than embedded so
// callers cannot reach internal methods through type assertions.
type supervisorWrapper struct {
	sup  *core.Supervisor
	hist *history.Store

	closeOnce sync.Once
	closeErr  error
}

// Run implements Supervisor.Run.
func (w *supervisorWrapper) Run(ctx context.Context) Outcome {
	return w.sup.Run(ctx)
}

// Close implements Supervisor.Close.
func (w *supervisorWrapper) Close() error {
	w.closeOnce.Do(func() {
		if w.hist != nil {
			w.closeErr = w.hist.Close()
		}
	})
	return w.closeErr
}

// New returns a Supervisor configured by opts. It reads the .env file,
// resolves paths and, with WithHistoryPath, opens the history database. It
// spawns nothing; all process work happens in Run.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Supervisor interface by design for testability (mockable).
func New(opts ...Option) (Supervisor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	environ := cfg.environ
	if environ == nil {
		environ = os.Environ()
	}
	env, err := envfile.Load(cfg.envFile, environ)
	if err != nil {
		return nil, err
	}

	coreCfg, err := cfg.resolve(env)
	if err != nil {
		return nil, err
	}
	if err := coreCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	deps := core.Deps{
		Launcher:      core.NewProcessLauncher(coreCfg, env),
		Preconditions: core.DefaultPreconditions(coreCfg, env),
	}

	w := &supervisorWrapper{}
	if cfg.historyPath != "" {
		w.hist, err = history.Open(context.Background(), cfg.historyPath, core.Logger())
		if err != nil {
			return nil, err
		}
		deps.History = w.hist
	}

	w.sup = core.NewSupervisor(coreCfg, deps)
	return w, nil
}
