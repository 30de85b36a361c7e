package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/sidecarrun/internal/history"
	"github.com/giantswarm/sidecarrun/internal/lockfile"
	"github.com/giantswarm/sidecarrun/internal/precheck"
	"github.com/giantswarm/sidecarrun/internal/process"
	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

const (
	// ErrPreconditionFailed wraps every precondition gate failure.
	ErrPreconditionFailed = sentinel.Error("precondition failed")

	// ErrDependencyStart wraps a dependency that could not be spawned or
	// did not survive the readiness wait.
	ErrDependencyStart = sentinel.Error("dependency failed to start")

	// ErrDependencyExited is reported when the liveness check finds the
	// dependency gone after the readiness wait.
	ErrDependencyExited = sentinel.Error("dependency exited before the main process started")

	// ErrMainStart wraps a main process that could not be spawned.
	ErrMainStart = sentinel.Error("main process failed to start")

	// ErrInterrupted wraps a run ended by a signal or caller cancellation.
	ErrInterrupted = sentinel.Error("interrupted")

	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = sentinel.Error("supervisor already started")
)

// Re-exported so the public API imports only from core.
const (
	ErrLocked          = lockfile.ErrLocked
	ErrRuntimeNotFound = precheck.ErrRuntimeNotFound
	ErrRuntimeTooOld   = precheck.ErrRuntimeTooOld
)

// historyTimeout bounds the final history write.
const historyTimeout = 5 * time.Second

// InterruptSignals are the signals that end a run.
var InterruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// SignalSource registers c for InterruptSignals and returns a function that
// unregisters it.
type SignalSource func(c chan<- os.Signal) (stop func())

// HistoryWriter persists run records.
type HistoryWriter interface {
	Append(ctx context.Context, rec history.Record) error
}

// NotifySignals is the SignalSource backed by os/signal.
func NotifySignals(c chan<- os.Signal) func() {
	signal.Notify(c, InterruptSignals...)
	return func() { signal.Stop(c) }
}

// Deps are the collaborators of a Supervisor. Nil fields get production
// defaults from NewSupervisor, except History which stays disabled.
type Deps struct {
	Launcher      Launcher
	Preconditions Preconditions
	History       HistoryWriter
	Signals       SignalSource
}

// Supervisor runs one dependency and one main process. It is single-use:
// Run may be called once.
//
// The child handles are fields of the Supervisor and are only touched by
// the goroutine executing Run. The signal goroutine communicates with it
// through context cancellation and the interrupt field.
type Supervisor struct {
	cfg           Config
	launcher      Launcher
	preconditions Preconditions
	history       HistoryWriter
	signals       SignalSource

	started   atomic.Bool
	state     atomic.Int32
	interrupt atomic.Pointer[os.Signal]

	dep          Dependency
	teardownOnce sync.Once
}

// NewSupervisor returns a Supervisor for cfg. It panics if cfg is invalid,
// since an invalid config is a programmer error.
func NewSupervisor(cfg Config, deps Deps) *Supervisor {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("sidecarrun: invalid config: %v", err))
	}
	if deps.Launcher == nil {
		deps.Launcher = NewProcessLauncher(cfg, nil)
	}
	if deps.Preconditions == nil {
		deps.Preconditions = DefaultPreconditions(cfg, nil)
	}
	if deps.Signals == nil {
		deps.Signals = NotifySignals
	}
	return &Supervisor{
		cfg:           cfg,
		launcher:      deps.Launcher,
		preconditions: deps.Preconditions,
		history:       deps.History,
		signals:       deps.Signals,
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

func (s *Supervisor) setState(st State) {
	s.state.Store(int32(st))
}

// Run drives the full lifecycle and returns its Outcome. Interrupt signals
// are handled from the moment Run is entered until it returns; ctx
// cancellation is treated as an interrupt without a signal.
func (s *Supervisor) Run(ctx context.Context) Outcome {
	if !s.started.CompareAndSwap(false, true) {
		return Outcome{ExitCode: ExitFailure, Cause: CausePreconditionFailed, Err: ErrAlreadyStarted}
	}

	out := Outcome{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := Logger().With("run_id", out.RunID)

	runCtx, stopSignals := s.watchSignals(ctx, log)
	s.run(runCtx, log, &out)
	stopSignals()

	s.setState(StateDone)
	out.FinishedAt = time.Now()
	s.record(ctx, log, out)

	attrs := []any{"cause", out.Cause.String(), "exit_code", out.ExitCode,
		"duration", out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond)}
	if out.Err != nil {
		log.Error("supervisor finished", append(attrs, "error", out.Err)...)
	} else {
		log.Info("supervisor finished", attrs...)
	}
	return out
}

func (s *Supervisor) run(ctx context.Context, log *slog.Logger, out *Outcome) {
	// Step 1: precondition gate. Nothing has been spawned yet.
	if s.cfg.LockPath != "" {
		lock, err := lockfile.Acquire(s.cfg.LockPath)
		if err != nil {
			s.fail(log, out, CausePreconditionFailed, ExitFailure, fmt.Errorf("%w: %w", ErrPreconditionFailed, err))
			return
		}
		defer lock.Release(log)
	}

	res := s.preconditions(ctx)
	logFindings(log, res)
	if s.interrupted(ctx, log, out) {
		return
	}
	if !res.Satisfied {
		s.fail(log, out, CausePreconditionFailed, ExitFailure, fmt.Errorf("%w: %s", ErrPreconditionFailed, res.Detail))
		return
	}
	s.setState(StatePreconditionChecked)
	log.Info("preconditions satisfied", "runtime", res.RuntimePath, "version", res.RuntimeVersion)

	// Step 2: dependency launch.
	s.setState(StateDependencyStarting)
	dep, err := s.launcher.NewDependency(res.RuntimePath, log)
	if err != nil {
		s.fail(log, out, CauseDependencyFailedToStart, ExitFailure, fmt.Errorf("%w: %w", ErrDependencyStart, err))
		return
	}
	if err := dep.Start(ctx); err != nil {
		dep.Close()
		s.fail(log, out, CauseDependencyFailedToStart, ExitFailure, fmt.Errorf("%w: %w", ErrDependencyStart, err))
		return
	}
	s.dep = dep
	out.DependencyPID = dep.Pid()
	// Step 6 is registered as soon as there is something to tear down and
	// covers every return below, signal-driven ones included.
	defer s.teardown(log)

	// Step 3: readiness wait.
	if err := dep.WaitReady(ctx, s.cfg.ReadyDelay, s.cfg.LivenessCheck); err != nil {
		if s.interrupted(ctx, log, out) {
			return
		}
		s.setState(StateDependencyFailed)
		s.fail(log, out, CauseDependencyFailedToStart, ExitFailure, fmt.Errorf("%w: %w", ErrDependencyStart, err))
		return
	}

	// Step 4: liveness verification.
	if s.cfg.LivenessCheck && dep.State() != process.StateRunning {
		s.setState(StateDependencyFailed)
		s.fail(log, out, CauseDependencyFailedToStart, ExitFailure,
			fmt.Errorf("%w: %w", ErrDependencyStart, ErrDependencyExited))
		return
	}
	if s.interrupted(ctx, log, out) {
		return
	}
	s.setState(StateDependencyReady)

	// Step 5: main process run.
	mp, err := s.launcher.NewMain(log)
	if err != nil {
		s.fail(log, out, CauseMainProcessExited, ExitMainNotStarted, fmt.Errorf("%w: %w", ErrMainStart, err))
		return
	}
	if err := mp.Start(ctx); err != nil {
		mp.Close()
		s.fail(log, out, CauseMainProcessExited, ExitMainNotStarted, fmt.Errorf("%w: %w", ErrMainStart, err))
		return
	}
	defer mp.Close()
	out.MainPID = mp.Pid()
	s.setState(StateMainRunning)

	mainDone := make(chan struct{})
	go watchDependency(log, dep, mainDone)
	code, err := mp.Wait(ctx)
	close(mainDone)

	if err != nil {
		// Wait only fails for ctx; the main process may still be running.
		log.Info("stopping main process", "pid", mp.Pid())
		if stopErr := mp.Stop(s.cfg.StopTimeout); stopErr != nil {
			log.Warn("failed to stop main process", "pid", mp.Pid(), "error", stopErr)
		}
		if !s.interrupted(ctx, log, out) {
			s.fail(log, out, CauseMainProcessExited, ExitFailure, fmt.Errorf("wait for main process: %w", err))
		}
		return
	}

	// A terminal signal reaches an attached main process and the
	// supervisor together, so the main process may exit on its own before
	// Wait observes the canceled context.
	if s.interrupted(ctx, log, out) {
		log.Info("main process exited", "pid", out.MainPID, "exit_code", code)
		return
	}

	out.ExitCode = code
	out.Cause = CauseMainProcessExited
	log.Info("main process exited", "pid", out.MainPID, "exit_code", code)
}

// teardown requests termination of the dependency exactly once per run.
// Errors are swallowed: the only expected one concerns a process that is
// already gone.
func (s *Supervisor) teardown(log *slog.Logger) {
	s.teardownOnce.Do(func() {
		s.setState(StateTerminating)
		log.Info("tearing down dependency", "pid", s.dep.Pid())
		if err := s.dep.Stop(s.cfg.StopTimeout); err != nil {
			log.Debug("dependency teardown", "pid", s.dep.Pid(), "error", err)
		}
		s.dep.Close()
	})
}

func (s *Supervisor) fail(log *slog.Logger, out *Outcome, cause Cause, code int, err error) {
	out.Cause = cause
	out.ExitCode = code
	out.Err = err
	log.Error("supervisor run failed", "cause", cause.String(), "error", err)
}

// interrupted reports whether a signal was received or ctx is done and, if
// so, fills out as an interruption.
func (s *Supervisor) interrupted(ctx context.Context, log *slog.Logger, out *Outcome) bool {
	if s.interrupt.Load() == nil && ctx.Err() == nil {
		return false
	}
	out.Cause = CauseInterruptedBySignal
	out.ExitCode = ExitFailure
	if p := s.interrupt.Load(); p != nil {
		out.Signal = *p
		if sig, ok := (*p).(syscall.Signal); ok {
			out.ExitCode = exitSignalBase + int(sig)
		}
		out.Err = fmt.Errorf("%w: %s", ErrInterrupted, *p)
	} else {
		out.Err = fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
	}
	log.Warn("supervisor interrupted", "state", s.State().String(), "error", out.Err)
	return true
}

// watchSignals returns a context canceled when an interrupt signal arrives
// and a function that unregisters the handler.
func (s *Supervisor) watchSignals(parent context.Context, log *slog.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	stopNotify := s.signals(ch)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-ch:
			// Store before cancel so interrupted() always sees the signal.
			s.interrupt.Store(&sig)
			log.Warn("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		stopNotify()
		close(done)
		cancel()
	}
}

// watchDependency warns when the dependency dies while the main process is
// still running. The main process is left alone; it owns its reconnect
// policy.
func watchDependency(log *slog.Logger, dep Dependency, mainDone <-chan struct{}) {
	select {
	case <-dep.Exited():
		select {
		case <-mainDone:
		default:
			log.Warn("dependency exited while the main process is running", "pid", dep.Pid())
		}
	case <-mainDone:
	}
}

func logFindings(log *slog.Logger, res precheck.Result) {
	for _, f := range res.Findings {
		if f.Severity == precheck.SeverityError {
			log.Error("precondition check failed", "check", f.Check, "detail", f.Message)
		} else {
			log.Warn("precondition check warning", "check", f.Check, "detail", f.Message)
		}
	}
}

func (s *Supervisor) record(ctx context.Context, log *slog.Logger, out Outcome) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	rec := history.Record{
		RunID:         out.RunID,
		StartedAt:     out.StartedAt,
		FinishedAt:    out.FinishedAt,
		Cause:         out.Cause.String(),
		ExitCode:      out.ExitCode,
		DependencyPID: out.DependencyPID,
		MainPID:       out.MainPID,
	}
	if out.Err != nil {
		rec.Detail = out.Err.Error()
	}
	if err := s.history.Append(ctx, rec); err != nil {
		log.Warn("failed to record run history", "error", err)
	}
}
