package core

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/sidecarrun/internal/history"
	"github.com/giantswarm/sidecarrun/internal/precheck"
	"github.com/giantswarm/sidecarrun/internal/process"
)

// fakeDependency records lifecycle calls. By default it starts, stays
// running through the readiness wait and exits when stopped.
type fakeDependency struct {
	startErr error
	// exitOnStart makes the process exit right after Start, before the
	// readiness wait.
	exitOnStart bool
	// waitReady overrides WaitReady when set.
	waitReady func(ctx context.Context, f *fakeDependency) error
	// watchedExit records the watchExit argument of the last WaitReady.
	watchedExit atomic.Bool

	startCalls atomic.Int32
	stopCalls  atomic.Int32
	closeCalls atomic.Int32

	exitOnce sync.Once
	exited   chan struct{}
	state    atomic.Int32
}

func newFakeDependency() *fakeDependency {
	return &fakeDependency{exited: make(chan struct{})}
}

func (f *fakeDependency) exit() {
	f.exitOnce.Do(func() {
		f.state.Store(int32(process.StateExited))
		close(f.exited)
	})
}

func (f *fakeDependency) Start(context.Context) error {
	f.startCalls.Add(1)
	if f.startErr != nil {
		return f.startErr
	}
	f.state.Store(int32(process.StateRunning))
	if f.exitOnStart {
		f.exit()
	}
	return nil
}

func (f *fakeDependency) WaitReady(ctx context.Context, delay time.Duration, watchExit bool) error {
	f.watchedExit.Store(watchExit)
	if f.waitReady != nil {
		return f.waitReady(ctx, f)
	}
	var exited <-chan struct{}
	if watchExit {
		exited = f.exited
	}
	return process.Hold(ctx, delay, exited)
}

func (f *fakeDependency) State() process.State    { return process.State(f.state.Load()) }
func (f *fakeDependency) Exited() <-chan struct{} { return f.exited }
func (f *fakeDependency) Pid() int                { return 4242 }
func (f *fakeDependency) Close()                  { f.closeCalls.Add(1) }

func (f *fakeDependency) Stop(time.Duration) error {
	f.stopCalls.Add(1)
	if f.State() == process.StateExited {
		return errors.New("process already finished")
	}
	f.exit()
	return nil
}

// fakeMain exits with exitCode immediately unless block is set, in which
// case it runs until stopped.
type fakeMain struct {
	startErr error
	exitCode int
	block    bool
	onStart  func()
	onStop   func()
	// wait overrides Wait when set.
	wait func(ctx context.Context) (int, error)

	started    chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
	startCalls atomic.Int32
	stopCalls  atomic.Int32
}

func newFakeMain() *fakeMain {
	return &fakeMain{started: make(chan struct{}), stopped: make(chan struct{})}
}

func (m *fakeMain) Start(context.Context) error {
	m.startCalls.Add(1)
	if m.startErr != nil {
		return m.startErr
	}
	if m.onStart != nil {
		m.onStart()
	}
	close(m.started)
	return nil
}

func (m *fakeMain) Wait(ctx context.Context) (int, error) {
	if m.wait != nil {
		return m.wait(ctx)
	}
	if !m.block {
		return m.exitCode, nil
	}
	select {
	case <-m.stopped:
		return 143, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (m *fakeMain) Pid() int { return 4343 }
func (m *fakeMain) Close()   {}

func (m *fakeMain) Stop(time.Duration) error {
	m.stopCalls.Add(1)
	if m.onStop != nil {
		m.onStop()
	}
	m.stopOnce.Do(func() { close(m.stopped) })
	return nil
}

// fakeLauncher hands out the configured fakes and counts spawn requests.
type fakeLauncher struct {
	dep    *fakeDependency
	main   *fakeMain
	depErr error

	depCreated  atomic.Int32
	mainCreated atomic.Int32

	// depStateAtMainStart is the dependency state observed at the instant
	// the main process was spawned.
	depStateAtMainStart atomic.Int32
}

func newFakeLauncher() *fakeLauncher {
	l := &fakeLauncher{dep: newFakeDependency(), main: newFakeMain()}
	l.depStateAtMainStart.Store(-1)
	l.main.onStart = func() { l.depStateAtMainStart.Store(int32(l.dep.State())) }
	return l
}

func (l *fakeLauncher) NewDependency(string, *slog.Logger) (Dependency, error) {
	l.depCreated.Add(1)
	if l.depErr != nil {
		return nil, l.depErr
	}
	return l.dep, nil
}

func (l *fakeLauncher) NewMain(*slog.Logger) (MainProcess, error) {
	l.mainCreated.Add(1)
	return l.main, nil
}

// spawns is the total number of child processes started.
func (l *fakeLauncher) spawns() int {
	return int(l.dep.startCalls.Load() + l.main.startCalls.Load())
}

func satisfied(context.Context) precheck.Result {
	return precheck.Result{Satisfied: true, RuntimePath: "/usr/bin/java", RuntimeVersion: "17.0.2"}
}

func unsatisfied(context.Context) precheck.Result {
	return precheck.Result{
		Satisfied: false,
		Detail:    "required runtime is not installed or not in PATH",
		Findings: []precheck.Finding{{
			Check:    "runtime",
			Severity: precheck.SeverityError,
			Message:  "required runtime is not installed or not in PATH",
		}},
	}
}

// noSignals never delivers a signal.
func noSignals(chan<- os.Signal) func() { return func() {} }

// manualSignals lets a test deliver a signal to the supervisor.
type manualSignals struct {
	ch chan chan<- os.Signal
}

func newManualSignals() *manualSignals {
	return &manualSignals{ch: make(chan chan<- os.Signal, 1)}
}

func (m *manualSignals) source(c chan<- os.Signal) func() {
	m.ch <- c
	return func() {}
}

func (m *manualSignals) send(sig os.Signal) {
	c := <-m.ch
	c <- sig
}

type fakeHistory struct {
	mu      sync.Mutex
	records []history.Record
	err     error
}

func (h *fakeHistory) Append(_ context.Context, rec history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return h.err
}
