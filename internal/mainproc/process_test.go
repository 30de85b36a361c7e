package mainproc

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/sidecarrun/internal/process"
)

func newDetached(t *testing.T, script string) *Process {
	t.Helper()
	p, err := New(Config{
		Command:     []string{"sh", "-c", script},
		Detached:    true,
		LogDir:      t.TempDir(),
		StopTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		_ = p.Stop(time.Second)
		p.Close()
	})
	return p
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg          Config
		wantContains string
	}{
		"empty command":         {cfg: Config{}, wantContains: "command must not be empty"},
		"blank argv0":           {cfg: Config{Command: []string{""}}, wantContains: "command must not be empty"},
		"detached without logs": {cfg: Config{Command: []string{"python"}, Detached: true}, wantContains: "log dir"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.wantContains) {
				t.Fatalf("New() error = %v, want it to contain %q", err, tc.wantContains)
			}
		})
	}
}

func TestNew_DefaultName(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Command: []string{"python", "bot.py"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if p.Name() != DefaultName {
		t.Errorf("Name() = %q, want %q", p.Name(), DefaultName)
	}
}

func TestProcess_WaitPropagatesExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		script string
		want   int
	}{
		"clean exit": {script: "exit 0", want: 0},
		"error exit": {script: "exit 42", want: 42},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := newDetached(t, tc.script)
			if err := p.Start(context.Background()); err != nil {
				t.Fatalf("Start() error: %v", err)
			}
			got, err := p.Wait(context.Background())
			if err != nil {
				t.Fatalf("Wait() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Wait() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProcess_WaitCanceled(t *testing.T) {
	t.Parallel()

	p := newDetached(t, "sleep 30")
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if _, err := p.ExitCode(); err != nil {
		t.Fatalf("ExitCode() after Stop error: %v", err)
	}
}

func TestProcess_WaitBeforeStart(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Command: []string{"true"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := p.Wait(context.Background()); !errors.Is(err, process.ErrNotExited) {
		t.Fatalf("Wait() error = %v, want %v", err, process.ErrNotExited)
	}
}

func TestProcess_EnvPassThrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, err := New(Config{
		Command:  []string{"sh", "-c", `echo "$LAVALINK_HOST:$LAVALINK_PORT"`},
		Env:      []string{"PATH=" + os.Getenv("PATH"), "LAVALINK_HOST=127.0.0.1", "LAVALINK_PORT=2333"},
		Detached: true,
		LogDir:   dir,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Close()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if _, err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	out, err := os.ReadFile(dir + "/" + DefaultName + "-stdout.log")
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "127.0.0.1:2333" {
		t.Errorf("child saw %q, want %q", got, "127.0.0.1:2333")
	}
}
