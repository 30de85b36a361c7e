package lockfile

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquire(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "sidecarrun.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}
	if first.Path() != path {
		t.Errorf("Path() = %q, want %q", first.Path(), path)
	}

	// flock locks are per open file description, so a second handle in
	// the same process conflicts just like another supervisor would.
	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire() error = %v, want ErrLocked", err)
	}

	first.Release(nil)

	again, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() after Release error: %v", err)
	}
	again.Release(nil)
}

func TestRelease_Nil(t *testing.T) {
	t.Parallel()

	var l *Lock
	l.Release(nil)
}
