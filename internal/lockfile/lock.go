package lockfile

import (
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"github.com/giantswarm/sidecarrun/internal/fileutil"
	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrLocked is returned by Acquire when another process holds the lock.
const ErrLocked = sentinel.Error("another supervisor is running")

// Lock is a held single-instance lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the exclusive lock at path without blocking. The parent
// directory is created if needed.
func Acquire(path string) (*Lock, error) {
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release unlocks and closes the lock file. The file is left on disk so a
// concurrent Acquire never races against its removal. Errors are logged at
// debug level; release is best effort.
func (l *Lock) Release(logger *slog.Logger) {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil && logger != nil {
		logger.Debug("failed to release lock", "path", l.fl.Path(), "err", err)
	}
}
