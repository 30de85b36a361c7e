package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrEmptySrc is returned when a source path is empty.
const ErrEmptySrc = sentinel.Error("source path must not be empty")

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// CopyIfMissing copies src to dst unless dst already exists, creating parent
// directories as needed. It reports whether a copy happened. The destination
// is opened with O_EXCL so an existing file is never overwritten, even if it
// appears between the existence check and the open.
//
// A partially written destination is removed on failure.
func CopyIfMissing(src, dst string, mode os.FileMode) (copied bool, retErr error) {
	if src == "" {
		return false, ErrEmptySrc
	}
	if dst == "" {
		return false, ErrEmptyDst
	}

	if err := EnsureDirForFile(dst); err != nil {
		return false, fmt.Errorf("prepare destination: %w", err)
	}

	srcFile, err := os.Open(src) //nolint:gosec // G304: paths come from supervisor configuration
	if err != nil {
		return false, fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close source: %w", closeErr)
		}
	}()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode) //nolint:gosec // G304
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		_ = os.Remove(dst)
		return false, fmt.Errorf("copy: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		_ = os.Remove(dst)
		return false, fmt.Errorf("close destination: %w", err)
	}
	return true, nil
}
