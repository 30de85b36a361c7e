package sidecarrun

import (
	"context"

	"github.com/giantswarm/sidecarrun/internal/core"
	"github.com/giantswarm/sidecarrun/internal/history"
)

// HistoryRecord is one past run as stored by WithHistoryPath.
type HistoryRecord = history.Record

// ListHistory returns up to limit runs recorded at path, newest first. A
// non-positive limit returns the 20 most recent runs.
func ListHistory(ctx context.Context, path string, limit int) ([]HistoryRecord, error) {
	s, err := history.Open(ctx, path, core.Logger())
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return s.List(ctx, limit)
}
