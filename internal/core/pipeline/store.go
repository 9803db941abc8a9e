// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// RunStore keeps the latest [Report] of every run so progress can be polled.
type RunStore interface {
	// Save replaces the stored snapshot of report.RunID.
	Save(ctx context.Context, report Report) error

	// Get returns the latest snapshot. A missing run yields dberr.ErrNotFound.
	Get(ctx context.Context, runID string) (*Report, error)
}

// saveTimeout bounds a snapshot write that outlives a cancelled run.
const saveTimeout = 5 * time.Second

// StoreObserver persists every snapshot to a [RunStore].
//
// Writes are detached from the run's cancellation so the terminal snapshot of a
// cancelled run is still stored. Store failures are logged, never propagated.
type StoreObserver struct {
	store  RunStore
	logger *slog.Logger
}

// NewStoreObserver constructs a [StoreObserver].
func NewStoreObserver(store RunStore, logger *slog.Logger) *StoreObserver {
	return &StoreObserver{store: store, logger: logger}
}

// OnProgress implements [Observer].
func (observer *StoreObserver) OnProgress(ctx context.Context, report Report) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := observer.store.Save(ctx, report); err != nil {
		observer.logger.WarnContext(ctx, "migration_snapshot_save_failed",
			slog.String("run_id", report.RunID),
			slog.String("phase", string(report.Phase)),
			slog.String("error", err.Error()),
		)
	}
}
