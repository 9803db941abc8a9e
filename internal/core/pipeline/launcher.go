// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/taibuivan/verbum/internal/platform/ctxutil"
	"github.com/taibuivan/verbum/internal/platform/dberr"
	"github.com/taibuivan/verbum/pkg/uuid"
)

// ErrRunExists is returned when a run identifier has already been used.
var ErrRunExists = errors.New("pipeline: run id already used")

// Runner executes a run synchronously. [*Orchestrator] satisfies it.
type Runner interface {
	Run(ctx context.Context, request Request, observer Observer) (*Report, error)
}

// Launcher starts runs in the background, bound to a server-lifetime context.
type Launcher struct {
	base   context.Context
	runner Runner
	store  RunStore
	logger *slog.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	active map[string]struct{}
}

// NewLauncher constructs a [Launcher]. Cancelling base stops every active run.
func NewLauncher(base context.Context, runner Runner, store RunStore, logger *slog.Logger) *Launcher {
	return &Launcher{
		base:   base,
		runner: runner,
		store:  store,
		logger: logger,
		active: make(map[string]struct{}),
	}
}

/*
Start registers a run and executes it in a new goroutine.

Parameters:
  - ctx: context.Context (request scope; only used for the initial snapshot)
  - request: Request

Returns:
  - Report: the pending snapshot, already persisted
  - error: ErrRunExists, or store failures
*/
func (launcher *Launcher) Start(ctx context.Context, request Request) (Report, error) {
	if request.RunID == "" {
		request.RunID = uuid.New()
	}

	if err := launcher.claim(ctx, request.RunID); err != nil {
		return Report{}, err
	}

	pending := NewMigrationRun(request, nil).Report()
	if err := launcher.store.Save(ctx, pending); err != nil {
		launcher.release(request.RunID)
		return Report{}, fmt.Errorf("pipeline: save pending run: %w", err)
	}

	logger := launcher.logger.With(slog.String("run_id", request.RunID))
	runCtx := ctxutil.WithRunID(launcher.base, request.RunID)

	launcher.wg.Add(1)
	go func() {
		defer launcher.wg.Done()
		defer launcher.release(request.RunID)

		if _, err := launcher.runner.Run(runCtx, request, NewStoreObserver(launcher.store, logger)); err != nil {
			logger.ErrorContext(runCtx, "migration_run_aborted", slog.String("error", err.Error()))
		}
	}()

	return pending, nil
}

// Wait blocks until every started run has returned.
func (launcher *Launcher) Wait() {
	launcher.wg.Wait()
}

// claim reserves a run identifier that is neither active nor stored.
func (launcher *Launcher) claim(ctx context.Context, runID string) error {
	launcher.mu.Lock()
	defer launcher.mu.Unlock()

	if _, busy := launcher.active[runID]; busy {
		return ErrRunExists
	}

	_, err := launcher.store.Get(ctx, runID)
	switch {
	case err == nil:
		return ErrRunExists
	case !dberr.IsNotFound(err):
		return fmt.Errorf("pipeline: check run id: %w", err)
	}

	launcher.active[runID] = struct{}{}
	return nil
}

func (launcher *Launcher) release(runID string) {
	launcher.mu.Lock()
	defer launcher.mu.Unlock()
	delete(launcher.active, runID)
}
