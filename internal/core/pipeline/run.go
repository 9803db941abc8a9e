// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"fmt"
	"slices"
	"time"
)

// MigrationRun is the working state of one run. It is owned by the goroutine
// executing the run; other parties only ever see [Report] snapshots.
type MigrationRun struct {
	request Request
	now     func() time.Time

	phase    Phase
	progress Progress

	copied           int
	titlesTranslated int
	slotsFilled      int
	errors           []ItemError

	nothingToMigrate bool
	failure          string
	plan             *Plan

	startedAt  time.Time
	updatedAt  time.Time
	finishedAt time.Time
}

// NewMigrationRun starts a run in [PhasePending].
func NewMigrationRun(request Request, now func() time.Time) *MigrationRun {
	if now == nil {
		now = time.Now
	}
	started := now().UTC()
	return &MigrationRun{
		request:   request,
		now:       now,
		phase:     PhasePending,
		startedAt: started,
		updatedAt: started,
	}
}

// Phase returns the current phase.
func (run *MigrationRun) Phase() Phase { return run.phase }

// Advance moves the run to the next phase and resets the progress counter.
// Moving backwards, sideways or out of a terminal phase is an error.
func (run *MigrationRun) Advance(next Phase, total int) error {
	if run.phase.IsTerminal() {
		return fmt.Errorf("pipeline: run already %s", run.phase)
	}
	if phaseOrder[next] <= phaseOrder[run.phase] {
		return fmt.Errorf("pipeline: cannot move from %s to %s", run.phase, next)
	}

	run.phase = next
	run.progress = Progress{Total: total}
	run.touch()

	if next.IsTerminal() {
		run.finishedAt = run.updatedAt
	}
	return nil
}

// Fail moves the run to [PhaseFailed] from any non-terminal phase.
func (run *MigrationRun) Fail(err error) {
	if run.phase.IsTerminal() {
		return
	}
	run.failure = err.Error()
	run.progress = Progress{}
	run.phase = PhaseFailed
	run.touch()
	run.finishedAt = run.updatedAt
}

// Step marks one item of the current phase as processed.
func (run *MigrationRun) Step(n int) {
	run.progress.Current += n
	run.touch()
}

// RecordError adds a non-fatal error.
func (run *MigrationRun) RecordError(itemErr ItemError) {
	run.errors = append(run.errors, itemErr)
	run.touch()
}

func (run *MigrationRun) touch() {
	run.updatedAt = run.now().UTC()
}

// Report returns a deep snapshot of the run.
func (run *MigrationRun) Report() Report {
	report := Report{
		RunID:            run.request.RunID,
		SourceLang:       run.request.SourceLang,
		TargetLang:       run.request.TargetLang,
		Selections:       run.request.Selections,
		DryRun:           run.request.DryRun,
		Phase:            run.phase,
		Progress:         run.progress,
		Copied:           run.copied,
		TitlesTranslated: run.titlesTranslated,
		SlotsFilled:      run.slotsFilled,
		SuccessCount:     run.copied,
		ErrorCount:       len(run.errors),
		Errors:           slices.Clone(run.errors),
		NothingToMigrate: run.nothingToMigrate,
		Failure:          run.failure,
		StartedAt:        run.startedAt,
		UpdatedAt:        run.updatedAt,
	}

	if report.Errors == nil {
		report.Errors = []ItemError{}
	}

	if run.plan != nil {
		plan := *run.plan
		plan.Unresolvable = slices.Clone(run.plan.Unresolvable)
		report.Plan = &plan
	}

	if !run.finishedAt.IsZero() {
		finished := run.finishedAt
		report.FinishedAt = &finished
	}

	return report
}
