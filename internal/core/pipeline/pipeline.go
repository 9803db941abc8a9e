// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pipeline clones a language's devotional records into another language.

# Phases

A run moves strictly forward through

	Fetching → Copying → TranslatingTitles → ImportingScripture → Done

and ends in Failed when fetching or copying fails. Every phase drains
completely before the next one starts.

Cancellation is the one exception: a run whose context is cancelled is
abandoned at the next item boundary and ends in Failed from whatever phase it
was in, TranslatingTitles and ImportingScripture included.

# Failure Model

  - [PhaseError]: fatal. The run stops; records already copied stay as
    clones with blank scripture (there is no rollback).
  - [ItemError]: one record or one scripture slot failed. It is recorded on the
    report and the run continues.

Re-running for the same language pair always creates a fresh clone set.
*/
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/verbum/internal/core/devotion"
)

// # Phases

// Phase is a step of a migration run.
type Phase string

const (
	PhasePending            Phase = "pending"
	PhaseFetching           Phase = "fetching"
	PhaseCopying            Phase = "copying"
	PhaseTranslatingTitles  Phase = "translating_titles"
	PhaseImportingScripture Phase = "importing_scripture"
	PhaseDone               Phase = "done"
	PhaseFailed             Phase = "failed"
)

var phaseOrder = map[Phase]int{
	PhasePending:            0,
	PhaseFetching:           1,
	PhaseCopying:            2,
	PhaseTranslatingTitles:  3,
	PhaseImportingScripture: 4,
	PhaseDone:               5,
	PhaseFailed:             5,
}

// IsTerminal reports whether the run has finished.
func (phase Phase) IsTerminal() bool {
	return phase == PhaseDone || phase == PhaseFailed
}

// # Request

// Selection picks the translation used for one scripture slot. A zero
// TranslationID leaves the slot unused.
type Selection struct {
	TranslationID int64 `json:"translation_id"`
}

// Request describes one run.
type Request struct {
	// RunID identifies the run; a UUIDv7 is generated when empty.
	RunID      string                        `json:"run_id"`
	SourceLang string                        `json:"source_lang"`
	TargetLang string                        `json:"target_lang"`
	Selections [devotion.SlotCount]Selection `json:"selections"`

	// DryRun fetches and plans without writing anything.
	DryRun bool `json:"dry_run"`
}

// # Errors

// ItemError is a non-fatal failure of one record. Slot is 1-based; zero means
// the error concerns the whole record.
type ItemError struct {
	RecordID int64  `json:"record_id"`
	Phase    Phase  `json:"phase"`
	Slot     int    `json:"slot,omitempty"`
	Message  string `json:"message"`
}

// PhaseError is a fatal failure that aborted the run.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("pipeline: %s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// # Reporting

// Progress counts the items of the current phase.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Plan is what a dry run would do.
type Plan struct {
	CloneCount int `json:"clone_count"`

	// Unresolvable lists records whose citation cannot be parsed or whose book
	// is missing from the target catalog.
	Unresolvable []ItemError `json:"unresolvable"`
}

// Report is an immutable snapshot of a run.
type Report struct {
	RunID      string                        `json:"run_id"`
	SourceLang string                        `json:"source_lang"`
	TargetLang string                        `json:"target_lang"`
	Selections [devotion.SlotCount]Selection `json:"selections"`
	DryRun     bool                          `json:"dry_run"`

	Phase    Phase    `json:"phase"`
	Progress Progress `json:"progress"`

	Copied           int `json:"copied"`
	TitlesTranslated int `json:"titles_translated"`
	SlotsFilled      int `json:"slots_filled"`

	// SuccessCount is the number of records cloned; ErrorCount is len(Errors).
	SuccessCount int         `json:"success_count"`
	ErrorCount   int         `json:"error_count"`
	Errors       []ItemError `json:"errors"`

	NothingToMigrate bool   `json:"nothing_to_migrate"`
	Failure          string `json:"failure,omitempty"`
	Plan             *Plan  `json:"plan,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Observer receives a snapshot after every phase change and processed item.
//
// Calls are made synchronously from the run goroutine.
type Observer interface {
	OnProgress(ctx context.Context, report Report)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(ctx context.Context, report Report)

// OnProgress implements [Observer].
func (fn ObserverFunc) OnProgress(ctx context.Context, report Report) { fn(ctx, report) }
