// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/verbum/internal/core/devotion"
	"github.com/taibuivan/verbum/internal/core/scripture"
	"github.com/taibuivan/verbum/internal/platform/ctxutil"
	"github.com/taibuivan/verbum/internal/platform/translate"
	"github.com/taibuivan/verbum/pkg/uuid"
)

// ScriptureSource is the part of the scripture service a run needs.
// [*scripture.Service] satisfies it.
type ScriptureSource interface {
	GetTranslation(ctx context.Context, id int64) (*scripture.Translation, error)
	LookupBook(ctx context.Context, citation *scripture.Citation, locale string) (*scripture.Book, error)
	Resolve(ctx context.Context, citation *scripture.Citation, bookID, translationID int64, opts scripture.FormatOptions) (*scripture.Passage, error)
}

// Config tunes batching and pacing.
type Config struct {
	BatchSize       int
	BatchPause      time.Duration
	TitlePauseEvery int
	TitlePause      time.Duration
	RecordPause     time.Duration
}

// DefaultConfig mirrors the defaults of the PIPELINE_* environment variables.
func DefaultConfig() Config {
	return Config{
		BatchSize:       10,
		BatchPause:      200 * time.Millisecond,
		TitlePauseEvery: 5,
		TitlePause:      time.Second,
		RecordPause:     100 * time.Millisecond,
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Orchestrator executes migration runs.
type Orchestrator struct {
	records    devotion.RecordStore
	scripture  ScriptureSource
	translator translate.Translator
	config     Config
	logger     *slog.Logger
	sleep      Sleeper
	now        func() time.Time
}

// Option customizes the [Orchestrator].
type Option func(*Orchestrator)

// WithSleeper replaces the pause implementation.
func WithSleeper(sleep Sleeper) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithClock replaces the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator constructs an [Orchestrator].
func NewOrchestrator(records devotion.RecordStore, source ScriptureSource, translator translate.Translator, config Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	orchestrator := &Orchestrator{
		records:    records,
		scripture:  source,
		translator: translator,
		config:     config,
		logger:     logger,
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(orchestrator)
	}
	return orchestrator
}

// slotTarget is a resolved selection.
type slotTarget struct {
	index       int
	translation *scripture.Translation
}

// execution carries the state of a single [Orchestrator.Run] call.
type execution struct {
	*Orchestrator
	run      *MigrationRun
	request  Request
	observer Observer
	logger   *slog.Logger
	slots    []slotTarget
}

/*
Run executes one migration run to completion.

Parameters:
  - ctx: context.Context (cancellation stops the run at the next item boundary)
  - request: Request (a RunID is generated when empty)
  - observer: Observer (optional, receives a snapshot after every step)

Returns:
  - *Report: the final snapshot, also on failure
  - error: *PhaseError when the run ended in Failed
*/
func (o *Orchestrator) Run(ctx context.Context, request Request, observer Observer) (*Report, error) {
	if request.RunID == "" {
		request.RunID = ctxutil.GetRunID(ctx)
	}
	if request.RunID == "" {
		request.RunID = uuid.New()
	}

	exec := &execution{
		Orchestrator: o,
		run:          NewMigrationRun(request, o.now),
		request:      request,
		observer:     observer,
		logger: o.logger.With(
			slog.String("run_id", request.RunID),
			slog.String("source_lang", request.SourceLang),
			slog.String("target_lang", request.TargetLang),
		),
	}

	ctx = ctxutil.WithLogger(ctxutil.WithRunID(ctx, request.RunID), exec.logger)

	exec.logger.InfoContext(ctx, "migration_run_started", slog.Bool("dry_run", request.DryRun))

	if err := exec.execute(ctx); err != nil {
		phaseErr := &PhaseError{Phase: exec.run.Phase(), Err: err}
		exec.run.Fail(phaseErr)
		exec.notify(ctx)

		exec.logger.ErrorContext(ctx, "migration_run_failed",
			slog.String("phase", string(phaseErr.Phase)),
			slog.String("error", err.Error()),
		)

		report := exec.run.Report()
		return &report, phaseErr
	}

	report := exec.run.Report()
	exec.logger.InfoContext(ctx, "migration_run_completed",
		slog.Int("copied", report.Copied),
		slog.Int("titles_translated", report.TitlesTranslated),
		slog.Int("slots_filled", report.SlotsFilled),
		slog.Int("error_count", report.ErrorCount),
	)
	return &report, nil
}

func (exec *execution) execute(ctx context.Context) error {
	records, err := exec.fetch(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		exec.run.nothingToMigrate = true
		exec.logger.InfoContext(ctx, "migration_nothing_to_migrate")
		return exec.advance(ctx, PhaseDone, 0)
	}

	if exec.request.DryRun {
		exec.plan(ctx, records)
		return exec.advance(ctx, PhaseDone, 0)
	}

	clones, err := exec.copy(ctx, records)
	if err != nil {
		return err
	}

	if err := exec.translateTitles(ctx, clones); err != nil {
		return err
	}

	if err := exec.importScripture(ctx, clones); err != nil {
		return err
	}

	return exec.advance(ctx, PhaseDone, 0)
}

func (exec *execution) advance(ctx context.Context, phase Phase, total int) error {
	if err := exec.run.Advance(phase, total); err != nil {
		return err
	}
	exec.logger.InfoContext(ctx, "migration_phase_started", slog.String("phase", string(phase)), slog.Int("total", total))
	exec.notify(ctx)
	return nil
}

func (exec *execution) notify(ctx context.Context) {
	if exec.observer != nil {
		exec.observer.OnProgress(ctx, exec.run.Report())
	}
}

// # Fetching

// fetch loads the source set and the selected translations. Nothing is
// written before both succeed.
func (exec *execution) fetch(ctx context.Context) ([]*devotion.Record, error) {
	if err := exec.advance(ctx, PhaseFetching, 0); err != nil {
		return nil, err
	}

	records, err := exec.records.ListRecords(ctx, exec.request.SourceLang)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	for i, selection := range exec.request.Selections {
		if selection.TranslationID == 0 {
			continue
		}
		translation, err := exec.scripture.GetTranslation(ctx, selection.TranslationID)
		if err != nil {
			return nil, fmt.Errorf("slot %d: translation %d: %w", i+1, selection.TranslationID, err)
		}
		exec.slots = append(exec.slots, slotTarget{index: i, translation: translation})
	}

	exec.run.progress = Progress{Current: len(records), Total: len(records)}
	return records, nil
}

// plan records what a real run would do, without writing.
func (exec *execution) plan(ctx context.Context, records []*devotion.Record) {
	plan := &Plan{CloneCount: len(records)}

	for _, record := range records {
		if _, _, err := exec.parseCitation(ctx, record); err != nil {
			plan.Unresolvable = append(plan.Unresolvable, ItemError{
				RecordID: record.ID,
				Phase:    PhaseFetching,
				Message:  err.Error(),
			})
		}
	}

	exec.run.plan = plan
}

// # Copying

func (exec *execution) copy(ctx context.Context, records []*devotion.Record) ([]*devotion.Record, error) {
	if err := exec.advance(ctx, PhaseCopying, len(records)); err != nil {
		return nil, err
	}

	size := exec.config.BatchSize
	clones := make([]*devotion.Record, 0, len(records))

	for start := 0; start < len(records); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+size, len(records))
		batch := make([]*devotion.Record, 0, end-start)
		for _, record := range records[start:end] {
			batch = append(batch, record.CloneFor(exec.request.TargetLang))
		}

		ids, err := exec.records.InsertRecords(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("insert batch at %d: %w", start, err)
		}
		if len(ids) != len(batch) {
			return nil, fmt.Errorf("insert batch at %d: got %d ids for %d records", start, len(ids), len(batch))
		}

		for i, clone := range batch {
			clone.ID = ids[i]
		}
		clones = append(clones, batch...)

		exec.run.copied += len(batch)
		exec.run.Step(len(batch))
		exec.notify(ctx)

		exec.logger.DebugContext(ctx, "migration_batch_copied", slog.Int("from", start), slog.Int("count", len(batch)))

		if end < len(records) {
			if err := exec.sleep(ctx, exec.config.BatchPause); err != nil {
				return nil, err
			}
		}
	}

	return clones, nil
}

// # Translating Titles

func (exec *execution) translateTitles(ctx context.Context, clones []*devotion.Record) error {
	if err := exec.advance(ctx, PhaseTranslatingTitles, len(clones)); err != nil {
		return err
	}

	for i, clone := range clones {
		if err := ctx.Err(); err != nil {
			return err
		}

		exec.translateTitle(ctx, clone)
		exec.run.Step(1)
		exec.notify(ctx)

		every := exec.config.TitlePauseEvery
		if every > 0 && (i+1)%every == 0 && i+1 < len(clones) {
			if err := exec.sleep(ctx, exec.config.TitlePause); err != nil {
				return err
			}
		}
	}

	return nil
}

// translateTitle keeps the original title on any failure.
func (exec *execution) translateTitle(ctx context.Context, clone *devotion.Record) {
	translated, err := exec.translator.Translate(ctx, clone.Title, exec.request.TargetLang)
	if err != nil {
		exec.itemError(ctx, "title_translation_failed", ItemError{
			RecordID: clone.ID,
			Phase:    PhaseTranslatingTitles,
			Message:  "translate title: " + err.Error(),
		})
		return
	}

	if err := exec.records.UpdateRecord(ctx, clone.ID, devotion.RecordUpdate{Title: &translated}); err != nil {
		exec.itemError(ctx, "title_update_failed", ItemError{
			RecordID: clone.ID,
			Phase:    PhaseTranslatingTitles,
			Message:  "store title: " + err.Error(),
		})
		return
	}

	clone.Title = translated
	exec.run.titlesTranslated++
}

// # Importing Scripture

func (exec *execution) importScripture(ctx context.Context, clones []*devotion.Record) error {
	if err := exec.advance(ctx, PhaseImportingScripture, len(clones)); err != nil {
		return err
	}

	for i, clone := range clones {
		if err := ctx.Err(); err != nil {
			return err
		}

		exec.importRecord(ctx, clone)
		exec.run.Step(1)
		exec.notify(ctx)

		if i+1 < len(clones) {
			if err := exec.sleep(ctx, exec.config.RecordPause); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseCitation parses a record's citation and finds its book in the target catalog.
func (exec *execution) parseCitation(ctx context.Context, record *devotion.Record) (*scripture.Citation, *scripture.Book, error) {
	citation, err := scripture.Parse(record.Citation)
	if err != nil {
		return nil, nil, err
	}

	if citation.Lenient() {
		rules := make([]string, len(citation.Tolerated))
		for i, tolerance := range citation.Tolerated {
			rules[i] = string(tolerance.Rule) + ":" + tolerance.Fragment
		}
		exec.logger.WarnContext(ctx, "citation_tolerance_applied",
			slog.Int64("record_id", record.ID),
			slog.String("citation", record.Citation),
			slog.String("read_as", citation.String()),
			slog.String("rules", strings.Join(rules, ", ")),
		)
	}

	book, err := exec.scripture.LookupBook(ctx, citation, exec.request.TargetLang)
	if err != nil {
		return nil, nil, err
	}

	return citation, book, nil
}

// importRecord resolves every selected slot concurrently and writes them in
// one update. Failed slots stay blank.
func (exec *execution) importRecord(ctx context.Context, clone *devotion.Record) {
	if len(exec.slots) == 0 {
		return
	}

	citation, book, err := exec.parseCitation(ctx, clone)
	if err != nil {
		exec.itemError(ctx, "citation_unresolvable", ItemError{
			RecordID: clone.ID,
			Phase:    PhaseImportingScripture,
			Message:  fmt.Sprintf("citation %q: %v", clone.Citation, err),
		})
		return
	}

	var slots [devotion.SlotCount]devotion.ScriptureSlot
	var failures [devotion.SlotCount]error

	var group errgroup.Group
	for _, target := range exec.slots {
		group.Go(func() error {
			passage, err := exec.scripture.Resolve(ctx, citation, book.ID, target.translation.ID, scripture.FormatOptions{VerseNumbers: true})
			if err != nil {
				failures[target.index] = err
				return nil
			}
			slots[target.index] = devotion.ScriptureSlot{Text: passage.Text, Translation: target.translation.Name}
			return nil
		})
	}
	_ = group.Wait()

	filled := 0
	for _, target := range exec.slots {
		if err := failures[target.index]; err != nil {
			exec.itemError(ctx, "scripture_slot_failed", ItemError{
				RecordID: clone.ID,
				Phase:    PhaseImportingScripture,
				Slot:     target.index + 1,
				Message:  target.translation.Code + ": " + err.Error(),
			})
			continue
		}
		filled++
	}

	if filled == 0 {
		return
	}

	if err := exec.records.UpdateRecord(ctx, clone.ID, devotion.RecordUpdate{Slots: &slots}); err != nil {
		exec.itemError(ctx, "scripture_update_failed", ItemError{
			RecordID: clone.ID,
			Phase:    PhaseImportingScripture,
			Message:  "store scripture: " + err.Error(),
		})
		return
	}

	clone.Slots = slots
	exec.run.slotsFilled += filled
}

func (exec *execution) itemError(ctx context.Context, event string, itemErr ItemError) {
	exec.run.RecordError(itemErr)
	exec.logger.WarnContext(ctx, event,
		slog.Int64("record_id", itemErr.RecordID),
		slog.Int("slot", itemErr.Slot),
		slog.String("error", itemErr.Message),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
