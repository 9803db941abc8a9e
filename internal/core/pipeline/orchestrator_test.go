// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/verbum/internal/core/pipeline"
	"github.com/taibuivan/verbum/internal/platform/ctxutil"
	"github.com/taibuivan/verbum/internal/platform/translate"
)

type harness struct {
	records    *memoryRecords
	translator *fakeTranslator
	sleeper    *recordingSleeper
	observer   *recordingObserver
}

func newHarness(records *memoryRecords) *harness {
	return &harness{
		records:    records,
		translator: &fakeTranslator{},
		sleeper:    &recordingSleeper{},
		observer:   &recordingObserver{},
	}
}

func (h *harness) orchestrator(translator translate.Translator) *pipeline.Orchestrator {
	if translator == nil {
		translator = h.translator
	}
	return pipeline.NewOrchestrator(h.records, newScriptureService(), translator, testConfig(), discardLogger(),
		pipeline.WithSleeper(h.sleeper.Sleep))
}

func (h *harness) run(t *testing.T, ctx context.Context, request pipeline.Request) (*pipeline.Report, error) {
	t.Helper()
	return h.orchestrator(nil).Run(ctx, request, h.observer)
}

func baseRequest() pipeline.Request {
	return pipeline.Request{SourceLang: "sk", TargetLang: "en", Selections: selections(1, 2)}
}

/*
TestRun_ZeroRecords ends in Done, never Failed, with nothing written.
*/
func TestRun_ZeroRecords(t *testing.T) {
	h := newHarness(newMemoryRecords())

	report, err := h.run(t, context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, pipeline.PhaseDone, report.Phase)
	assert.True(t, report.NothingToMigrate)
	assert.Zero(t, report.Copied)
	assert.Zero(t, report.TitlesTranslated)
	assert.Zero(t, report.SlotsFilled)
	assert.Empty(t, report.Errors)
	assert.Zero(t, h.records.insertCalls)
	assert.NotEmpty(t, report.RunID, "run id generated")
	assert.NotNil(t, report.FinishedAt)
}

/*
TestRun_HappyPath covers batching, translation, scripture import and pacing.
*/
func TestRun_HappyPath(t *testing.T) {
	h := newHarness(newMemoryRecords(sourceRecords(12, "Mt 4, 1-2. 2-3")...))

	report, err := h.run(t, context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, pipeline.PhaseDone, report.Phase)
	assert.Equal(t, 12, report.Copied)
	assert.Equal(t, 12, report.SuccessCount)
	assert.Equal(t, 12, report.TitlesTranslated)
	assert.Equal(t, 24, report.SlotsFilled)
	assert.Zero(t, report.ErrorCount)
	assert.Equal(t, 2, h.records.insertCalls, "two batches of at most 10")

	clones := h.records.byLang("en")
	require.Len(t, clones, 12)

	first := clones[0]
	assert.Equal(t, "[en] Zamyslenie 1", first.Title)
	assert.Equal(t, "Mt 4, 1-2. 2-3", first.Citation)
	assert.Equal(t, "1 t1-v1 2 t1-v2 3 t1-v3", first.Slots[0].Text)
	assert.Equal(t, "New American Bible", first.Slots[0].Translation)
	assert.Equal(t, "1 t2-v1 2 t2-v2 3 t2-v3", first.Slots[1].Text)
	assert.True(t, first.Slots[2].IsEmpty())
	assert.Empty(t, first.AudioURL)
	assert.Zero(t, first.AudioSeconds)

	assert.Equal(t, 12, h.records.slotUpdates(), "one scripture write per record")

	source := h.records.byLang("sk")
	assert.Equal(t, "Zamyslenie 1", source[0].Title, "source untouched")

	assert.Equal(t, 1, h.sleeper.count(testConfig().BatchPause))
	assert.Equal(t, 2, h.sleeper.count(testConfig().TitlePause))
	assert.Equal(t, 11, h.sleeper.count(testConfig().RecordPause))
}

/*
TestRun_AllTranslationsFail still reaches Done with every original title intact.
*/
func TestRun_AllTranslationsFail(t *testing.T) {
	h := newHarness(newMemoryRecords(sourceRecords(7, "Mt 4, 1")...))
	h.translator.fn = func(context.Context, string, string) (string, error) {
		return "", errors.New("503 service unavailable")
	}

	report, err := h.run(t, context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, pipeline.PhaseDone, report.Phase)
	assert.Equal(t, 7, report.SuccessCount)
	assert.Equal(t, 7, report.ErrorCount)
	assert.Zero(t, report.TitlesTranslated)
	assert.Equal(t, 14, report.SlotsFilled, "scripture still imported")

	for _, itemErr := range report.Errors {
		assert.Equal(t, pipeline.PhaseTranslatingTitles, itemErr.Phase)
		assert.Contains(t, itemErr.Message, "503")
	}
	for i, clone := range h.records.byLang("en") {
		assert.Equal(t, sourceRecords(7, "")[i].Title, clone.Title)
	}
}

func TestRun_FetchFailure(t *testing.T) {
	records := newMemoryRecords(sourceRecords(3, "Mt 4, 1")...)
	records.listErr = errors.New("relation does not exist")
	h := newHarness(records)

	report, err := h.run(t, context.Background(), baseRequest())

	var phaseErr *pipeline.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, pipeline.PhaseFetching, phaseErr.Phase)
	assert.Equal(t, pipeline.PhaseFailed, report.Phase)
	assert.Contains(t, report.Failure, "relation does not exist")
	assert.Zero(t, records.insertCalls)
	assert.Empty(t, records.updateCalls)
}

func TestRun_UnknownSelectionFailsBeforeWrites(t *testing.T) {
	records := newMemoryRecords(sourceRecords(3, "Mt 4, 1")...)
	h := newHarness(records)

	request := baseRequest()
	request.Selections = selections(1, 99)

	report, err := h.run(t, context.Background(), request)
	require.Error(t, err)
	assert.Equal(t, pipeline.PhaseFailed, report.Phase)
	assert.Zero(t, records.insertCalls)
}

/*
TestRun_InsertFailure is fatal; the first batch stays copied.
*/
func TestRun_InsertFailure(t *testing.T) {
	records := newMemoryRecords(sourceRecords(15, "Mt 4, 1")...)
	records.insertErrAt = 2
	h := newHarness(records)

	report, err := h.run(t, context.Background(), baseRequest())

	var phaseErr *pipeline.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, pipeline.PhaseCopying, phaseErr.Phase)
	assert.Equal(t, pipeline.PhaseFailed, report.Phase)
	assert.Equal(t, 10, report.Copied)
	assert.Len(t, records.byLang("en"), 10, "no rollback")
	assert.Zero(t, h.translator.calls)
}

/*
TestRun_SlotFailuresAreIsolated leaves the failing slot blank and fills the others.
*/
func TestRun_SlotFailuresAreIsolated(t *testing.T) {
	records := newMemoryRecords(sourceRecords(2, "Lk 23, 35-36")...)
	h := newHarness(records)

	request := baseRequest()
	request.Selections = selections(1, 3, 2)

	report, err := h.run(t, context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, 4, report.SlotsFilled)
	require.Equal(t, 2, report.ErrorCount)
	for _, itemErr := range report.Errors {
		assert.Equal(t, 2, itemErr.Slot)
		assert.Equal(t, pipeline.PhaseImportingScripture, itemErr.Phase)
		assert.True(t, strings.HasPrefix(itemErr.Message, "KJV: "))
	}

	for _, clone := range records.byLang("en") {
		assert.NotEmpty(t, clone.Slots[0].Text)
		assert.True(t, clone.Slots[1].IsEmpty())
		assert.Equal(t, "35 t2-v35 36 t2-v36", clone.Slots[2].Text)
	}
}

func TestRun_BadCitationDoesNotBlockOthers(t *testing.T) {
	source := sourceRecords(3, "Mt 4, 1")
	source[1].Citation = "Mt 4:1"
	source[2].Citation = "Jn 3, 16"
	records := newMemoryRecords(source...)
	h := newHarness(records)

	report, err := h.run(t, context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, pipeline.PhaseDone, report.Phase)
	assert.Equal(t, 2, report.SlotsFilled)
	require.Equal(t, 2, report.ErrorCount)
	assert.Contains(t, report.Errors[0].Message, "malformed_citation")
	assert.Contains(t, report.Errors[1].Message, "unknown_book")
	assert.Zero(t, report.Errors[0].Slot)
}

/*
TestRun_PhaseOrdering checks that phases only move forward and each drains first.
*/
func TestRun_PhaseOrdering(t *testing.T) {
	h := newHarness(newMemoryRecords(sourceRecords(11, "Mt 4, 1")...))

	_, err := h.run(t, context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, []pipeline.Phase{
		pipeline.PhaseFetching,
		pipeline.PhaseCopying,
		pipeline.PhaseTranslatingTitles,
		pipeline.PhaseImportingScripture,
		pipeline.PhaseDone,
	}, h.observer.phases())

	for _, report := range h.observer.reports {
		if report.Phase == pipeline.PhaseTranslatingTitles {
			assert.Equal(t, 11, report.Copied, "copying drained before translating")
		}
		assert.LessOrEqual(t, report.Progress.Current, report.Progress.Total)
	}
}

func TestRun_DryRun(t *testing.T) {
	source := sourceRecords(4, "Mt 4, 1")
	source[3].Citation = "bez citácie"
	records := newMemoryRecords(source...)
	h := newHarness(records)

	request := baseRequest()
	request.DryRun = true

	report, err := h.run(t, context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, pipeline.PhaseDone, report.Phase)
	require.NotNil(t, report.Plan)
	assert.Equal(t, 4, report.Plan.CloneCount)
	require.Len(t, report.Plan.Unresolvable, 1)
	assert.Equal(t, int64(4), report.Plan.Unresolvable[0].RecordID)

	assert.Zero(t, records.insertCalls)
	assert.Empty(t, records.updateCalls)
	assert.Zero(t, h.translator.calls)
}

/*
TestRun_Cancellation stops at the next item boundary and reports Failed.
*/
func TestRun_Cancellation(t *testing.T) {
	records := newMemoryRecords(sourceRecords(6, "Mt 4, 1")...)
	h := newHarness(records)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.translator.fn = func(_ context.Context, text, _ string) (string, error) {
		if text == "Zamyslenie 2" {
			cancel()
		}
		return text + "!", nil
	}

	report, err := h.run(t, ctx, baseRequest())
	require.ErrorIs(t, err, context.Canceled)

	var phaseErr *pipeline.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, pipeline.PhaseTranslatingTitles, phaseErr.Phase)
	assert.Equal(t, pipeline.PhaseFailed, report.Phase)
	assert.Equal(t, 6, report.Copied, "copies remain")
	assert.Equal(t, 2, report.TitlesTranslated)
	assert.Zero(t, records.slotUpdates())

	last := h.observer.reports[len(h.observer.reports)-1]
	assert.Equal(t, pipeline.PhaseFailed, last.Phase)
}

func TestRun_ExplicitRunID(t *testing.T) {
	h := newHarness(newMemoryRecords())

	request := baseRequest()
	request.RunID = "0190f5c4-6b1e-7a3c-9d2e-4f5a6b7c8d9e"

	report, err := h.run(t, context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, request.RunID, report.RunID)
}

/*
TestRun_RunIDFromContext adopts the run ID the launcher placed on the context
and hands the run logger to downstream calls.
*/
func TestRun_RunIDFromContext(t *testing.T) {
	h := newHarness(newMemoryRecords(sourceRecords(1, "Mt 4, 1")...))

	const runID = "0190f5c4-6b1e-7a3c-9d2e-4f5a6b7c8d9f"
	var seenRunID string
	h.translator.fn = func(ctx context.Context, text, _ string) (string, error) {
		seenRunID = ctxutil.GetRunID(ctx)
		return text + "!", nil
	}

	report, err := h.run(t, ctxutil.WithRunID(context.Background(), runID), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, runID, report.RunID)
	assert.Equal(t, runID, seenRunID)

	t.Run("request_wins_over_context", func(t *testing.T) {
		request := baseRequest()
		request.RunID = "0190f5c4-6b1e-7a3c-9d2e-4f5a6b7c8d90"

		report, err := newHarness(newMemoryRecords()).run(t, ctxutil.WithRunID(context.Background(), runID), request)
		require.NoError(t, err)
		assert.Equal(t, request.RunID, report.RunID)
	})
}
