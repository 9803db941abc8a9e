// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/verbum/internal/core/devotion"
	"github.com/taibuivan/verbum/internal/core/pipeline"
	"github.com/taibuivan/verbum/internal/core/scripture"
	"github.com/taibuivan/verbum/internal/platform/dberr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # Record Store

type memoryRecords struct {
	mu      sync.Mutex
	records map[int64]*devotion.Record
	nextID  int64

	listErr      error
	insertErrAt  int // 1-based InsertRecords call that fails; 0 never
	insertCalls  int
	updateCalls  []devotion.RecordUpdate
	updateErrFor map[int64]error
}

func newMemoryRecords(source ...*devotion.Record) *memoryRecords {
	store := &memoryRecords{records: map[int64]*devotion.Record{}, nextID: 1000, updateErrFor: map[int64]error{}}
	for _, record := range source {
		copied := *record
		store.records[record.ID] = &copied
	}
	return store
}

func (store *memoryRecords) ListRecords(_ context.Context, lang string) ([]*devotion.Record, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.listErr != nil {
		return nil, store.listErr
	}

	var out []*devotion.Record
	for _, record := range store.records {
		if record.Lang == lang {
			copied := *record
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (store *memoryRecords) InsertRecords(_ context.Context, batch []*devotion.Record) ([]int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.insertCalls++
	if store.insertErrAt == store.insertCalls {
		return nil, errors.New("insert: connection reset")
	}

	ids := make([]int64, len(batch))
	for i, record := range batch {
		store.nextID++
		copied := *record
		copied.ID = store.nextID
		store.records[copied.ID] = &copied
		ids[i] = copied.ID
	}
	return ids, nil
}

func (store *memoryRecords) UpdateRecord(_ context.Context, id int64, update devotion.RecordUpdate) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.updateCalls = append(store.updateCalls, update)
	if err := store.updateErrFor[id]; err != nil {
		return err
	}

	record, ok := store.records[id]
	if !ok {
		return dberr.ErrNotFound
	}
	if update.Title != nil {
		record.Title = *update.Title
	}
	if update.Slots != nil {
		record.Slots = *update.Slots
	}
	return nil
}

func (store *memoryRecords) byLang(lang string) []*devotion.Record {
	records, _ := store.ListRecords(context.Background(), lang)
	return records
}

func (store *memoryRecords) slotUpdates() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	count := 0
	for _, update := range store.updateCalls {
		if update.Slots != nil {
			count++
		}
	}
	return count
}

// # Scripture

// memoryScripture is a VerseStore + Catalog. Translation 1 and 2 have Mt 4 and
// Lk 23; translation 3 (KJV) has no verses at all.
type memoryScripture struct {
	books        []*scripture.Book
	translations map[int64]*scripture.Translation
	verses       map[string][]scripture.Verse
}

func newMemoryScripture() *memoryScripture {
	store := &memoryScripture{
		books: []*scripture.Book{
			{ID: 140, Code: "Mt", Name: "Matthew", Locale: "en"},
			{ID: 142, Code: "Lk", Name: "Luke", Locale: "en"},
			{ID: 40, Code: "Mt", Name: "Matúš", Locale: "sk"},
		},
		translations: map[int64]*scripture.Translation{
			1: {ID: 1, Code: "NABRE", Name: "New American Bible", Locale: "en"},
			2: {ID: 2, Code: "RSV", Name: "Revised Standard Version", Locale: "en"},
			3: {ID: 3, Code: "KJV", Name: "King James Version", Locale: "en"},
		},
		verses: map[string][]scripture.Verse{},
	}
	for _, translationID := range []int64{1, 2} {
		store.addChapter(140, translationID, 4, 25)
		store.addChapter(142, translationID, 23, 56)
	}
	return store
}

func chapterKey(bookID, translationID int64, chapter int) string {
	return fmt.Sprintf("%d/%d/%d", bookID, translationID, chapter)
}

func (store *memoryScripture) addChapter(bookID, translationID int64, chapter, n int) {
	key := chapterKey(bookID, translationID, chapter)
	for i := 1; i <= n; i++ {
		store.verses[key] = append(store.verses[key], scripture.Verse{
			BookID: bookID, TranslationID: translationID, Chapter: chapter, Number: i,
			Text: fmt.Sprintf("t%d-v%d", translationID, i), IsActive: true,
		})
	}
}

func (store *memoryScripture) ListVerses(_ context.Context, bookID, translationID int64, chapter int) ([]scripture.Verse, error) {
	return store.verses[chapterKey(bookID, translationID, chapter)], nil
}

func (store *memoryScripture) ListBooks(_ context.Context, locale string) ([]*scripture.Book, error) {
	var out []*scripture.Book
	for _, book := range store.books {
		if book.Locale == locale {
			out = append(out, book)
		}
	}
	return out, nil
}

func (store *memoryScripture) FindBookByCode(ctx context.Context, code, locale string) (*scripture.Book, error) {
	books, _ := store.ListBooks(ctx, locale)
	if book, ok := scripture.MatchBook(books, code); ok {
		return book, nil
	}
	return nil, nil
}

func (store *memoryScripture) ListTranslations(_ context.Context, locale string) ([]*scripture.Translation, error) {
	var out []*scripture.Translation
	for _, translation := range store.translations {
		if translation.Locale == locale {
			out = append(out, translation)
		}
	}
	return out, nil
}

func (store *memoryScripture) GetTranslation(_ context.Context, id int64) (*scripture.Translation, error) {
	if translation, ok := store.translations[id]; ok {
		return translation, nil
	}
	return nil, dberr.ErrNotFound
}

func newScriptureService() *scripture.Service {
	store := newMemoryScripture()
	return scripture.NewService(store, store)
}

// # Translator

type fakeTranslator struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, text, targetLang string) (string, error)
}

func (translator *fakeTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	translator.mu.Lock()
	translator.calls++
	translator.mu.Unlock()

	if translator.fn != nil {
		return translator.fn(ctx, text, targetLang)
	}
	return "[" + targetLang + "] " + text, nil
}

// # Observer and Sleeper

type recordingObserver struct {
	mu      sync.Mutex
	reports []pipeline.Report
}

func (observer *recordingObserver) OnProgress(_ context.Context, report pipeline.Report) {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	observer.reports = append(observer.reports, report)
}

func (observer *recordingObserver) phases() []pipeline.Phase {
	observer.mu.Lock()
	defer observer.mu.Unlock()

	var phases []pipeline.Phase
	for _, report := range observer.reports {
		if len(phases) == 0 || phases[len(phases)-1] != report.Phase {
			phases = append(phases, report.Phase)
		}
	}
	return phases
}

type recordingSleeper struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (sleeper *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	sleeper.mu.Lock()
	sleeper.pauses = append(sleeper.pauses, d)
	sleeper.mu.Unlock()
	return ctx.Err()
}

func (sleeper *recordingSleeper) count(d time.Duration) int {
	sleeper.mu.Lock()
	defer sleeper.mu.Unlock()

	n := 0
	for _, pause := range sleeper.pauses {
		if pause == d {
			n++
		}
	}
	return n
}

// # Fixtures

func sourceRecords(n int, citation string) []*devotion.Record {
	records := make([]*devotion.Record, n)
	for i := range records {
		records[i] = &devotion.Record{
			ID:          int64(i + 1),
			Lang:        "sk",
			PublishDate: time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Title:       fmt.Sprintf("Zamyslenie %d", i+1),
			Body:        "Text",
			Citation:    citation,
			Slots: [devotion.SlotCount]devotion.ScriptureSlot{
				{Text: "povodny text", Translation: "SSV"},
			},
			AudioURL:     "https://cdn.example.org/a.mp3",
			AudioSeconds: 120,
		}
	}
	return records
}

func testConfig() pipeline.Config {
	return pipeline.Config{
		BatchSize:       10,
		BatchPause:      time.Millisecond,
		TitlePauseEvery: 5,
		TitlePause:      2 * time.Millisecond,
		RecordPause:     3 * time.Millisecond,
	}
}

func selections(ids ...int64) [devotion.SlotCount]pipeline.Selection {
	var out [devotion.SlotCount]pipeline.Selection
	for i, id := range ids {
		out[i] = pipeline.Selection{TranslationID: id}
	}
	return out
}
