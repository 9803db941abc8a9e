// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/taibuivan/verbum/internal/core/scripture"
	"github.com/taibuivan/verbum/internal/platform/dberr"
)

// memoryStore is an in-memory VerseStore + Catalog honouring the store contract
// (active rows only, ascending verse order).
type memoryStore struct {
	books        []*scripture.Book
	translations []*scripture.Translation
	verses       []scripture.Verse
	failVerses   error
}

func (store *memoryStore) ListVerses(_ context.Context, bookID, translationID int64, chapter int) ([]scripture.Verse, error) {
	if store.failVerses != nil {
		return nil, store.failVerses
	}
	var out []scripture.Verse
	for _, verse := range store.verses {
		if verse.BookID == bookID && verse.TranslationID == translationID && verse.Chapter == chapter && verse.IsActive {
			out = append(out, verse)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (store *memoryStore) ListBooks(_ context.Context, locale string) ([]*scripture.Book, error) {
	var out []*scripture.Book
	for _, book := range store.books {
		if book.Locale == locale {
			out = append(out, book)
		}
	}
	return out, nil
}

func (store *memoryStore) FindBookByCode(ctx context.Context, code, locale string) (*scripture.Book, error) {
	books, _ := store.ListBooks(ctx, locale)
	book, ok := scripture.MatchBook(books, code)
	if !ok {
		return nil, nil
	}
	return book, nil
}

func (store *memoryStore) ListTranslations(_ context.Context, locale string) ([]*scripture.Translation, error) {
	var out []*scripture.Translation
	for _, translation := range store.translations {
		if translation.Locale == locale {
			out = append(out, translation)
		}
	}
	return out, nil
}

func (store *memoryStore) GetTranslation(_ context.Context, id int64) (*scripture.Translation, error) {
	for _, translation := range store.translations {
		if translation.ID == id {
			return translation, nil
		}
	}
	return nil, dberr.ErrNotFound
}

// chapter builds verses 1..n of one chapter with text "v<n>".
func chapter(bookID, translationID int64, number, n int) []scripture.Verse {
	verses := make([]scripture.Verse, 0, n)
	for i := 1; i <= n; i++ {
		verses = append(verses, scripture.Verse{
			BookID:        bookID,
			TranslationID: translationID,
			Chapter:       number,
			Number:        i,
			Text:          fmt.Sprintf("v%d", i),
			IsActive:      true,
		})
	}
	return verses
}

func newMemoryStore() *memoryStore {
	store := &memoryStore{
		books: []*scripture.Book{
			{ID: 40, Code: "Mt", Name: "Matúš", Locale: "sk"},
			{ID: 42, Code: "Lk", Name: "Lukáš", Locale: "sk"},
			{ID: 140, Code: "Mt", Name: "Matthew", Locale: "en"},
		},
		translations: []*scripture.Translation{
			{ID: 1, Code: "SSV", Name: "Slovenský ekumenický preklad", Locale: "sk"},
			{ID: 2, Code: "KAT", Name: "Katolícky preklad", Locale: "sk"},
			{ID: 3, Code: "NABRE", Name: "New American Bible", Locale: "en"},
		},
	}
	store.verses = append(store.verses, chapter(40, 1, 4, 25)...)
	store.verses = append(store.verses, chapter(40, 2, 4, 25)...)
	store.verses = append(store.verses, chapter(42, 1, 23, 56)...)
	store.verses = append(store.verses, chapter(140, 3, 4, 25)...)
	return store
}
