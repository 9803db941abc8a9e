// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import "context"

// # Verse Data Access

// VerseStore is the read contract of the verse store.
type VerseStore interface {

	/*
		ListVerses returns the active verses of one chapter in one translation.

		Parameters:
		  - ctx: context.Context
		  - bookID, translationID: int64
		  - chapter: int

		Returns:
		  - []Verse: ascending by verse number; empty when the chapter is unknown
		  - error: Database retrieval failures
	*/
	ListVerses(ctx context.Context, bookID, translationID int64, chapter int) ([]Verse, error)
}

// # Catalog Data Access

// Catalog is the read contract of the book and translation catalog.
type Catalog interface {

	// ListBooks returns every book registered for a locale.
	ListBooks(ctx context.Context, locale string) ([]*Book, error)

	/*
		FindBookByCode matches a citation book code within a locale.

		Parameters:
		  - ctx: context.Context
		  - code: string (compared through NormalizeCode)
		  - locale: string

		Returns:
		  - *Book: the match, or nil when no book carries the code
		  - error: Database retrieval failures
	*/
	FindBookByCode(ctx context.Context, code, locale string) (*Book, error)

	// ListTranslations returns the translations available in a locale.
	ListTranslations(ctx context.Context, locale string) ([]*Translation, error)

	// GetTranslation returns a single translation; dberr.ErrNotFound when absent.
	GetTranslation(ctx context.Context, id int64) (*Translation, error)
}
