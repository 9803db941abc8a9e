// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/verbum/internal/platform/dberr"
)

// PostgresStore implements [VerseStore] and [Catalog] using a pgxpool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore returns a fully wired postgres implementation.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

/*
ListVerses retrieves one chapter of one translation.

Description: Inactive rows are filtered in SQL so that they are invisible to
resolution. The (bookid, translationid, chapter, versenumber) index serves both
the filter and the ordering.
*/
func (store *PostgresStore) ListVerses(ctx context.Context, bookID, translationID int64, chapter int) ([]Verse, error) {
	const query = `
		SELECT versenumber, text
		FROM core.verse
		WHERE bookid = $1
		  AND translationid = $2
		  AND chapter = $3
		  AND isactive
		ORDER BY versenumber ASC;
	`

	rows, err := store.db.Query(ctx, query, bookID, translationID, chapter)
	if err != nil {
		return nil, dberr.Wrap(err, "list_verses")
	}
	defer rows.Close()

	verses := make([]Verse, 0, 32)
	for rows.Next() {
		verse := Verse{BookID: bookID, TranslationID: translationID, Chapter: chapter, IsActive: true}
		if err := rows.Scan(&verse.Number, &verse.Text); err != nil {
			return nil, dberr.Wrap(err, "scan_verse")
		}
		verses = append(verses, verse)
	}

	return verses, dberr.Wrap(rows.Err(), "iterate_verses")
}

// ListBooks retrieves the book catalog of a locale ordered by canonical position.
func (store *PostgresStore) ListBooks(ctx context.Context, locale string) ([]*Book, error) {
	const query = `
		SELECT id, code, name, locale
		FROM core.book
		WHERE locale = $1
		ORDER BY position ASC, id ASC;
	`

	rows, err := store.db.Query(ctx, query, locale)
	if err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}

	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Book, error) {
		book := &Book{}
		err := row.Scan(&book.ID, &book.Code, &book.Name, &book.Locale)
		return book, err
	})

	return books, dberr.Wrap(err, "scan_books")
}

// FindBookByCode loads the locale's books and matches in Go, so that the
// comparison key is exactly [NormalizeCode] rather than a SQL approximation.
func (store *PostgresStore) FindBookByCode(ctx context.Context, code, locale string) (*Book, error) {
	books, err := store.ListBooks(ctx, locale)
	if err != nil {
		return nil, err
	}

	book, ok := MatchBook(books, code)
	if !ok {
		return nil, nil
	}
	return book, nil
}

// ListTranslations retrieves the translations of a locale ordered by name.
func (store *PostgresStore) ListTranslations(ctx context.Context, locale string) ([]*Translation, error) {
	const query = `
		SELECT id, code, name, locale
		FROM core.translation
		WHERE locale = $1
		ORDER BY name ASC;
	`

	rows, err := store.db.Query(ctx, query, locale)
	if err != nil {
		return nil, dberr.Wrap(err, "list_translations")
	}

	translations, err := pgx.CollectRows(rows, scanTranslation)
	return translations, dberr.Wrap(err, "scan_translations")
}

// GetTranslation retrieves a single translation by primary key.
func (store *PostgresStore) GetTranslation(ctx context.Context, id int64) (*Translation, error) {
	const query = `
		SELECT id, code, name, locale
		FROM core.translation
		WHERE id = $1;
	`

	rows, err := store.db.Query(ctx, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "get_translation")
	}

	translation, err := pgx.CollectExactlyOneRow(rows, scanTranslation)
	if err != nil {
		return nil, dberr.Wrap(err, "get_translation")
	}
	return translation, nil
}

func scanTranslation(row pgx.CollectableRow) (*Translation, error) {
	translation := &Translation{}
	err := row.Scan(&translation.ID, &translation.Code, &translation.Name, &translation.Locale)
	return translation, err
}
