// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"context"
	"fmt"
)

// # Service Layer

// Service combines the catalog and the [Resolver] into citation-level
// operations used by the preview endpoints and the clone pipeline.
type Service struct {
	catalog  Catalog
	resolver *Resolver
}

// NewService constructs a new scripture [Service].
func NewService(catalog Catalog, verses VerseStore) *Service {
	return &Service{catalog: catalog, resolver: NewResolver(verses)}
}

// Resolution is the full result of resolving a raw citation string.
type Resolution struct {
	Citation    *Citation    `json:"citation"`
	Book        *Book        `json:"book"`
	Translation *Translation `json:"translation"`
	Passage     *Passage     `json:"passage"`
}

/*
LookupBook finds the catalog book a parsed citation refers to.

Parameters:
  - ctx: context.Context
  - citation: *Citation
  - locale: string (the locale whose book codes apply)

Returns:
  - *Book: matched book
  - error: *ParseError of kind UnknownBook, or catalog failures
*/
func (service *Service) LookupBook(ctx context.Context, citation *Citation, locale string) (*Book, error) {
	book, err := service.catalog.FindBookByCode(ctx, citation.BookCode, locale)
	if err != nil {
		return nil, fmt.Errorf("scripture: find book %q: %w", citation.BookCode, err)
	}
	if book == nil {
		return nil, &ParseError{Kind: UnknownBook, Input: citation.BookCode}
	}
	return book, nil
}

// Resolve applies a parsed citation to a book and translation. See [Resolver.Resolve].
func (service *Service) Resolve(ctx context.Context, citation *Citation, bookID, translationID int64, opts FormatOptions) (*Passage, error) {
	return service.resolver.Resolve(ctx, citation, bookID, translationID, opts)
}

/*
ResolveCitation parses, matches and resolves a raw citation in one call.

Description: Used by the Bible-insert preview. The translation decides the
locale in which the book code is looked up.

Returns:
  - *Resolution: citation, book, translation and passage
  - error: *ParseError, *ResolutionError, dberr.ErrNotFound for the translation
*/
func (service *Service) ResolveCitation(ctx context.Context, raw string, translationID int64, opts FormatOptions) (*Resolution, error) {
	citation, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	translation, err := service.catalog.GetTranslation(ctx, translationID)
	if err != nil {
		return nil, err
	}

	book, err := service.LookupBook(ctx, citation, translation.Locale)
	if err != nil {
		return nil, err
	}

	passage, err := service.resolver.Resolve(ctx, citation, book.ID, translation.ID, opts)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Citation:    citation,
		Book:        book,
		Translation: translation,
		Passage:     passage,
	}, nil
}

// ListTranslations returns the translations of a locale.
func (service *Service) ListTranslations(ctx context.Context, locale string) ([]*Translation, error) {
	return service.catalog.ListTranslations(ctx, locale)
}

// GetTranslation returns a single translation.
func (service *Service) GetTranslation(ctx context.Context, id int64) (*Translation, error) {
	return service.catalog.GetTranslation(ctx, id)
}
