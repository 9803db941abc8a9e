// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// # Range Resolution

// ResolveRanges selects the verses covered by any of the ranges.
//
// Inactive verses are never selected. Verses keep their input (chapter) order.
// Overlapping ranges use union semantics: a seen-set keyed by verse number
// guarantees each verse appears at most once, even when the input repeats a
// number.
func ResolveRanges(verses []Verse, ranges []Range) []Verse {
	if len(verses) == 0 || len(ranges) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(verses))
	selected := make([]Verse, 0, len(verses))

	for _, verse := range verses {
		if !verse.IsActive {
			continue
		}
		if _, dup := seen[verse.Number]; dup {
			continue
		}
		for _, r := range ranges {
			if r.Contains(verse.Number) {
				seen[verse.Number] = struct{}{}
				selected = append(selected, verse)
				break
			}
		}
	}

	return selected
}

// AssembleText joins verse texts with a single space, optionally prefixing
// each verse with its number.
func AssembleText(verses []Verse, opts FormatOptions) string {
	var builder strings.Builder
	for i, verse := range verses {
		if i > 0 {
			builder.WriteByte(' ')
		}
		if opts.VerseNumbers {
			builder.WriteString(strconv.Itoa(verse.Number))
			builder.WriteByte(' ')
		}
		builder.WriteString(strings.TrimSpace(verse.Text))
	}
	return builder.String()
}

// # Resolver

// Resolver reads a chapter from the [VerseStore] and applies a citation to it.
type Resolver struct {
	verses VerseStore
}

// NewResolver constructs a [Resolver] over the given verse store.
func NewResolver(verses VerseStore) *Resolver {
	return &Resolver{verses: verses}
}

/*
Resolve returns the passage a citation selects in one translation of a book.

Parameters:
  - ctx: context.Context
  - citation: *Citation (chapter and ranges are used; the book code is not)
  - bookID, translationID: catalog identifiers
  - opts: FormatOptions

Returns:
  - *Passage: ordered, de-duplicated verses plus display text
  - error: *ResolutionError (NoVersesFound, EmptySelection) or store failures
*/
func (resolver *Resolver) Resolve(ctx context.Context, citation *Citation, bookID, translationID int64, opts FormatOptions) (*Passage, error) {
	chapter, err := resolver.verses.ListVerses(ctx, bookID, translationID, citation.Chapter)
	if err != nil {
		return nil, fmt.Errorf("scripture: list verses: %w", err)
	}

	if len(chapter) == 0 {
		return nil, &ResolutionError{Kind: NoVersesFound, BookID: bookID, TranslationID: translationID, Chapter: citation.Chapter}
	}

	selected := ResolveRanges(chapter, citation.Ranges)
	if len(selected) == 0 {
		return nil, &ResolutionError{Kind: EmptySelection, BookID: bookID, TranslationID: translationID, Chapter: citation.Chapter}
	}

	passage := &Passage{
		Verses: make([]PassageVerse, len(selected)),
		Text:   AssembleText(selected, opts),
	}
	for i, verse := range selected {
		passage.Verses[i] = PassageVerse{Number: verse.Number, Text: verse.Text}
	}

	return passage, nil
}
