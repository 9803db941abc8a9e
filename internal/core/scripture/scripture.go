// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scripture turns human-written Bible citations into verse text.

It owns the small citation grammar used by editors ("Mt 4, 12-17. 23-25"), the
verse-range resolution against the verse store, and the read-only catalog of
books and translations those citations refer to.

# Core Responsibility

  - Parsing: [Parse] builds a [Citation] (book code, chapter, ordered ranges).
  - Resolution: [Resolver] selects the union of the ranges from a chapter and
    assembles display text as a [Passage].
  - Cleanup: [StripVerseNumbers] removes verse-number prefixes from assembled text.

Verses, books and translations are owned by the catalog tables; this package
only reads them.
*/
package scripture

import (
	"fmt"
	"strings"
)

// # Catalog Domain

// Book is a catalog entry that citation book codes are matched against.
type Book struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// Translation is a named edition of scripture in a given locale.
type Translation struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// Verse is a single row of the verse store.
//
// Inactive verses never leave the store; IsActive is carried for callers that
// build verse slices by hand.
type Verse struct {
	BookID        int64  `json:"book_id"`
	TranslationID int64  `json:"translation_id"`
	Chapter       int    `json:"chapter"`
	Number        int    `json:"number"`
	Text          string `json:"text"`
	IsActive      bool   `json:"-"`
}

// # Citation Domain

// Range is an inclusive verse range. Parsed ranges always satisfy Start <= End.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether verse number n falls inside the range.
func (r Range) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// String renders the range as "12" or "12-17".
func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ToleranceRule names a lenient parsing rule that had to be applied.
type ToleranceRule string

const (
	// ToleranceDiscardedPrefix marks a digit-free label before the range list.
	ToleranceDiscardedPrefix ToleranceRule = "discarded_prefix"
	// ToleranceSkippedItem marks a range-list item that was not a range.
	ToleranceSkippedItem ToleranceRule = "skipped_item"
	// ToleranceSwappedBounds marks a range written end-first.
	ToleranceSwappedBounds ToleranceRule = "swapped_bounds"
)

// Tolerance records one application of a [ToleranceRule] and the text it hit.
type Tolerance struct {
	Rule     ToleranceRule `json:"rule"`
	Fragment string        `json:"fragment"`
}

// Citation is a parsed scripture reference.
//
// Ranges keep their source order and may overlap; overlap is resolved by the
// [Resolver]. A citation is never mutated after [Parse] returns it.
type Citation struct {
	BookCode  string      `json:"book_code"`
	Chapter   int         `json:"chapter"`
	Ranges    []Range     `json:"ranges"`
	Tolerated []Tolerance `json:"tolerated,omitempty"`
}

// Lenient reports whether any tolerance rule was needed to parse the citation.
func (c *Citation) Lenient() bool {
	return len(c.Tolerated) > 0
}

// String renders the citation in the canonical editor format.
func (c *Citation) String() string {
	parts := make([]string, len(c.Ranges))
	for i, r := range c.Ranges {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%s %d, %s", c.BookCode, c.Chapter, strings.Join(parts, ". "))
}

// # Passage Domain

// PassageVerse is one selected verse of a [Passage].
type PassageVerse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Passage is the resolved, ordered and de-duplicated verse selection.
type Passage struct {
	Verses []PassageVerse `json:"verses"`
	Text   string         `json:"text"`
}

// FormatOptions controls text assembly.
type FormatOptions struct {
	// VerseNumbers prefixes each verse with its number ("12 Jesus said ...").
	VerseNumbers bool
}
