// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import "fmt"

// # Parse Errors

// ParseErrorKind classifies why a citation was rejected.
type ParseErrorKind string

const (
	// MalformedCitation: the input does not have the "book chapter, ranges" shape.
	MalformedCitation ParseErrorKind = "malformed_citation"
	// NoValidRanges: the shape matched but every range item was skipped.
	NoValidRanges ParseErrorKind = "no_valid_ranges"
	// UnknownBook: the book code has no catalog entry for the locale.
	UnknownBook ParseErrorKind = "unknown_book"
)

// ParseError is returned by [Parse] and by catalog book lookups.
type ParseError struct {
	Kind  ParseErrorKind
	Input string
	Err   error
}

// Sentinels for [errors.Is]. Any [*ParseError] of the same kind matches.
var (
	ErrMalformedCitation = &ParseError{Kind: MalformedCitation}
	ErrNoValidRanges     = &ParseError{Kind: NoValidRanges}
	ErrUnknownBook       = &ParseError{Kind: UnknownBook}
)

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("scripture: %s", e.Kind)
	if e.Input != "" {
		msg += fmt.Sprintf(" %q", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Code is the machine-readable API code for the kind.
func (e *ParseError) Code() string {
	switch e.Kind {
	case NoValidRanges:
		return "CITATION_NO_RANGES"
	case UnknownBook:
		return "CITATION_UNKNOWN_BOOK"
	default:
		return "CITATION_MALFORMED"
	}
}

// Is matches sentinels by kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// # Resolution Errors

// ResolutionErrorKind classifies why a citation produced no passage.
type ResolutionErrorKind string

const (
	// NoVersesFound: the chapter has no active verses in the translation.
	NoVersesFound ResolutionErrorKind = "no_verses_found"
	// EmptySelection: the chapter exists but no verse falls inside any range.
	EmptySelection ResolutionErrorKind = "empty_selection"
)

// ResolutionError is returned by [Resolver.Resolve].
type ResolutionError struct {
	Kind          ResolutionErrorKind
	BookID        int64
	TranslationID int64
	Chapter       int
}

// Sentinels for [errors.Is].
var (
	ErrNoVersesFound  = &ResolutionError{Kind: NoVersesFound}
	ErrEmptySelection = &ResolutionError{Kind: EmptySelection}
)

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("scripture: %s (book=%d translation=%d chapter=%d)",
		e.Kind, e.BookID, e.TranslationID, e.Chapter)
}

// Code is the machine-readable API code for the kind.
func (e *ResolutionError) Code() string {
	if e.Kind == EmptySelection {
		return "PASSAGE_EMPTY_SELECTION"
	}
	return "PASSAGE_NO_VERSES"
}

// Is matches sentinels by kind.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Kind == e.Kind
}
