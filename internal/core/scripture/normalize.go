// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode returns the comparison key for a book code.
//
// Matching is case- and whitespace-insensitive and ignores a trailing dot, so
// "1 Kor.", "1kor" and "1KOR" share a key. There is no fuzzy matching.
func NormalizeCode(code string) string {
	code = norm.NFKC.String(code)
	code = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
	code = strings.TrimSuffix(code, ".")

	// A Caser carries state and is not shared between goroutines.
	return cases.Fold().String(code)
}

// MatchBook returns the first book whose code normalizes to the same key as code.
func MatchBook(books []*Book, code string) (*Book, bool) {
	key := NormalizeCode(code)
	if key == "" {
		return nil, false
	}
	for _, book := range books {
		if NormalizeCode(book.Code) == key {
			return book, true
		}
	}
	return nil, false
}
