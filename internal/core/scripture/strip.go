// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxVerseNumberLen covers the longest chapter (Psalm 119, 176 verses).
const maxVerseNumberLen = 3

var (
	spaceRun         = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([.,;:!?)\]»”])`)
)

// StripVerseNumbers removes verse-number tokens from assembled passage text.
//
// A token is 1-3 ASCII digits that is followed by whitespace and preceded by
// the start of the text or a character that is neither letter nor digit. The
// token is removed together with the one whitespace character after it. Runs
// of spaces collapse and spaces before closing punctuation are dropped.
//
// This is a lossy textual heuristic: numbers that belong to the prose ("5
// loaves") are removed too. Applying it to already stripped text is a no-op.
func StripVerseNumbers(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))

	prev := rune(-1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		if isASCIIDigit(r) {
			end := i
			for end < len(text) && isASCIIDigit(rune(text[end])) {
				end++
			}

			digits := end - i
			next, nextSize := utf8.DecodeRuneInString(text[end:])
			followedBySpace := end < len(text) && unicode.IsSpace(next)
			boundary := prev == -1 || !(unicode.IsLetter(prev) || unicode.IsDigit(prev))

			if digits <= maxVerseNumberLen && followedBySpace && boundary {
				prev = next
				i = end + nextSize
				continue
			}

			builder.WriteString(text[i:end])
			prev = rune(text[end-1])
			i = end
			continue
		}

		builder.WriteRune(r)
		prev = r
		i += size
	}

	stripped := spaceRun.ReplaceAllString(builder.String(), " ")
	stripped = spaceBeforePunct.ReplaceAllString(stripped, "$1")
	return strings.TrimSpace(stripped)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
