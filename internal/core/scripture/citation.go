// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// citationHead is the top-level shape "<book> <chapter>, <range list>".
// The range list is captured raw and parsed by [parseRangeList].
//
//nolint:govet // participle grammar tags are not standard struct tags
type citationHead struct {
	Book    string `@Book`
	Chapter int    `@Number`
	List    string `"," @List?`
}

// citationLexer switches to the RangeList state after the first comma so that
// everything behind it reaches the range-list rules untouched.
var citationLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Book", Pattern: `[0-9]?\s?\p{L}+\.?`},
		{Name: "Number", Pattern: `[0-9]+`},
		{Name: "Comma", Pattern: `,`, Action: lexer.Push("RangeList")},
		{Name: "Whitespace", Pattern: `\s+`},
	},
	"RangeList": {
		{Name: "List", Pattern: `.+`},
	},
})

var citationParser = participle.MustBuild[citationHead](
	participle.Lexer(citationLexer),
	participle.Elide("Whitespace"),
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	rangeItem     = regexp.MustCompile(`^([0-9]+)(?:\s?-\s?([0-9]+))?$`)
)

/*
Parse turns a free-text citation such as "Mt 4, 12-17. 23-25" into a [Citation].

Description: Whitespace runs collapse to one space before matching. The range
list accepts "." and ";" as separators. Narrow tolerance rules apply and are
recorded on the result:

  - a digit-free comma-delimited label before the range list is discarded,
  - range items that are not "N" or "N-M" are skipped,
  - ranges written end-first are swapped.

Returns:
  - *Citation: book code without trailing dot or inner spaces, chapter, ranges
  - error: *ParseError of kind MalformedCitation or NoValidRanges
*/
func Parse(raw string) (*Citation, error) {
	normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	if normalized == "" {
		return nil, &ParseError{Kind: MalformedCitation, Input: raw}
	}

	head, err := citationParser.ParseString("", normalized)
	if err != nil {
		return nil, &ParseError{Kind: MalformedCitation, Input: raw, Err: err}
	}

	if head.Chapter < 1 {
		return nil, &ParseError{Kind: MalformedCitation, Input: raw}
	}

	citation := &Citation{
		BookCode: cleanBookCode(head.Book),
		Chapter:  head.Chapter,
	}

	citation.Ranges, citation.Tolerated = parseRangeList(head.List)
	if len(citation.Ranges) == 0 {
		return nil, &ParseError{Kind: NoValidRanges, Input: raw}
	}

	return citation, nil
}

// cleanBookCode drops the trailing dot and inner whitespace ("1 Kor." -> "1Kor").
func cleanBookCode(book string) string {
	book = strings.TrimSuffix(strings.TrimSpace(book), ".")
	return strings.Join(strings.Fields(book), "")
}

// parseRangeList splits the raw list and keeps every item shaped like a range.
func parseRangeList(list string) ([]Range, []Tolerance) {
	var tolerated []Tolerance

	segments := strings.Split(list, ",")
	if len(segments) > 1 && !containsDigit(segments[0]) {
		tolerated = append(tolerated, Tolerance{
			Rule:     ToleranceDiscardedPrefix,
			Fragment: strings.TrimSpace(segments[0]),
		})
		segments = segments[1:]
	}

	// Commas behind a kept prefix separate ranges just like "." and ";".
	normalized := strings.Join(segments, ";")
	normalized = strings.ReplaceAll(normalized, ".", ";")

	var ranges []Range
	for _, item := range strings.Split(normalized, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		match := rangeItem.FindStringSubmatch(item)
		if match == nil {
			tolerated = append(tolerated, Tolerance{Rule: ToleranceSkippedItem, Fragment: item})
			continue
		}

		start, startErr := strconv.Atoi(match[1])
		end := start
		var endErr error
		if match[2] != "" {
			end, endErr = strconv.Atoi(match[2])
		}

		if startErr != nil || endErr != nil || start < 1 || end < 1 {
			tolerated = append(tolerated, Tolerance{Rule: ToleranceSkippedItem, Fragment: item})
			continue
		}

		if end < start {
			tolerated = append(tolerated, Tolerance{Rule: ToleranceSwappedBounds, Fragment: item})
			start, end = end, start
		}

		ranges = append(ranges, Range{Start: start, End: end})
	}

	return ranges, tolerated
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
