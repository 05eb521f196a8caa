package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Span is a half-open character range [Start, End) into the analyzed text.
type Span struct {
	Start int
	End   int
}

// AnalyzedTextPrefix is the fixed prefix used by every source locator and
// evidence reference that anchors into the analyzed text.
const AnalyzedTextPrefix = "AnalyzedText:"

// FormatLocator renders a span as "AnalyzedText:START-END".
func FormatLocator(span Span) string {
	return fmt.Sprintf("%s%d-%d", AnalyzedTextPrefix, span.Start, span.End)
}

// ParseLocator parses an "AnalyzedText:START-END" token. Malformed or
// partial locators are reported via the boolean return rather than an error,
// matching the engine-wide policy of swallowing malformed-payload failures
// and falling back to neutral defaults.
func ParseLocator(locator string) (Span, bool) {
	if !strings.HasPrefix(locator, AnalyzedTextPrefix) {
		return Span{}, false
	}
	rest := locator[len(AnalyzedTextPrefix):]
	dash := strings.IndexByte(rest, '-')
	if dash < 0 {
		return Span{}, false
	}
	start, err := strconv.Atoi(rest[:dash])
	if err != nil {
		return Span{}, false
	}
	end, err := strconv.Atoi(rest[dash+1:])
	if err != nil {
		return Span{}, false
	}
	if start < 0 || end < start {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}
