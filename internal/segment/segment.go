// Package segment splits canonicalized text into an ordered sequence of
// half-open steps and later re-merges fragments that fall inside a
// references section into logical bibliographic entries.
package segment

import (
	"regexp"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

var (
	punctWS        = regexp.MustCompile(`[.;]\s+`)
	lfRun          = regexp.MustCompile(`\n+`)
	bulletLineStar = regexp.MustCompile(`(?:\d+[.)] |- |• )`)
	transitionWord = regexp.MustCompile(`(?i)\s(then|after(?:wards?)?|subsequently|next|finally)\b`)
	numericEnum    = regexp.MustCompile(`^\d{1,3}[.)]$`)
)

type boundaryKind int

const (
	boundaryPunct boundaryKind = iota
	boundaryLF
	boundaryBullet
	boundaryTransition
)

type boundary struct {
	kind            boundaryKind
	prevStepEnd     int // offset where the preceding step ends (exclusive)
	nextStepStart   int // offset where the following step begins
	matchStart      int // used for suppression / cursor advancement
}

// Split walks the canonical text left to right and returns its ordered,
// half-open, zero-based, non-overlapping steps.
func Split(text string) []model.TextStep {
	var steps []model.TextStep
	lastEnd := 0
	cursor := 0
	index := 0

	for cursor <= len(text) {
		b, ok := nextBoundary(text, cursor)
		if !ok {
			break
		}
		if b.prevStepEnd > lastEnd {
			steps = append(steps, model.TextStep{
				Index:       index,
				StartOffset: lastEnd,
				EndOffset:   b.prevStepEnd,
			})
			index++
		}
		lastEnd = b.nextStepStart
		cursor = b.nextStepStart
		if b.nextStepStart <= b.matchStart {
			// Zero-width boundary (bullet/transition): must still advance
			// the scan cursor past the matched token to avoid looping.
			cursor = b.matchStart + 1
		}
	}

	if lastEnd < len(text) {
		steps = append(steps, model.TextStep{
			Index:       index,
			StartOffset: lastEnd,
			EndOffset:   len(text),
		})
	}

	return steps
}

// nextBoundary finds the leftmost boundary of any kind starting at or after
// pos, applying the enumerator-period suppression rule inline.
func nextBoundary(text string, pos int) (boundary, bool) {
	for pos <= len(text) {
		candidates := make([]boundary, 0, 4)

		for p := pos; ; {
			loc := punctWS.FindStringIndex(text[p:])
			if loc == nil {
				break
			}
			start, end := p+loc[0], p+loc[1]
			if isEnumeratorPeriod(text, start) {
				p = start + 1
				continue
			}
			candidates = append(candidates, boundary{
				kind:          boundaryPunct,
				prevStepEnd:   start + 1,
				nextStepStart: end,
				matchStart:    start,
			})
			break
		}
		if loc := lfRun.FindStringIndex(text[pos:]); loc != nil {
			start, end := pos+loc[0], pos+loc[1]
			candidates = append(candidates, boundary{
				kind:          boundaryLF,
				prevStepEnd:   start,
				nextStepStart: end,
				matchStart:    start,
			})
		}
		if loc := bulletLineStar.FindStringIndex(text[pos:]); loc != nil {
			start := pos + loc[0]
			if atLineStart(text, start) {
				candidates = append(candidates, boundary{
					kind:          boundaryBullet,
					prevStepEnd:   start,
					nextStepStart: start,
					matchStart:    start,
				})
			}
		}
		if loc := transitionWord.FindStringSubmatchIndex(text[pos:]); loc != nil {
			wordStart := pos + loc[2]
			candidates = append(candidates, boundary{
				kind:          boundaryTransition,
				prevStepEnd:   wordStart,
				nextStepStart: wordStart,
				matchStart:    wordStart,
			})
		}

		if len(candidates) == 0 {
			// Nothing left to find from pos onward, even after suppression.
			if hasSuppressedPunct(text, pos) {
				pos = advancePastSuppressed(text, pos)
				continue
			}
			return boundary{}, false
		}

		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.matchStart < best.matchStart {
				best = c
			}
		}
		return best, true
	}
	return boundary{}, false
}

// isEnumeratorPeriod reports whether the '.'/';' at textIdx is the
// punctuation of a line-start numeric enumerator such as "12." — these are
// not sentence boundaries; the whole "N. " marker stays attached to the
// step it introduces.
func isEnumeratorPeriod(text string, dotIdx int) bool {
	if text[dotIdx] != '.' {
		return false
	}
	lineStart := strings.LastIndexByte(text[:dotIdx], '\n') + 1
	prefix := text[lineStart : dotIdx+1]
	return numericEnum.MatchString(prefix)
}

func hasSuppressedPunct(text string, pos int) bool {
	if loc := punctWS.FindStringIndex(text[pos:]); loc != nil {
		return isEnumeratorPeriod(text, pos+loc[0])
	}
	return false
}

func advancePastSuppressed(text string, pos int) int {
	loc := punctWS.FindStringIndex(text[pos:])
	return pos + loc[0] + 1
}

func atLineStart(text string, idx int) bool {
	return idx == 0 || text[idx-1] == '\n'
}

// GetStepIndex returns the index of the step whose half-open span contains
// offset, or false if none does.
func GetStepIndex(steps []model.TextStep, offset int) (int, bool) {
	for _, s := range steps {
		if s.Contains(offset) {
			return s.Index, true
		}
	}
	return 0, false
}
