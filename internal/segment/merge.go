package segment

import (
	"regexp"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

var (
	newEntryBullet = regexp.MustCompile(`^(?:[*\-•]\s|\d+[.)]\s)`)
	newEntryRule   = regexp.MustCompile(`^-{3,}\s*$`)
)

var cannedTrailingPrefixes = []string{"Would you like", "Do you want", "Shall we"}

// Merge re-joins fragmented reference entries inside the references
// region. Steps strictly before refsOffset pass through unchanged; it is
// pure, never errors, and degenerates to identity when refsOffset is nil.
func Merge(text string, steps []model.TextStep, refsOffset *int) []model.TextStep {
	if refsOffset == nil {
		return renumber(steps)
	}

	var before []model.TextStep
	var rest []model.TextStep
	for _, s := range steps {
		if s.StartOffset < *refsOffset {
			before = append(before, s)
		} else {
			rest = append(rest, s)
		}
	}

	var merged []model.TextStep
	for _, s := range rest {
		stepText := strings.TrimSpace(text[s.StartOffset:s.EndOffset])
		if len(merged) == 0 || isNewEntryMarker(stepText) {
			merged = append(merged, s)
			continue
		}
		last := &merged[len(merged)-1]
		last.EndOffset = s.EndOffset
	}

	return renumber(append(before, merged...))
}

func isNewEntryMarker(stepText string) bool {
	if newEntryBullet.MatchString(stepText) || newEntryRule.MatchString(stepText) || strings.HasPrefix(stepText, "#") {
		return true
	}
	for _, prefix := range cannedTrailingPrefixes {
		if strings.HasPrefix(stepText, prefix) {
			return true
		}
	}
	return false
}

func renumber(steps []model.TextStep) []model.TextStep {
	out := make([]model.TextStep, len(steps))
	for i, s := range steps {
		s.Index = i
		out[i] = s
	}
	return out
}
