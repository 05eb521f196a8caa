package classify

import (
	"regexp"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

var (
	urlRegex           = regexp.MustCompile(`https?://\S+`)
	headingMarkerRegex = regexp.MustCompile(`^#{1,6}\s`)
	stepPrefixRegex    = regexp.MustCompile(`(?i)^(Step \d+:|Procedure:)`)
	suggestivePhrase   = regexp.MustCompile(`(?i)(would you|perhaps|should i|could you|do you want|shall we|may i|how about|why not|what if)`)
)

// ClassifyRole assigns a role to one step, given its raw text and the
// step's start offset relative to the analyzed text.
func ClassifyRole(stepText string, stepStart int, referencesOffset *int) model.StepRole {
	trimmed := strings.TrimSpace(stepText)
	stripped := urlRegex.ReplaceAllString(trimmed, "")
	hasQuestion := strings.Contains(stripped, "?")
	hasLabVerb := countMatches(labVerbRegexes, stepText) > 0
	hasQty := numericQtyRegex.MatchString(stepText)

	if len(trimmed) < 80 && (headingMarkerRegex.MatchString(trimmed) || stepPrefixRegex.MatchString(trimmed)) {
		return model.RoleHeader
	}

	if hasQuestion && suggestivePhrase.MatchString(stripped) && !hasLabVerb {
		return model.RoleQuestionOrPrompt
	}

	if referencesOffset != nil && stepStart >= *referencesOffset {
		return model.RoleReference
	}

	if hasQuestion && !hasLabVerb && !hasQty {
		return model.RoleQuestionOrPrompt
	}

	if hasLabVerb || hasQty {
		return model.RoleProcedure
	}

	return model.RoleNarrative
}

// ClassifySteps assigns a role to every step, returning a new slice (the
// input is not mutated).
func ClassifySteps(text string, steps []model.TextStep, referencesOffset *int) []model.TextStep {
	out := make([]model.TextStep, len(steps))
	for i, s := range steps {
		stepText := text[s.StartOffset:s.EndOffset]
		s.Role = ClassifyRole(stepText, s.StartOffset, referencesOffset)
		out[i] = s
	}
	return out
}
