// Package classify implements the whole-text procedural/narrative
// classification and the per-step role classifier.
package classify

import "regexp"

var labVerbs = []string{
	"added", "stirred", "quenched", "extracted", "washed", "dried", "filtered",
	"concentrated", "purified", "refluxed", "cooled", "warmed", "heated",
	"dissolved", "evaporated", "decanted", "cannulated", "sonicated",
	"centrifuged", "distilled", "recrystallized", "precipitated", "titrated",
	"degassed", "charged", "transferred", "poured", "diluted",
}

var labVerbRegexes = compileWordList(labVerbs)

var hedgeRegex = regexp.MustCompile(`(?i)\b(reported(?:ly)?|previously|in (?:prior|earlier) work|literature|was shown)\b`)

var numericQtyRegex = regexp.MustCompile(`(?i)[-+]?\d+(?:\.\d+)?\s?(?:%|°?C|M|h|min|mg|mL|g|L|K|mol|mmol|kPa|atm|ppm)\b`)

var referencesHeadingRegex = regexp.MustCompile(`(?i)\n(?:#{1,6} )?(References|Bibliography|Works Cited)\n`)

func compileWordList(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+w+`\b`))
	}
	return out
}

func countMatches(res []*regexp.Regexp, text string) int {
	count := 0
	for _, re := range res {
		count += len(re.FindAllStringIndex(text, -1))
	}
	return count
}

// ProceduralResult is the whole-text classification produced by Detect.
type ProceduralResult struct {
	IsProcedural         bool
	StepCount            int
	HasLabActionVerbs    bool
	ReferencesStartOffset *int
}

// Detect classifies text as procedural vs narrative and locates the start
// of any references section.
func Detect(text string, stepCount int) ProceduralResult {
	labVerbCount := countMatches(labVerbRegexes, text)
	hedgeCount := len(hedgeRegex.FindAllStringIndex(text, -1))
	hasNumericQty := numericQtyRegex.MatchString(text)

	hedgeDampened := hedgeCount > 0 && hedgeCount >= labVerbCount

	var isProcedural bool
	if hedgeDampened {
		isProcedural = stepCount >= 4
	} else {
		isProcedural = stepCount >= 4 ||
			(labVerbCount >= 2 && hasNumericQty) ||
			labVerbCount >= 4
	}

	var refsOffset *int
	if loc := referencesHeadingRegex.FindStringSubmatchIndex(text); loc != nil {
		// loc[0] is the index of the leading '\n'; the section itself
		// starts at the heading character right after it.
		start := loc[0] + 1
		refsOffset = &start
	}

	return ProceduralResult{
		IsProcedural:          isProcedural,
		StepCount:             stepCount,
		HasLabActionVerbs:     labVerbCount > 0,
		ReferencesStartOffset: refsOffset,
	}
}
