package extract

import (
	"regexp"
	"strings"
)

var entityTokenRegex = regexp.MustCompile(`[A-Za-z][A-Za-z0-9'-]*`)

var chemicalSuffixRegex = regexp.MustCompile(`(?i)(ene|ane|ine|ide|ate|ite|ol|one|ium|yne)$`)

var genericTokens = map[string]bool{
	"the": true, "was": true, "with": true, "and": true,
	"for": true, "into": true, "from": true,
}

// commonReagentTokens is a closed set of frequently-seen reagent/solvent
// surface forms admitted as entity keys even when they don't otherwise
// look CamelCase or chemically-suffixed.
var commonReagentTokens = map[string]bool{
	"nabh4": true, "naih": true, "nah": true, "lah": true, "lialh4": true,
	"dibal": true, "thf": true, "dcm": true, "dmf": true, "dmso": true,
	"meoh": true, "etoh": true, "etoac": true, "hcl": true, "naoh": true,
	"h2so4": true, "tfa": true, "acoh": true, "et3n": true, "tea": true,
	"dipea": true, "dbu": true, "dmap": true, "pyridine": true,
	"imidazole": true, "lda": true, "k2co3": true, "cs2co3": true,
	"na2co3": true, "nahco3": true, "mgso4": true, "na2so4": true,
	"brine": true, "water": true, "toluene": true, "benzene": true,
	"hexanes": true, "hexane": true, "dioxane": true, "acetone": true,
	"acetonitrile": true, "mecn": true, "dme": true, "nmp": true,
}

// hasInternalUpperOrDigit reports whether a token looks like a CamelCase
// reagent/solvent token, e.g. NaBH4, MeOH.
func hasInternalUpperOrDigit(token string) bool {
	for i, r := range token {
		if i == 0 {
			continue
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

func isChemicalLookingToken(token string) bool {
	if len(token) < 2 {
		return false
	}
	lower := strings.ToLower(token)
	if genericTokens[lower] {
		return false
	}
	if commonReagentTokens[lower] {
		return true
	}
	if hasInternalUpperOrDigit(token) {
		return true
	}
	if chemicalSuffixRegex.MatchString(token) {
		return true
	}
	// Capitalized noun phrase (but not a generic stopword).
	if token[0] >= 'A' && token[0] <= 'Z' {
		return true
	}
	return false
}

// nearestEntityKey scans a 35-char left-only window ending at matchStart
// and returns the lower-cased nearest chemical-looking token, or nil if
// none qualifies.
func nearestEntityKey(text string, matchStart int) *string {
	windowStart := matchStart - 35
	if windowStart < 0 {
		windowStart = 0
	}
	if windowStart >= matchStart || matchStart > len(text) {
		return nil
	}
	window := text[windowStart:matchStart]

	locs := entityTokenRegex.FindAllStringIndex(window, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		tok := window[locs[i][0]:locs[i][1]]
		if isChemicalLookingToken(tok) {
			lower := strings.ToLower(tok)
			return &lower
		}
	}
	return nil
}

// windowAround returns the ±radius character window around [start, end).
func windowAround(text string, start, end, radius int) string {
	ws := start - radius
	if ws < 0 {
		ws = 0
	}
	we := end + radius
	if we > len(text) {
		we = len(text)
	}
	return text[ws:we]
}

// windowLeft returns the left-only window of the given radius ending at
// offset.
func windowLeft(text string, offset, radius int) string {
	ws := offset - radius
	if ws < 0 {
		ws = 0
	}
	if ws > offset || offset > len(text) {
		return ""
	}
	return text[ws:offset]
}
