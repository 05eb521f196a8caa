package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

// reagentRoleTokens maps a fixed, role-labeled surface-form vocabulary to
// its functional role. Longer tokens are tried first within
// each compiled alternation so e.g. "NaBH(OAc)3" never shadows "NaBH4".
var reagentRoleTokens = map[string][]string{
	"reductant": {
		"NaBH4", "NaBH(OAc)3", "LiAlH4", "LAH", "DIBAL-H", "DIBAL",
	},
	"base": {
		"NaOH", "KOH", "K2CO3", "Cs2CO3", "Na2CO3", "NaHCO3",
		"Et3N", "TEA", "DIPEA", "DBU", "DMAP", "pyridine", "imidazole", "LDA", "NaH",
	},
	"acid": {
		"H2SO4", "HCl", "TFA", "AcOH", "H3PO4",
	},
	"oxidant": {
		"mCPBA", "NaOCl", "KMnO4", "CrO3", "H2O2", "PCC", "PDC", "DMP",
	},
	"catalyst": {
		"Pd(PPh3)4", "Pd(OAc)2", "Pd/C", "PtO2", "Raney Ni", "RuCl3", "Grubbs",
	},
	"organometallic": {
		"n-BuLi", "t-BuLi", "s-BuLi", "MeLi", "RMgBr", "RMgCl", "Grignard",
	},
}

var reagentRoleOrder = []string{
	"reductant", "base", "acid", "oxidant", "catalyst", "organometallic",
}

var reagentRoleRegexes = buildRoleRegexes()

func buildRoleRegexes() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(reagentRoleTokens))
	for role, tokens := range reagentRoleTokens {
		sorted := append([]string(nil), tokens...)
		sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
		parts := make([]string, len(sorted))
		for i, t := range sorted {
			parts[i] = regexp.QuoteMeta(t)
		}
		out[role] = regexp.MustCompile(`\b(?:` + strings.Join(parts, "|") + `)\b`)
	}
	return out
}

// ReagentRoleExtractor recognizes reagent mentions from a fixed,
// role-labeled vocabulary.
type ReagentRoleExtractor struct{}

func (ReagentRoleExtractor) Name() string { return "ReagentRoleExtractor" }

func (ReagentRoleExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim

	for _, role := range reagentRoleOrder {
		re := reagentRoleRegexes[role]
		for _, loc := range re.FindAllStringIndex(ctx.Text, -1) {
			start, end := loc[0], loc[1]
			raw := ctx.Text[start:end]
			entityKey := strings.ToLower(raw)

			payload := model.MarshalClaimPayload(model.ClaimPayload{Role: role})

			claims = append(claims, model.ExtractedClaim{
				ID:              ctx.IDs.NewID(),
				RunID:           ctx.RunID,
				Kind:            model.ClaimReagentMention,
				RawText:         raw,
				NormalizedValue: entityKey,
				Payload:         payload,
				SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
				EntityKey:       &entityKey,
				StepIndex:       stepIndexFor(ctx.Steps, start),
			})
		}
	}

	return claims, nil
}

// solventTokens maps a solvent surface form (case-insensitive) to its
// canonical normalized value.
var solventTokens = map[string]string{
	"thf": "thf", "dcm": "dcm", "dmf": "dmf", "dmso": "dmso",
	"meoh": "meoh", "etoh": "etoh", "etoac": "etoac",
	"toluene": "toluene", "benzene": "benzene", "hexanes": "hexanes",
	"hexane": "hexane", "dioxane": "dioxane", "acetone": "acetone",
	"acetonitrile": "acetonitrile", "mecn": "mecn", "dme": "dme", "nmp": "nmp",
	"water": "water", "brine": "brine",
}

var solventRegex = buildSolventRegex()

func buildSolventRegex() *regexp.Regexp {
	tokens := make([]string, 0, len(solventTokens))
	for t := range solventTokens {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// SolventMentionExtractor recognizes a fixed solvent-name vocabulary.
type SolventMentionExtractor struct{}

func (SolventMentionExtractor) Name() string { return "SolventMentionExtractor" }

func (SolventMentionExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim

	for _, loc := range solventRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]
		canonical := solventTokens[strings.ToLower(raw)]

		claims = append(claims, model.ExtractedClaim{
			ID:              ctx.IDs.NewID(),
			RunID:           ctx.RunID,
			Kind:            model.ClaimSolventMention,
			RawText:         raw,
			NormalizedValue: canonical,
			SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
			EntityKey:       &canonical,
			StepIndex:       stepIndexFor(ctx.Steps, start),
		})
	}

	return claims, nil
}

// atmosphereGasTokens maps a gas surface form to its canonical value.
var atmosphereGasTokens = map[string]string{
	"n2": "n2", "nitrogen": "n2",
	"ar": "ar", "argon": "ar",
	"air": "air",
}

var atmospherePrepositionRegex = regexp.MustCompile(
	`(?i)\bunder(?: an)?(?: atmosphere of)?\s+$`,
)

var atmosphereTokenRegex = regexp.MustCompile(`(?i)\b(N2|nitrogen|Ar|argon|air)\b`)

// atmosphereStructuralSuffixRegex rejects matches of the bare "Ar" token
// that are really aryl-substituent notation in a structure fragment (e.g.
// "Ar-Br", "Ar2O") rather than an atmosphere gas.
var atmosphereStructuralSuffixRegex = regexp.MustCompile(`^-|^\d`)

// AtmosphereConditionExtractor recognizes atmosphere-gas mentions, gated on
// a preceding prepositional phrase ("under N2", "under an atmosphere of
// argon") and rejecting structural-notation lookalikes.
type AtmosphereConditionExtractor struct{}

func (AtmosphereConditionExtractor) Name() string { return "AtmosphereConditionExtractor" }

func (AtmosphereConditionExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim

	for _, loc := range atmosphereTokenRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]

		left := windowLeft(ctx.Text, start, 24)
		if !atmospherePrepositionRegex.MatchString(left) {
			continue
		}

		trailing := ""
		if end < len(ctx.Text) {
			trailing = ctx.Text[end:min(end+2, len(ctx.Text))]
		}
		if atmosphereStructuralSuffixRegex.MatchString(trailing) {
			continue
		}

		canonical := atmosphereGasTokens[strings.ToLower(raw)]

		claims = append(claims, model.ExtractedClaim{
			ID:              ctx.IDs.NewID(),
			RunID:           ctx.RunID,
			Kind:            model.ClaimAtmosphereCondition,
			RawText:         raw,
			NormalizedValue: canonical,
			SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
			StepIndex:       stepIndexFor(ctx.Steps, start),
		})
	}

	return claims, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var drynessRegex = regexp.MustCompile(
	`(?i)\b(oven-dried|flame-dried|anhydrous|dried(?: over [A-Za-z0-9]+)?|dry(?:ing)? to dryness|under vacuum to dryness)\b`,
)

// DrynessConditionExtractor recognizes drying/anhydrous-condition mentions.
type DrynessConditionExtractor struct{}

func (DrynessConditionExtractor) Name() string { return "DrynessConditionExtractor" }

func (DrynessConditionExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim

	for _, loc := range drynessRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]

		claims = append(claims, model.ExtractedClaim{
			ID:              ctx.IDs.NewID(),
			RunID:           ctx.RunID,
			Kind:            model.ClaimDrynessCondition,
			RawText:         raw,
			NormalizedValue: strings.ToLower(raw),
			SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
			StepIndex:       stepIndexFor(ctx.Steps, start),
		})
	}

	return claims, nil
}

// symbolicTemperatureRegex recognizes named temperature conditions that
// carry no explicit numeric value.
var symbolicTemperatureRegex = regexp.MustCompile(
	`(?i)\b(room temperature|rt|reflux|ice[- ]?bath|ice[- ]?water bath)\b`,
)

func normalizeSymbolicTemperature(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "reflux"):
		return "reflux"
	case strings.Contains(lower, "ice"):
		return "ice_bath"
	default:
		return "rt"
	}
}

// SymbolicTemperatureExtractor recognizes named-but-unquantified temperature
// conditions and normalizes them to a closed symbolic
// vocabulary: rt, reflux, ice_bath.
type SymbolicTemperatureExtractor struct{}

func (SymbolicTemperatureExtractor) Name() string { return "SymbolicTemperatureExtractor" }

func (SymbolicTemperatureExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim

	for _, loc := range symbolicTemperatureRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]
		symbolic := normalizeSymbolicTemperature(raw)

		payload := model.MarshalClaimPayload(model.ClaimPayload{Symbolic: symbolic})

		claims = append(claims, model.ExtractedClaim{
			ID:              ctx.IDs.NewID(),
			RunID:           ctx.RunID,
			Kind:            model.ClaimSymbolicTemperature,
			RawText:         raw,
			NormalizedValue: symbolic,
			Payload:         payload,
			SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
			StepIndex:       stepIndexFor(ctx.Steps, start),
		})
	}

	return claims, nil
}
