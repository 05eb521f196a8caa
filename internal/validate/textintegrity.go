package validate

import (
	"fmt"
	"regexp"

	"github.com/chemverify/chemverify/internal/model"
)

// malformedTokenRegex matches an all-caps rendering of a known mixed-case
// reagent formula (e.g. "NABH4" instead of "NaBH4"), a common
// text-integrity slip rather than a different reagent.
var malformedTokenRegex = regexp.MustCompile(`\b(NABH4|LIALH4|DIBALH|NAOH|NAHCO3|NA2CO3|NA2SO4|MGSO4)\b`)

var malformedTokenCorrection = map[string]string{
	"NABH4":  "NaBH4",
	"LIALH4": "LiAlH4",
	"DIBALH": "DIBAL-H",
	"NAOH":   "NaOH",
	"NAHCO3": "NaHCO3",
	"NA2CO3": "Na2CO3",
	"NA2SO4": "Na2SO4",
	"MGSO4":  "MgSO4",
}

// danglingTemperatureUnitRegex matches a bare temperature unit the way a
// dropped numeric value leaves it: "°C"/"°F" with no adjacent digit to
// anchor it.
var danglingTemperatureUnitRegex = regexp.MustCompile(`°[CF]`)

var emptyParensRegex = regexp.MustCompile(`\(\s*\)`)
var danglingMarkerChars = "_`\\"
var danglingMarkerRegex = regexp.MustCompile(`(?:^|\s)([` + regexp.QuoteMeta(danglingMarkerChars) + `])(?:\s|$)`)
var multiSpaceRunRegex = regexp.MustCompile(`[ \t]{2,}`)
var emptyBoldMarkerRegex = regexp.MustCompile(`\*\*\s*\*\*|__\s*__`)

// precededByDigit reports whether the nearest non-space character before
// offset start in text is a digit, i.e. the unit at start is anchored to a
// number rather than dangling on its own.
func precededByDigit(text string, start int) bool {
	i := start
	for i > 0 && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}
	if i == 0 {
		return false
	}
	c := text[i-1]
	return c >= '0' && c <= '9'
}

// MalformedChemicalTokenValidator flags text-integrity slips: reagent-like
// tokens rendered in a case pattern inconsistent with standard chemical
// notation, temperature units left dangling after a dropped numeric value,
// empty parenthetical groups, dangling markdown markers, and stray
// multi-space runs.
type MalformedChemicalTokenValidator struct{}

func (MalformedChemicalTokenValidator) Name() string { return "MalformedChemicalTokenValidator" }

func (v MalformedChemicalTokenValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var findings []model.ValidationFinding

	for _, loc := range malformedTokenRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]
		findings = append(findings, v.finding(ctx, start, end, raw, malformedTokenCorrection[raw]))
	}

	for _, loc := range danglingTemperatureUnitRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		if precededByDigit(ctx.Text, start) {
			continue
		}
		findings = append(findings, v.finding(ctx, start, end, ctx.Text[start:end], "temperature numeric value"))
	}

	for _, loc := range emptyParensRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		findings = append(findings, v.finding(ctx, start, end, ctx.Text[start:end], "parenthetical content"))
	}

	for _, loc := range danglingMarkerRegex.FindAllStringSubmatchIndex(ctx.Text, -1) {
		start, end := loc[2], loc[3]
		findings = append(findings, v.finding(ctx, start, end, ctx.Text[start:end], "paired markdown delimiter"))
	}

	for _, loc := range emptyBoldMarkerRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		findings = append(findings, v.finding(ctx, start, end, ctx.Text[start:end], "emphasized text"))
	}

	for _, loc := range multiSpaceRunRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		findings = append(findings, v.finding(ctx, start, end, ctx.Text[start:end], "single space"))
	}

	return findings, nil
}

func (v MalformedChemicalTokenValidator) finding(ctx Context, start, end int, raw, expected string) model.ValidationFinding {
	kind := model.KindMalformedChemicalToken
	return model.ValidationFinding{
		ID:            ctx.IDs.NewID(),
		RunID:         ctx.RunID,
		ValidatorName: v.Name(),
		RuleID:        v.Name(),
		RuleVersion:   "v1",
		Status:        model.StatusFail,
		Kind:          &kind,
		Message:       fmt.Sprintf("%q does not match standard chemical/scientific notation", raw),
		Confidence:    0.6,
		EvidenceRef:   model.FormatLocator(model.Span{Start: start, End: end}),
		Payload: model.MarshalFindingPayload(model.FindingPayload{
			Expected: expected,
			Examples: []string{raw},
		}),
	}
}

// placeholderTokenRegex matches placeholder markers left behind from
// drafting.
var placeholderTokenRegex = regexp.MustCompile(`(?i)\[(?:TODO|TBD|FIXME|INSERT[^\]]*)\]|\bXXX\b|\?{3,}|<insert[^>]*>`)

// PlaceholderTokenValidator flags drafting placeholders left in the
// analyzed text.
type PlaceholderTokenValidator struct{}

func (PlaceholderTokenValidator) Name() string { return "PlaceholderTokenValidator" }

func (v PlaceholderTokenValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var findings []model.ValidationFinding
	for _, loc := range placeholderTokenRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]
		kind := model.KindPlaceholderOrMissingToken

		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusFail,
			Kind:          &kind,
			Message:       fmt.Sprintf("%s looks like an unfinished placeholder", raw),
			Confidence:    0.8,
			EvidenceRef:   model.FormatLocator(model.Span{Start: start, End: end}),
		})
	}
	return findings, nil
}

// IncompleteScientificClaimValidator flags a NumericWithUnit claim whose
// context could not be resolved, meaning no other validator can meaningfully
// check it.
type IncompleteScientificClaimValidator struct{}

func (IncompleteScientificClaimValidator) Name() string {
	return "IncompleteScientificClaimValidator"
}

func (v IncompleteScientificClaimValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var findings []model.ValidationFinding
	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		payload := model.ParseClaimPayload(c.Payload)
		if payload.ContextKey != "" {
			continue
		}
		kind := model.KindNotCheckable
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &c.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusUnverified,
			Kind:          &kind,
			Message:       fmt.Sprintf("%s has no resolvable context and cannot be checked", c.RawText),
			Confidence:    0,
		})
	}
	return findings, nil
}

// ConcentrationSanityValidator flags a molar-concentration value outside a
// physically plausible range for a solution-phase reagent.
type ConcentrationSanityValidator struct{}

func (ConcentrationSanityValidator) Name() string { return "ConcentrationSanityValidator" }

func (v ConcentrationSanityValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var findings []model.ValidationFinding
	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		if c.Unit != "M" {
			continue
		}
		val, ok := parseNormalizedFloat(c.NormalizedValue)
		if !ok {
			continue
		}
		if val > 0 && val <= 20 {
			continue
		}
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &c.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusFail,
			Message:       fmt.Sprintf("%s is outside a physically plausible solution concentration range", c.RawText),
			Confidence:    0.4,
		})
	}
	return findings, nil
}
