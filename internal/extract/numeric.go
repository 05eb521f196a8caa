package extract

import (
	"regexp"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

// numericUnitRegex matches <signed-decimal>[ws]?<unit>. Units are ordered
// so that longer/more-specific alternatives are tried before shorter ones
// they could otherwise shadow (mmol before mol, mL before L, mg before
// g, min before M). "%" is never followed by a word character in real
// text ("82% yield", "15%."), so it is pulled out of the \b-bounded
// alphabetic alternation rather than sharing its boundary.
var numericUnitRegex = regexp.MustCompile(
	`[-+]?\d+(?:\.\d+)?[ \t]?((?:mmol|mol|kPa|atm|ppm|min|mg|mL|°C|C|M|h|g|L|K)\b|%)`,
)

var yieldWordRegex = regexp.MustCompile(`(?i)\byield\b`)
var chromatographyRegex = regexp.MustCompile(`(?i)\b(silica|column|chromatography|eluent|hexanes|EtOAc|gradient|flash|TLC|Rf)\b`)
var solutionTermRegex = regexp.MustCompile(`(?i)\b(HCl|NaOH|H2SO4|aq|aqueous|solution|w/w|v/v|wt%|vol%|conc\.?|dispersion)\b`)
var otherContextRegex = regexp.MustCompile(`(?i)\b(yield|temp|time|equiv|conc|pressure|mass|volume|purity|conversion|selectivity|ee|dr)\b`)

var addedVerbRegex = regexp.MustCompile(`(?i)\badded\b`)
var stirredForRegex = regexp.MustCompile(`(?i)\bstirred\b.{0,10}\bfor\b`)
var heldVerbRegex = regexp.MustCompile(`(?i)\b(maintained|held|kept)\b`)
var heatedVerbRegex = regexp.MustCompile(`(?i)\bheated\b`)

// NumericUnitExtractor recognizes quantity-with-unit claims.
type NumericUnitExtractor struct{}

func (NumericUnitExtractor) Name() string { return "NumericUnitExtractor" }

func (e NumericUnitExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim

	for _, loc := range numericUnitRegex.FindAllStringSubmatchIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		rawText := ctx.Text[start:end]
		unit := ctx.Text[loc[2]:loc[3]]

		storedUnit := unit
		if unit == "C" {
			storedUnit = "°C"
		}

		window := windowAround(ctx.Text, start, end, 40)
		contextKey := resolveContextKey(storedUnit, window)

		var timeAction string
		if contextKey == "time" {
			timeAction = resolveTimeAction(window)
		}

		var entityKey *string
		if storedUnit != "°C" && storedUnit != "K" && storedUnit != "h" && storedUnit != "min" && storedUnit != "%" {
			entityKey = nearestEntityKey(ctx.Text, start)
		}

		payload := model.MarshalClaimPayload(model.ClaimPayload{
			ContextKey: contextKey,
			TimeAction: timeAction,
		})

		claims = append(claims, model.ExtractedClaim{
			ID:              ctx.IDs.NewID(),
			RunID:           ctx.RunID,
			Kind:            model.ClaimNumericWithUnit,
			RawText:         rawText,
			NormalizedValue: normalizeNumericValue(rawText, unit),
			Unit:            storedUnit,
			Payload:         payload,
			SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
			EntityKey:       entityKey,
			StepIndex:       stepIndexFor(ctx.Steps, start),
		})
	}

	return claims, nil
}

// normalizeNumericValue extracts the numeric portion of rawText in an
// invariant string form (trims the unit suffix).
func normalizeNumericValue(rawText, unit string) string {
	trimmed := strings.TrimSuffix(rawText, unit)
	return strings.TrimRight(trimmed, " \t")
}

func resolveContextKey(unit, window string) string {
	switch unit {
	case "°C", "K":
		return "temp"
	case "h", "min":
		return "time"
	case "%":
		switch {
		case yieldWordRegex.MatchString(window):
			return "yield"
		case chromatographyRegex.MatchString(window):
			return "composition"
		case solutionTermRegex.MatchString(window):
			return "conc"
		default:
			return ""
		}
	default:
		if m := otherContextRegex.FindString(window); m != "" {
			return strings.ToLower(m)
		}
		if unit == "M" {
			return "conc"
		}
		return ""
	}
}

func resolveTimeAction(window string) string {
	switch {
	case addedVerbRegex.MatchString(window):
		return "addition"
	case stirredForRegex.MatchString(window):
		return "stir"
	case heldVerbRegex.MatchString(window):
		return "hold"
	case heatedVerbRegex.MatchString(window):
		return "heat"
	default:
		return ""
	}
}
