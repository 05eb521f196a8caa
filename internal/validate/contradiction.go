package validate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chemverify/chemverify/internal/model"
)

func parseNormalizedFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// comparableContextKeys is the set of resolved contextKeys the
// contradiction check can meaningfully compare across claims.
// Everything else — including an unresolved, empty contextKey — earns a
// NotComparable diagnostic instead.
var comparableContextKeys = map[string]bool{
	"temp": true, "time": true, "yield": true, "conc": true,
}

// canonicalUnit collapses K into °C and h into min, the two unit pairs
// the validator treats as one comparable class.
func canonicalUnit(unit string) string {
	switch unit {
	case "K":
		return "°C"
	case "h":
		return "min"
	default:
		return unit
	}
}

// convertedValue returns a claim's normalized numeric value converted
// into its group's canonical unit: K -> °C as v-273.15, h -> min as
// 60*v.
func convertedValue(c model.ExtractedClaim) (float64, bool) {
	v, ok := parseNormalizedFloat(c.NormalizedValue)
	if !ok {
		return 0, false
	}
	switch c.Unit {
	case "K":
		return v - 273.15, true
	case "h":
		return v * 60, true
	default:
		return v, true
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// multiScenarioCueRegex matches language suggesting two numbers describe
// distinct experimental regimes rather than one procedure's internal
// contradiction.
var multiScenarioCueRegex = regexp.MustCompile(`(?i)\b(alternativ\w*|route|separate\w*|trial|condition set|variant|respective\w*)\b`)

// NumericContradictionValidator partitions NumericWithUnit claims into
// comparable groups (shared contextKey|canonicalUnit) and flags pairs
// whose values differ by more than 50% of their average as a
// Contradiction, unless nearby language suggests the pair describes
// distinct experimental scenarios, in which case the whole group is
// flagged once as MultiScenario instead. Claims with no comparable
// contextKey are reported NotComparable.
type NumericContradictionValidator struct{}

func (NumericContradictionValidator) Name() string { return "NumericContradictionValidator" }

func (v NumericContradictionValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var findings []model.ValidationFinding
	groups := make(map[string][]model.ExtractedClaim)
	var groupOrder []string

	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		payload := model.ParseClaimPayload(c.Payload)
		if !comparableContextKeys[payload.ContextKey] {
			kind := model.KindNotComparable
			findings = append(findings, model.ValidationFinding{
				ID:            ctx.IDs.NewID(),
				RunID:         ctx.RunID,
				ClaimID:       &c.ID,
				ValidatorName: v.Name(),
				RuleID:        v.Name(),
				RuleVersion:   "v1",
				Status:        model.StatusUnverified,
				Kind:          &kind,
				Message:       fmt.Sprintf("%s has no comparable context and cannot be checked for contradiction", c.RawText),
				Confidence:    0.05,
			})
			continue
		}
		key := payload.ContextKey + "|" + canonicalUnit(c.Unit)
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], c)
	}

	for _, key := range groupOrder {
		findings = append(findings, v.validateGroup(ctx, groups[key])...)
	}
	return findings, nil
}

func (v NumericContradictionValidator) validateGroup(ctx Context, claims []model.ExtractedClaim) []model.ValidationFinding {
	var findings []model.ValidationFinding
	contextKey := model.ParseClaimPayload(claims[0].Payload).ContextKey

	for i := 0; i < len(claims); i++ {
		for j := i + 1; j < len(claims); j++ {
			a, b := claims[i], claims[j]
			if areDifferentEntitiesSameStep(a, b) {
				continue
			}
			if contextKey == "time" && sameNonemptyDistinctTimeAction(a, b) {
				continue
			}

			va, okA := convertedValue(a)
			vb, okB := convertedValue(b)
			if !okA || !okB {
				continue
			}

			avg := (abs(va) + abs(vb)) / 2
			d := abs(va - vb)

			switch {
			case avg > 0 && d/avg*100 > 50:
				if isMultiScenario(ctx.Text, a) || isMultiScenario(ctx.Text, b) {
					kind := model.KindMultiScenario
					return append(findings, model.ValidationFinding{
						ID:            ctx.IDs.NewID(),
						RunID:         ctx.RunID,
						ValidatorName: v.Name(),
						RuleID:        v.Name(),
						RuleVersion:   "v1",
						Status:        model.StatusUnverified,
						Kind:          &kind,
						Message:       "multiple values reported for this quantity describe distinct experimental scenarios, not a contradiction",
						Confidence:    0.4,
						Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: claimIDs(claims)}),
					})
				}
				kind := model.KindContradiction
				findings = append(findings, model.ValidationFinding{
					ID:            ctx.IDs.NewID(),
					RunID:         ctx.RunID,
					ClaimID:       &b.ID,
					ValidatorName: v.Name(),
					RuleID:        v.Name(),
					RuleVersion:   "v1",
					Status:        model.StatusFail,
					Kind:          &kind,
					Message:       fmt.Sprintf("conflicting values reported for the same quantity: %s vs %s", a.RawText, b.RawText),
					Confidence:    0.8,
					Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: []string{a.ID, b.ID}}),
				})
			case (avg == 0 && va == vb) || (avg > 0 && d/avg*100 <= 5):
				findings = append(findings, model.ValidationFinding{
					ID:            ctx.IDs.NewID(),
					RunID:         ctx.RunID,
					ClaimID:       &b.ID,
					ValidatorName: v.Name(),
					RuleID:        v.Name(),
					RuleVersion:   "v1",
					Status:        model.StatusPass,
					Message:       fmt.Sprintf("%s ≈ %s after unit normalization: consistent", a.RawText, b.RawText),
					Confidence:    0.7,
				})
			default:
				findings = append(findings, model.ValidationFinding{
					ID:            ctx.IDs.NewID(),
					RunID:         ctx.RunID,
					ClaimID:       &b.ID,
					ValidatorName: v.Name(),
					RuleID:        v.Name(),
					RuleVersion:   "v1",
					Status:        model.StatusPass,
					Message:       fmt.Sprintf("%s and %s: no contradiction", a.RawText, b.RawText),
					Confidence:    0.6,
				})
			}
		}
	}
	return findings
}

// areDifferentEntitiesSameStep reports whether a and b both carry a
// non-null entity key, those keys differ, and the claims fall in the
// same step — i.e. they describe two distinct reagents/species in one
// step rather than one restated quantity.
func areDifferentEntitiesSameStep(a, b model.ExtractedClaim) bool {
	if a.EntityKey == nil || b.EntityKey == nil || *a.EntityKey == *b.EntityKey {
		return false
	}
	if a.StepIndex == nil || b.StepIndex == nil {
		return false
	}
	return *a.StepIndex == *b.StepIndex
}

func sameNonemptyDistinctTimeAction(a, b model.ExtractedClaim) bool {
	pa, pb := model.ParseClaimPayload(a.Payload), model.ParseClaimPayload(b.Payload)
	return pa.TimeAction != "" && pb.TimeAction != "" && pa.TimeAction != pb.TimeAction
}

func isMultiScenario(text string, c model.ExtractedClaim) bool {
	span, ok := c.Locator()
	if !ok {
		return false
	}
	return multiScenarioCueRegex.MatchString(windowAroundSpan(text, span, 80))
}

func windowAroundSpan(text string, span model.Span, radius int) string {
	start := span.Start - radius
	if start < 0 {
		start = 0
	}
	end := span.End + radius
	if end > len(text) {
		end = len(text)
	}
	if start > len(text) || end < start {
		return ""
	}
	return text[start:end]
}

func claimIDs(claims []model.ExtractedClaim) []string {
	ids := make([]string, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	return ids
}

// equivTokenRegex matches a bare "N equiv" text token. "equiv" is not a
// recognized unit in numericUnitRegex, so these tokens are scanned for
// directly rather than read off ClaimNumericWithUnit claims.
var equivTokenRegex = regexp.MustCompile(`(?i)([-+]?\d+(?:\.\d+)?)\s?equiv(?:alents?)?\b`)

// equivMmolSearchRadius is the character distance within which an "N
// equiv" token is paired with the mmol claim it quantifies.
const equivMmolSearchRadius = 80

// distanceBetween returns the number of characters separating two spans,
// or 0 if they overlap.
func distanceBetween(aStart, aEnd, bStart, bEnd int) int {
	if aEnd <= bStart {
		return bStart - aEnd
	}
	if bEnd <= aStart {
		return aStart - bEnd
	}
	return 0
}

// nearestClaimWithin returns the claim in claims whose locator is closest
// to [start,end) and within radius characters of it, if any.
func nearestClaimWithin(start, end, radius int, claims []model.ExtractedClaim) (model.ExtractedClaim, bool) {
	var best model.ExtractedClaim
	bestDist := -1
	found := false
	for _, c := range claims {
		span, ok := c.Locator()
		if !ok {
			continue
		}
		dist := distanceBetween(start, end, span.Start, span.End)
		if dist > radius {
			continue
		}
		if !found || dist < bestDist {
			best, bestDist, found = c, dist, true
		}
	}
	return best, found
}

// equivPair is one "N equiv" token paired with the mmol claim nearest it,
// plus the reference molar quantity (the limiting reagent's mmol) that
// equivValue implies: refMmol = mmolValue / equivValue.
type equivPair struct {
	mmolClaim model.ExtractedClaim
	refMmol   float64
}

// EquivalentsConsistencyValidator pairs every "N equiv" text token with
// its nearest mmol claim (within 80 characters) and derives the implied
// reference molar quantity each pair describes. All pairs in a procedure
// describe equivalents relative to the same limiting reagent, so their
// implied reference quantities should agree; a pair whose implied
// reference differs by more than 50% from the first pair's is flagged.
type EquivalentsConsistencyValidator struct{}

func (EquivalentsConsistencyValidator) Name() string { return "EquivalentsConsistencyValidator" }

func (v EquivalentsConsistencyValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var mmolClaims []model.ExtractedClaim
	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		if c.Unit == "mmol" {
			mmolClaims = append(mmolClaims, c)
		}
	}

	var pairs []equivPair
	for _, loc := range equivTokenRegex.FindAllStringSubmatchIndex(ctx.Text, -1) {
		equivValue, ok := parseNormalizedFloat(ctx.Text[loc[2]:loc[3]])
		if !ok || equivValue == 0 {
			continue
		}
		mmolClaim, ok := nearestClaimWithin(loc[0], loc[1], equivMmolSearchRadius, mmolClaims)
		if !ok {
			continue
		}
		mmolValue, ok := parseNormalizedFloat(mmolClaim.NormalizedValue)
		if !ok {
			continue
		}
		pairs = append(pairs, equivPair{mmolClaim: mmolClaim, refMmol: mmolValue / equivValue})
	}

	if len(pairs) < 2 {
		return nil, nil
	}

	var findings []model.ValidationFinding
	base := pairs[0]
	for _, p := range pairs[1:] {
		avg := (abs(base.refMmol) + abs(p.refMmol)) / 2
		d := abs(base.refMmol - p.refMmol)
		if avg == 0 || d/avg*100 <= 50 {
			continue
		}
		kind := model.KindEquivInconsistent
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &p.mmolClaim.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusFail,
			Kind:          &kind,
			Message:       fmt.Sprintf("equivalents reported near %s imply a different reference molar quantity than earlier in the procedure", p.mmolClaim.RawText),
			Confidence:    0.6,
			Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: []string{base.mmolClaim.ID, p.mmolClaim.ID}}),
		})
	}
	return findings, nil
}

// MwConsistencyValidator pairs each mass claim (g/mg) with the nearest
// mmol claim — preferring a shared entity, falling back to the nearest
// within 80 characters — and computes the implied molecular weight
// MW = massInGrams/(mmol/1000). A result outside [5, 3000] g/mol is
// chemically implausible and fails.
type MwConsistencyValidator struct{}

func (MwConsistencyValidator) Name() string { return "MwConsistencyValidator" }

func (v MwConsistencyValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var massClaims, mmolClaims []model.ExtractedClaim
	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		switch c.Unit {
		case "g", "mg":
			massClaims = append(massClaims, c)
		case "mmol":
			mmolClaims = append(mmolClaims, c)
		}
	}

	var findings []model.ValidationFinding
	for _, mass := range massClaims {
		mmolClaim, ok := pairedMmolClaim(mass, mmolClaims)
		if !ok {
			continue
		}
		massValue, ok := parseNormalizedFloat(mass.NormalizedValue)
		if !ok {
			continue
		}
		mmolValue, ok := parseNormalizedFloat(mmolClaim.NormalizedValue)
		if !ok || mmolValue == 0 {
			continue
		}

		massGrams := massValue
		if mass.Unit == "mg" {
			massGrams = massValue / 1000
		}
		mw := massGrams / (mmolValue / 1000)

		kind := model.KindMwConsistent
		status := model.StatusPass
		message := fmt.Sprintf("%s and %s imply a plausible molecular weight (%.1f g/mol)", mass.RawText, mmolClaim.RawText, mw)
		if mw < 5 || mw > 3000 {
			kind = model.KindMwImplausible
			status = model.StatusFail
			message = fmt.Sprintf("%s and %s imply an implausible molecular weight (%.1f g/mol)", mass.RawText, mmolClaim.RawText, mw)
		}
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &mass.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        status,
			Kind:          &kind,
			Message:       message,
			Confidence:    0.5,
			Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: []string{mass.ID, mmolClaim.ID}}),
		})
	}
	return findings, nil
}

// pairedMmolClaim finds the mmol claim that quantifies mass: one sharing
// mass's entity key, or absent that, the nearest one within 80 characters.
func pairedMmolClaim(mass model.ExtractedClaim, mmolClaims []model.ExtractedClaim) (model.ExtractedClaim, bool) {
	if mass.EntityKey != nil {
		for _, c := range mmolClaims {
			if c.EntityKey != nil && *c.EntityKey == *mass.EntityKey {
				return c, true
			}
		}
	}
	massSpan, ok := mass.Locator()
	if !ok {
		return model.ExtractedClaim{}, false
	}
	return nearestClaimWithin(massSpan.Start, massSpan.End, equivMmolSearchRadius, mmolClaims)
}

// YieldMassConsistencyValidator pairs each yield percentage with the
// nearest product-mass claim (the mass claim closest to the yield token,
// typically reported in the same sentence) and the earliest mass claim in
// the procedure (the starting material). It computes
// impliedPct = prodMg/startMg*100 and flags a yield claim whose stated
// value differs from the implied one by more than 50%.
type YieldMassConsistencyValidator struct{}

func (YieldMassConsistencyValidator) Name() string { return "YieldMassConsistencyValidator" }

func (v YieldMassConsistencyValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var yieldClaims, massClaims []model.ExtractedClaim
	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		payload := model.ParseClaimPayload(c.Payload)
		if payload.ContextKey == "yield" {
			yieldClaims = append(yieldClaims, c)
			continue
		}
		if c.Unit == "g" || c.Unit == "mg" {
			massClaims = append(massClaims, c)
		}
	}

	if len(yieldClaims) == 0 || len(massClaims) < 2 {
		return nil, nil
	}
	startMass := massClaims[0]
	startMg, ok := massInMg(startMass)
	if !ok {
		return nil, nil
	}

	var findings []model.ValidationFinding
	for _, yieldClaim := range yieldClaims {
		span, ok := yieldClaim.Locator()
		if !ok {
			continue
		}
		prodMass, ok := nearestClaimWithin(span.Start, span.End, equivMmolSearchRadius, massClaims)
		if !ok || prodMass.ID == startMass.ID {
			continue
		}
		prodMg, ok := massInMg(prodMass)
		if !ok {
			continue
		}
		stated, ok := parseNormalizedFloat(yieldClaim.NormalizedValue)
		if !ok || startMg == 0 {
			continue
		}

		implied := prodMg / startMg * 100
		avg := (abs(implied) + abs(stated)) / 2
		d := abs(implied - stated)

		if avg > 0 && d/avg*100 > 50 {
			kind := model.KindYieldMassInconsistent
			findings = append(findings, model.ValidationFinding{
				ID:            ctx.IDs.NewID(),
				RunID:         ctx.RunID,
				ClaimID:       &yieldClaim.ID,
				ValidatorName: v.Name(),
				RuleID:        v.Name(),
				RuleVersion:   "v1",
				Status:        model.StatusFail,
				Kind:          &kind,
				Message:       fmt.Sprintf("stated yield %s is inconsistent with the implied yield from %s and %s (%.0f%%)", yieldClaim.RawText, startMass.RawText, prodMass.RawText, implied),
				Confidence:    0.6,
				Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: []string{yieldClaim.ID, startMass.ID, prodMass.ID}}),
			})
			continue
		}

		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &yieldClaim.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusPass,
			Message:       fmt.Sprintf("stated yield %s is consistent with %s and %s (implied %.0f%%)", yieldClaim.RawText, startMass.RawText, prodMass.RawText, implied),
			Confidence:    0.6,
			Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: []string{yieldClaim.ID, startMass.ID, prodMass.ID}}),
		})
	}
	return findings, nil
}

// massInMg returns a mass claim's value converted to milligrams.
func massInMg(c model.ExtractedClaim) (float64, bool) {
	v, ok := parseNormalizedFloat(c.NormalizedValue)
	if !ok {
		return 0, false
	}
	if c.Unit == "g" {
		return v * 1000, true
	}
	return v, true
}
