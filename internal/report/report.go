// Package report composes a run's findings into the structured sections an
// end user reads.
package report

import (
	"fmt"
	"sort"

	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/score"
)

// RiskDriver is one entry of the report's ordered risk-driver breakdown:
// the nominal weight of a single Fail finding (score.WeightFor), paired
// with a human label.
type RiskDriver struct {
	Delta float64
	Label string
}

// Report is the final, deterministic rendering of a completed audit run.
type Report struct {
	RunID         string
	Verdict       string
	Severity      string
	RiskScore     float64
	Confirmed     []model.ValidationFinding
	NotVerifiable []model.ValidationFinding
	Attention     []model.ValidationFinding
	NextQuestions []string
	RiskDrivers   []RiskDriver
}

// attentionIcons prefixes an attention-list item's rendered label with a
// finding-kind icon. Kinds absent from this map render with no icon.
var attentionIcons = map[model.FindingKind]string{
	model.KindContradiction:              "❌", // "❌"
	model.KindMultiScenario:              "\U0001f501",
	model.KindIncompatibleReagentSolvent: "⚠️",
	model.KindMissingQuench:              "⚠️",
}

// textIntegrityOnlyKinds are kinds treated as "format issues, not
// scientific inconsistencies" for verdict selection.
var textIntegrityOnlyKinds = map[model.FindingKind]bool{
	model.KindMalformedChemicalToken:      true,
	model.KindPlaceholderOrMissingToken:   true,
	model.KindUnsupportedOrIncomplete:     true,
	model.KindCitationTraceabilityWeak:    true,
	model.KindNotCheckable:                true,
	model.KindNotComparable:               true,
	model.KindCrossStepConditionVariation: true,
}

// questionByKind gives each actionable Fail kind a templated follow-up
// question for the NextQuestions section.
var questionByKind = map[model.FindingKind]string{
	model.KindMissingSolvent:              "What solvent was used for this reaction?",
	model.KindMissingTemperature:          "At what temperature was the reaction held?",
	model.KindMissingQuench:               "How was the reactive reagent quenched before workup?",
	model.KindIncompatibleReagentSolvent:  "Can you confirm the reagent/solvent combination used?",
	model.KindEquivInconsistent:           "How many equivalents of the reagent were actually used?",
	model.KindYieldMassInconsistent:       "What mass of product corresponds to the reported yield?",
	model.KindContradiction:               "Which of the conflicting values is correct?",
	model.KindCrossStepConditionVariation: "Was the reaction kept under anhydrous/inert conditions throughout?",
}

// Build renders a Report from a run's findings (already evidence-enriched)
// and risk result. Section membership, ordering, and verdict
// selection are all deterministic functions of the input.
func Build(runID string, findings []model.ValidationFinding, riskResult score.Result) Report {
	r := Report{
		RunID:     runID,
		Severity:  riskResult.Severity,
		RiskScore: riskResult.Score,
	}

	seenQuestion := make(map[string]bool)
	hasMultiScenario := false

	for _, f := range findings {
		if f.Kind != nil && *f.Kind == model.KindMultiScenario {
			hasMultiScenario = true
		}
		switch f.Status {
		case model.StatusPass:
			r.Confirmed = append(r.Confirmed, f)
		case model.StatusUnverified:
			r.NotVerifiable = append(r.NotVerifiable, f)
		case model.StatusFail:
			r.Attention = append(r.Attention, f)
			if f.Kind != nil {
				if q, ok := questionByKind[*f.Kind]; ok && !seenQuestion[q] {
					seenQuestion[q] = true
					r.NextQuestions = append(r.NextQuestions, q)
				}
			}
		}
	}

	r.RiskDrivers = riskDrivers(r.Attention)
	r.Verdict = selectVerdict(r.Attention, hasMultiScenario, len(r.Confirmed))

	return r
}

// riskDrivers orders Fail findings by descending confidence, breaking ties
// by finding ID for determinism, and caps the list at 5 entries, pairing
// each with its weighted contribution and a human label.
func riskDrivers(fails []model.ValidationFinding) []RiskDriver {
	sorted := append([]model.ValidationFinding(nil), fails...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	drivers := make([]RiskDriver, 0, len(sorted))
	for _, f := range sorted {
		drivers = append(drivers, RiskDriver{
			Delta: score.WeightFor(f),
			Label: attentionLabel(f),
		})
	}
	return drivers
}

// attentionLabel renders a Fail finding as a single decorated line for the
// attention section, prefixed with a kind-derived icon when one applies.
func attentionLabel(f model.ValidationFinding) string {
	if f.Kind != nil {
		if icon, ok := attentionIcons[*f.Kind]; ok {
			return icon + " " + f.Message
		}
	}
	return f.Message
}

// selectVerdict derives the run's headline verdict from the attention
// (Fail) findings, the presence of any MultiScenario finding (which is
// always Unverified, never Fail, so it is tracked separately), and the
// confirmed (Pass) count, in a fixed priority order.
func selectVerdict(attention []model.ValidationFinding, hasMultiScenario bool, confirmedCount int) string {
	if len(attention) == 0 {
		if hasMultiScenario {
			return "Internally consistent; multiple distinct experimental regimes detected."
		}
		if confirmedCount >= 1 {
			return "No internal inconsistencies detected. The procedure appears self-consistent."
		}
		return "Verification complete. See findings for details."
	}

	hasContradiction := false
	allTextIntegrity := true

	for _, f := range attention {
		if f.Kind == nil {
			allTextIntegrity = false
			continue
		}
		if *f.Kind == model.KindContradiction {
			hasContradiction = true
		}
		if !textIntegrityOnlyKinds[*f.Kind] {
			allTextIntegrity = false
		}
	}

	switch {
	case hasContradiction:
		return "Internal inconsistencies detected. Manual review recommended before proceeding."
	case hasMultiScenario:
		return "Internally consistent; multiple distinct experimental regimes detected."
	case allTextIntegrity:
		return "Scientific writing/format issues detected. Manual cleanup recommended."
	default:
		return "Verification complete. See findings for details."
	}
}

// Summary renders a one-line human-readable digest, used as the summary
// field of the CLI's JSON output and of the HTTP responses.
func (r Report) Summary() string {
	return fmt.Sprintf(
		"verdict=%s severity=%s risk=%.2f confirmed=%d attention=%d notVerifiable=%d",
		r.Verdict, r.Severity, r.RiskScore, len(r.Confirmed), len(r.Attention), len(r.NotVerifiable),
	)
}
