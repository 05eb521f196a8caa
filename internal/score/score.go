// Package score computes a run's aggregate risk score from its validation
// findings.
package score

import (
	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/policy"
)

// chemHighKinds add a flat 0.35 to the risk score for every Fail finding
// of that kind.
var chemHighKinds = map[model.FindingKind]bool{
	model.KindIncompatibleReagentSolvent: true,
	model.KindMissingQuench:              true,
}

// chemMediumKinds add a flat 0.15 to the risk score for every Fail
// finding of that kind.
var chemMediumKinds = map[model.FindingKind]bool{
	model.KindMissingSolvent:            true,
	model.KindMissingTemperature:        true,
	model.KindAmbiguousWorkupTransition: true,
	model.KindEquivInconsistent:         true,
}

// textIntegrityKinds add a flat 0.10 to the risk score for every Fail
// finding of that kind.
var textIntegrityKinds = map[model.FindingKind]bool{
	model.KindMalformedChemicalToken:   true,
	model.KindUnsupportedOrIncomplete:  true,
	model.KindCitationTraceabilityWeak: true,
}

// diagnosticKinds get a reduced Unverified weight (0.05 instead of 0.3) in
// the general-findings base score, since they report an inability to
// check rather than a suspected problem.
var diagnosticKinds = map[model.FindingKind]bool{
	model.KindNotCheckable:  true,
	model.KindNotComparable: true,
}

const (
	chemHighContribution      = 0.35
	chemMediumContribution    = 0.15
	textIntegrityContribution = 0.10
	generalFailWeight         = 1.0
	generalUnverifiedWeight   = 0.3
	generalDiagnosticWeight   = 0.05
	dampenedDoiFailWeight     = 0.15
)

// Result is the computed risk score plus the severity label derived from
// it.
type Result struct {
	Score    float64
	Severity string
}

// bucket classifies a finding into one of the four kind buckets spec §4.9
// defines. A DoiFormatValidator Fail is always general, regardless of its
// CitationTraceabilityWeak kind, so settings.DampenDoiFailSeverity can
// apply to it.
func bucket(f model.ValidationFinding) string {
	if f.ValidatorName == "DoiFormatValidator" {
		return "general"
	}
	if f.Kind == nil {
		return "general"
	}
	switch {
	case chemHighKinds[*f.Kind]:
		return "chemHigh"
	case chemMediumKinds[*f.Kind]:
		return "chemMedium"
	case textIntegrityKinds[*f.Kind]:
		return "textIntegrity"
	default:
		return "general"
	}
}

// generalWeight computes a general-bucket finding's contribution to the
// base score: 1.0 for Fail (0.15 for a dampened DoiFormatValidator Fail),
// 0.3 for Unverified (0.05 for NotCheckable/NotComparable), 0.0 for Pass.
func generalWeight(f model.ValidationFinding, settings policy.Settings) float64 {
	switch f.Status {
	case model.StatusFail:
		if settings.DampenDoiFailSeverity && f.ValidatorName == "DoiFormatValidator" {
			return dampenedDoiFailWeight
		}
		return generalFailWeight
	case model.StatusUnverified:
		if f.Kind != nil && diagnosticKinds[*f.Kind] {
			return generalDiagnosticWeight
		}
		return generalUnverifiedWeight
	default:
		return 0
	}
}

// WeightFor returns the nominal risk-score contribution a single Fail
// finding makes under its bucket (the flat chem/text-integrity amount, or
// the unnormalized general Fail weight). It does not apply policy-driven
// dampening or the general bucket's count normalization; it is used only
// by the report's risk-driver breakdown to rank and label each Fail's
// rough share of the total score.
func WeightFor(f model.ValidationFinding) float64 {
	if f.Status != model.StatusFail {
		return 0
	}
	switch bucket(f) {
	case "chemHigh":
		return chemHighContribution
	case "chemMedium":
		return chemMediumContribution
	case "textIntegrity":
		return textIntegrityContribution
	default:
		return generalFailWeight
	}
}

// Compute buckets every finding by kind (spec §4.9): ChemHighKinds and
// ChemMediumKinds and TextIntegrityKinds each add a flat per-finding
// amount for their Fails; every other finding contributes to a base score
// of sum(weight)/count(generalFindings). The final score is
// clamp(base+chem+textIntegrity, 0, 1). Severity is capped at Low when
// every Fail finding is text-integrity, regardless of the numeric score.
func Compute(findings []model.ValidationFinding, settings policy.Settings) Result {
	var chem, textIntegrity float64
	var generalSum float64
	var generalCount int
	anyFail := false
	onlyTextIntegrity := true

	for _, f := range findings {
		b := bucket(f)
		if b == "general" {
			generalCount++
			generalSum += generalWeight(f, settings)
		}

		if f.Status != model.StatusFail {
			continue
		}
		anyFail = true

		switch b {
		case "chemHigh":
			chem += chemHighContribution
			onlyTextIntegrity = false
		case "chemMedium":
			chem += chemMediumContribution
			onlyTextIntegrity = false
		case "textIntegrity":
			textIntegrity += textIntegrityContribution
		default:
			onlyTextIntegrity = false
		}
	}

	var base float64
	if generalCount > 0 {
		base = generalSum / float64(generalCount)
	}

	total := base + chem + textIntegrity
	if total > 1 {
		total = 1
	}
	if total < 0 {
		total = 0
	}

	severity := classify(total)
	if anyFail && onlyTextIntegrity && severity != "Low" {
		severity = "Low"
	}

	return Result{Score: total, Severity: severity}
}

// classify buckets a clamped [0,1] score into the severity labels of spec
// §4.9: <=0.10 Low, <=0.35 Medium, <=0.65 High, else Critical. A run with
// no findings scores 0 and falls in Low, same as any other low-risk run.
func classify(score float64) string {
	switch {
	case score <= 0.10:
		return "Low"
	case score <= 0.35:
		return "Medium"
	case score <= 0.65:
		return "High"
	default:
		return "Critical"
	}
}
