package validate

import (
	"fmt"
	"regexp"

	"github.com/chemverify/chemverify/internal/model"
)

// incompatiblePairs maps a reactive-reagent entity key to the solvent keys
// it cannot coexist with safely (fixed, curated vocabulary).
var incompatiblePairs = map[string][]string{
	"nah":    {"water", "meoh", "etoh"},
	"nabh4":  {"water"},
	"lialh4": {"water", "meoh", "etoh"},
	"lah":    {"water", "meoh", "etoh"},
	"n-buli": {"water", "meoh", "etoh", "thf"},
	"meli":   {"water", "meoh", "etoh"},
}

// IncompatibleReagentSolventValidator flags a reagent/solvent combination
// known to react dangerously or unproductively.
type IncompatibleReagentSolventValidator struct{}

func (IncompatibleReagentSolventValidator) Name() string {
	return "IncompatibleReagentSolventValidator"
}

func (v IncompatibleReagentSolventValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	solventKeys := make(map[string]model.ExtractedClaim)
	for _, c := range ctx.ClaimsOfKind(model.ClaimSolventMention) {
		solventKeys[c.NormalizedValue] = c
	}

	var findings []model.ValidationFinding
	for _, r := range ctx.ClaimsOfKind(model.ClaimReagentMention) {
		blocked, ok := incompatiblePairs[r.NormalizedValue]
		if !ok {
			continue
		}
		for _, bad := range blocked {
			solvent, present := solventKeys[bad]
			if !present {
				continue
			}
			kind := model.KindIncompatibleReagentSolvent
			ids := []string{r.ID, solvent.ID}
			findings = append(findings, model.ValidationFinding{
				ID:            ctx.IDs.NewID(),
				RunID:         ctx.RunID,
				ClaimID:       &r.ID,
				ValidatorName: v.Name(),
				RuleID:        v.Name(),
				RuleVersion:   "v1",
				Status:        model.StatusFail,
				Kind:          &kind,
				Message:       fmt.Sprintf("%s is reported alongside %s, a known-incompatible solvent", r.RawText, solvent.RawText),
				Confidence:    0.75,
				Payload:       model.MarshalFindingPayload(model.FindingPayload{ClaimIDs: ids}),
			})
		}
	}
	return findings, nil
}

// MissingSolventValidator flags a procedural run that mentions reagents
// but names no solvent at all.
type MissingSolventValidator struct{}

func (MissingSolventValidator) Name() string { return "MissingSolventValidator" }

func (v MissingSolventValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	reagents := ctx.ClaimsOfKind(model.ClaimReagentMention)
	solvents := ctx.ClaimsOfKind(model.ClaimSolventMention)

	if len(reagents) == 0 || len(solvents) > 0 {
		return nil, nil
	}

	kind := model.KindMissingSolvent
	return []model.ValidationFinding{{
		ID:            ctx.IDs.NewID(),
		RunID:         ctx.RunID,
		ValidatorName: v.Name(),
		RuleID:        v.Name(),
		RuleVersion:   "v1",
		Status:        model.StatusFail,
		Kind:          &kind,
		Message:       "reagents are described without naming a reaction solvent",
		Confidence:    0.5,
	}}, nil
}

var heatingCueRegex = regexp.MustCompile(`(?i)\b(reflux|refluxed|heated|heating)\b`)

// MissingTemperatureWhenImpliedValidator flags a procedure that describes
// heating or reflux but reports no numeric or symbolic temperature at all.
type MissingTemperatureWhenImpliedValidator struct{}

func (MissingTemperatureWhenImpliedValidator) Name() string {
	return "MissingTemperatureWhenImpliedValidator"
}

func (v MissingTemperatureWhenImpliedValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	if !heatingCueRegex.MatchString(ctx.Text) {
		return nil, nil
	}

	if len(ctx.ClaimsOfKind(model.ClaimSymbolicTemperature)) > 0 {
		return nil, nil
	}
	for _, c := range ctx.ClaimsOfKind(model.ClaimNumericWithUnit) {
		if model.ParseClaimPayload(c.Payload).ContextKey == "temp" {
			return nil, nil
		}
	}

	kind := model.KindMissingTemperature
	return []model.ValidationFinding{{
		ID:            ctx.IDs.NewID(),
		RunID:         ctx.RunID,
		ValidatorName: v.Name(),
		RuleID:        v.Name(),
		RuleVersion:   "v1",
		Status:        model.StatusFail,
		Kind:          &kind,
		Message:       "heating or reflux is described without a reported temperature",
		Confidence:    0.55,
	}}, nil
}

// reactiveReagentRoles are the roles whose quench is safety-relevant.
var reactiveReagentRoles = map[string]bool{
	"reductant":      true,
	"organometallic": true,
}

var quenchCueRegex = regexp.MustCompile(`(?i)\bquench(?:ed|ing)?\b`)

// QuenchWhenReactiveReagentValidator flags a procedure using a reactive
// reductant or organometallic reagent that reports no quench step.
type QuenchWhenReactiveReagentValidator struct{}

func (QuenchWhenReactiveReagentValidator) Name() string {
	return "QuenchWhenReactiveReagentValidator"
}

func (v QuenchWhenReactiveReagentValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var reactive []model.ExtractedClaim
	for _, c := range ctx.ClaimsOfKind(model.ClaimReagentMention) {
		role := model.ParseClaimPayload(c.Payload).Role
		if reactiveReagentRoles[role] {
			reactive = append(reactive, c)
		}
	}
	if len(reactive) == 0 || quenchCueRegex.MatchString(ctx.Text) {
		return nil, nil
	}

	var findings []model.ValidationFinding
	for _, c := range reactive {
		kind := model.KindMissingQuench
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &c.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusFail,
			Kind:          &kind,
			Message:       fmt.Sprintf("%s is used but no quench step is described", c.RawText),
			Confidence:    0.6,
		})
	}
	return findings, nil
}

var ambientExposureCueRegex = regexp.MustCompile(`(?i)\b(open to air|ambient atmosphere|exposed to air)\b`)

// DryInertMismatchValidator flags a run that claims anhydrous/dry
// conditions but also describes exposure to ambient air.
type DryInertMismatchValidator struct{}

func (DryInertMismatchValidator) Name() string { return "DryInertMismatchValidator" }

func (v DryInertMismatchValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	dryness := ctx.ClaimsOfKind(model.ClaimDrynessCondition)
	if len(dryness) == 0 || !ambientExposureCueRegex.MatchString(ctx.Text) {
		return nil, nil
	}

	var findings []model.ValidationFinding
	for _, c := range dryness {
		kind := model.KindCrossStepConditionVariation
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &c.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusFail,
			Kind:          &kind,
			Message:       fmt.Sprintf("%s is claimed but the text also describes ambient-air exposure", c.RawText),
			Confidence:    0.55,
		})
	}
	return findings, nil
}
