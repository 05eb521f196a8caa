// Package validate implements the fault-tolerant validator pipeline and
// catalogue that turns extracted claims, plus the analyzed
// text they were drawn from, into ValidationFindings.
package validate

import (
	"fmt"
	"strings"

	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/policy"
)

// Context carries everything a validator needs to inspect a run's claims
// against its source text.
type Context struct {
	RunID  string
	Text   string
	Steps  []model.TextStep
	Claims []model.ExtractedClaim
	IDs    idgen.Generator
}

// ClaimsOfKind returns every claim of the given kind, preserving order.
func (c Context) ClaimsOfKind(kind model.ClaimKind) []model.ExtractedClaim {
	var out []model.ExtractedClaim
	for _, cl := range c.Claims {
		if cl.Kind == kind {
			out = append(out, cl)
		}
	}
	return out
}

// Validator inspects a run's claims and/or text and emits zero or more
// findings. Implementations must be pure: no shared mutable state, no I/O.
type Validator interface {
	Name() string
	Validate(ctx Context) ([]model.ValidationFinding, error)
}

// Pipeline runs a policy-filtered, ordered set of validators, recovering
// from any validator panic or error into a single Unverified diagnostic
// finding rather than aborting the run.
type Pipeline struct {
	validators []Validator
}

// NewPipeline builds a validator pipeline over the given set, in the order
// given.
func NewPipeline(validators ...Validator) *Pipeline {
	return &Pipeline{validators: validators}
}

// Run executes every validator the policy allows, in registration order.
func (p *Pipeline) Run(ctx Context, settings policy.Settings) []model.ValidationFinding {
	var findings []model.ValidationFinding

	for _, v := range p.validators {
		if !settings.Allows(v.Name()) {
			continue
		}

		produced, err := p.invoke(v, ctx)
		if err != nil {
			findings = append(findings, model.ValidationFinding{
				ID:            ctx.IDs.NewID(),
				RunID:         ctx.RunID,
				ValidatorName: v.Name(),
				RuleID:        v.Name(),
				RuleVersion:   "v1",
				Status:        model.StatusUnverified,
				Message:       fmt.Sprintf("Validator failed: %v", err),
				Confidence:    0,
			})
			continue
		}
		findings = append(findings, produced...)
	}

	return findings
}

func (p *Pipeline) invoke(v Validator, ctx Context) (findings []model.ValidationFinding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return v.Validate(ctx)
}

// EnrichEvidence fills in the evidence fields of every finding that
// doesn't already have them, from its ClaimID (preferred) or its
// EvidenceRef locator string, capturing a ±radius character snippet
// around the anchor offset.
func EnrichEvidence(text string, claims []model.ExtractedClaim, findings []model.ValidationFinding, radius int) []model.ValidationFinding {
	byID := make(map[string]model.ExtractedClaim, len(claims))
	for _, c := range claims {
		byID[c.ID] = c
	}

	out := make([]model.ValidationFinding, len(findings))
	for i, f := range findings {
		if f.HasEvidence() {
			out[i] = f
			continue
		}

		var span model.Span
		var ok bool
		var entityKey *string
		var stepIndex *int

		if f.ClaimID != nil {
			if claim, found := byID[*f.ClaimID]; found {
				span, ok = claim.Locator()
				entityKey = claim.EntityKey
				stepIndex = claim.StepIndex
			}
		}
		if !ok && f.EvidenceRef != "" {
			span, ok = model.ParseLocator(f.EvidenceRef)
		}

		if !ok {
			out[i] = f
			continue
		}

		snippet := snippetAround(text, span, radius)
		f.EvidenceStartOffset = intPtr(span.Start)
		f.EvidenceEndOffset = intPtr(span.End)
		f.EvidenceSnippet = &snippet
		if entityKey != nil {
			f.EvidenceEntityKey = entityKey
		}
		if stepIndex != nil {
			f.EvidenceStepIndex = stepIndex
		}
		out[i] = f
	}
	return out
}

func snippetAround(text string, span model.Span, radius int) string {
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
	return strings.TrimSpace(text[start:end])
}

func intPtr(v int) *int { return &v }
