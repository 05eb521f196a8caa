package validate

import (
	"fmt"
	"regexp"

	"github.com/chemverify/chemverify/internal/model"
)

// wellFormedDoiRegex is deliberately stricter than the permissive
// extraction regex: a genuine DOI suffix never contains "#", whitespace,
// or the other punctuation the extractor tolerates as sentence noise.
var wellFormedDoiRegex = regexp.MustCompile(`^10\.\d{4,9}/[A-Za-z0-9.()/_:-]+$`)

// DoiFormatValidator checks every CitationDoi claim against a strict DOI
// shape, independent of the permissive extraction regex.
type DoiFormatValidator struct{}

func (DoiFormatValidator) Name() string { return "DoiFormatValidator" }

func (v DoiFormatValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	var findings []model.ValidationFinding
	for _, c := range ctx.ClaimsOfKind(model.ClaimCitationDoi) {
		if wellFormedDoiRegex.MatchString(c.RawText) {
			findings = append(findings, model.ValidationFinding{
				ID:            ctx.IDs.NewID(),
				RunID:         ctx.RunID,
				ClaimID:       &c.ID,
				ValidatorName: v.Name(),
				RuleID:        v.Name(),
				RuleVersion:   "v1",
				Status:        model.StatusPass,
				Message:       fmt.Sprintf("%s is a well-formed DOI", c.RawText),
				Confidence:    0.9,
			})
			continue
		}
		kind := model.KindCitationTraceabilityWeak
		findings = append(findings, model.ValidationFinding{
			ID:            ctx.IDs.NewID(),
			RunID:         ctx.RunID,
			ClaimID:       &c.ID,
			ValidatorName: v.Name(),
			RuleID:        v.Name(),
			RuleVersion:   "v1",
			Status:        model.StatusFail,
			Kind:          &kind,
			Message:       fmt.Sprintf("%s does not match a well-formed DOI", c.RawText),
			Confidence:    0.7,
		})
	}
	return findings, nil
}

var authorYearCitationRegex = regexp.MustCompile(`\([A-Z][a-zA-Z]+(?:\s(?:et al\.?|and [A-Z][a-zA-Z]+))?,?\s(?:19|20)\d{2}\)`)

// MixedCitationStyleValidator flags text that contains both a DOI citation
// and an author-year parenthetical citation anywhere, which weakens any
// one claim's traceability back to a single source record. It does not
// check whether the two cite the same work.
type MixedCitationStyleValidator struct{}

func (MixedCitationStyleValidator) Name() string { return "MixedCitationStyleValidator" }

func (v MixedCitationStyleValidator) Validate(ctx Context) ([]model.ValidationFinding, error) {
	if len(ctx.ClaimsOfKind(model.ClaimCitationDoi)) == 0 {
		return nil, nil
	}
	if !authorYearCitationRegex.MatchString(ctx.Text) {
		return nil, nil
	}

	kind := model.KindCitationTraceabilityWeak
	return []model.ValidationFinding{{
		ID:            ctx.IDs.NewID(),
		RunID:         ctx.RunID,
		ValidatorName: v.Name(),
		RuleID:        v.Name(),
		RuleVersion:   "v1",
		Status:        model.StatusUnverified,
		Kind:          &kind,
		Message:       "the text mixes DOI and author-year citation styles, weakening traceability",
		Confidence:    0.4,
	}}, nil
}
