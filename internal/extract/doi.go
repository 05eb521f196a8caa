package extract

import (
	"regexp"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

// doiRegex is intentionally permissive: DOIs have no fully-regular grammar,
// so this accepts the registrant-code/suffix shape and relies on
// DoiFormatValidator to flag anything that turns out malformed.
var doiRegex = regexp.MustCompile(`10\.\d{4,9}/[^\s"'<>,;]+`)

// doiTrailingPunct is stripped off a matched DOI when it was almost
// certainly swept up as sentence punctuation rather than part of the
// identifier itself.
var doiTrailingPunct = ".,;:)]}\"'"

// DoiClaimExtractor recognizes bare DOI citations.
type DoiClaimExtractor struct{}

func (DoiClaimExtractor) Name() string { return "DoiClaimExtractor" }

func (DoiClaimExtractor) Extract(ctx Context) ([]model.ExtractedClaim, error) {
	var claims []model.ExtractedClaim
	seen := make(map[string]bool)

	for _, loc := range doiRegex.FindAllStringIndex(ctx.Text, -1) {
		start, end := loc[0], loc[1]
		raw := ctx.Text[start:end]

		trimmed := strings.TrimRight(raw, doiTrailingPunct)
		end -= len(raw) - len(trimmed)
		raw = trimmed
		if raw == "" {
			continue
		}

		key := strings.ToLower(raw)
		if seen[key] {
			continue
		}
		seen[key] = true

		claims = append(claims, model.ExtractedClaim{
			ID:              ctx.IDs.NewID(),
			RunID:           ctx.RunID,
			Kind:            model.ClaimCitationDoi,
			RawText:         raw,
			NormalizedValue: key,
			SourceLocator:   model.FormatLocator(model.Span{Start: start, End: end}),
			StepIndex:       stepIndexFor(ctx.Steps, start),
		})
	}

	return claims, nil
}
