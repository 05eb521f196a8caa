package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
)

func doiClaim(id, rawText string) model.ExtractedClaim {
	return model.ExtractedClaim{
		ID:              id,
		Kind:            model.ClaimCitationDoi,
		RawText:         rawText,
		NormalizedValue: rawText,
		SourceLocator:   model.FormatLocator(model.Span{Start: 0, End: len(rawText)}),
	}
}

func TestDoiFormatValidator_RejectsHashCharacters(t *testing.T) {
	ctx := Context{
		RunID:  "r1",
		Text:   "See DOI: 10.1038/NOT#A#DOI.",
		Claims: []model.ExtractedClaim{doiClaim("c1", "10.1038/NOT#A#DOI")},
		IDs:    idgen.NewCounter("id"),
	}

	findings, err := DoiFormatValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.StatusFail, findings[0].Status)
}

func TestDoiFormatValidator_AcceptsWellFormedDoi(t *testing.T) {
	ctx := Context{
		RunID:  "r1",
		Text:   "https://doi.org/10.1021/jacs.1c12345",
		Claims: []model.ExtractedClaim{doiClaim("c1", "10.1021/jacs.1c12345")},
		IDs:    idgen.NewCounter("id"),
	}

	findings, err := DoiFormatValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.StatusPass, findings[0].Status)
}

func TestMixedCitationStyleValidator_RequiresDoiAndAuthorYear(t *testing.T) {
	ctx := Context{
		RunID:  "r1",
		Text:   "As reported (Smith, 2019), the DOI is 10.1021/jacs.1c12345.",
		Claims: []model.ExtractedClaim{doiClaim("c1", "10.1021/jacs.1c12345")},
		IDs:    idgen.NewCounter("id"),
	}

	findings, err := MixedCitationStyleValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.StatusUnverified, findings[0].Status)
}

func TestMixedCitationStyleValidator_SilentWithOnlyDoi(t *testing.T) {
	ctx := Context{
		RunID:  "r1",
		Text:   "The DOI is 10.1021/jacs.1c12345.",
		Claims: []model.ExtractedClaim{doiClaim("c1", "10.1021/jacs.1c12345")},
		IDs:    idgen.NewCounter("id"),
	}

	findings, err := MixedCitationStyleValidator{}.Validate(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}
