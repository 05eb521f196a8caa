package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
)

func TestMalformedChemicalTokenValidator_DanglingTemperatureUnit(t *testing.T) {
	ctx := Context{
		RunID: "r1",
		Text:  "The mixture was heated at °C for 1 h in THF.",
		IDs:   idgen.NewCounter("id"),
	}

	findings, err := MalformedChemicalTokenValidator{}.Validate(ctx)
	require.NoError(t, err)

	var match *model.ValidationFinding
	for i := range findings {
		payload := model.ParseFindingPayload(findings[i].Payload)
		if payload.Expected == "temperature numeric value" {
			match = &findings[i]
		}
	}
	require.NotNil(t, match, "expected a finding with expected=\"temperature numeric value\"")
	assert.Equal(t, model.StatusFail, match.Status)
	require.NotNil(t, match.Kind)
	assert.Equal(t, model.KindMalformedChemicalToken, *match.Kind)
	assert.Contains(t, model.ParseFindingPayload(match.Payload).Examples, "°C")
}

func TestMalformedChemicalTokenValidator_NoFindingWhenUnitIsAnchored(t *testing.T) {
	ctx := Context{
		RunID: "r1",
		Text:  "The mixture was heated at 120 °C for 1 h in THF.",
		IDs:   idgen.NewCounter("id"),
	}

	findings, err := MalformedChemicalTokenValidator{}.Validate(ctx)
	require.NoError(t, err)
	for _, f := range findings {
		payload := model.ParseFindingPayload(f.Payload)
		assert.NotEqual(t, "temperature numeric value", payload.Expected)
	}
}

func TestMalformedChemicalTokenValidator_AllCapsReagent(t *testing.T) {
	ctx := Context{
		RunID: "r1",
		Text:  "NABH4 was added to the flask.",
		IDs:   idgen.NewCounter("id"),
	}

	findings, err := MalformedChemicalTokenValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, findings)
	assert.Equal(t, "NaBH4", model.ParseFindingPayload(findings[0].Payload).Expected)
}

func TestPlaceholderTokenValidator_FlagsBracketedTodo(t *testing.T) {
	ctx := Context{
		RunID: "r1",
		Text:  "The yield was [TODO] percent.",
		IDs:   idgen.NewCounter("id"),
	}

	findings, err := PlaceholderTokenValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.StatusFail, findings[0].Status)
}
