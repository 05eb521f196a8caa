package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
)

func numericClaim(id, runID, rawText, normalizedValue, unit, contextKey string) model.ExtractedClaim {
	return model.ExtractedClaim{
		ID:              id,
		RunID:           runID,
		Kind:            model.ClaimNumericWithUnit,
		RawText:         rawText,
		NormalizedValue: normalizedValue,
		Unit:            unit,
		Payload:         model.MarshalClaimPayload(model.ClaimPayload{ContextKey: contextKey}),
		SourceLocator:   model.FormatLocator(model.Span{Start: 0, End: len(rawText)}),
	}
}

func TestNumericContradictionValidator_UnitEquivalencePass(t *testing.T) {
	claims := []model.ExtractedClaim{
		numericClaim("c1", "r1", "2 h", "2", "h", "time"),
		numericClaim("c2", "r1", "120 min", "120", "min", "time"),
	}
	ctx := Context{RunID: "r1", Text: "2 h ... 120 min", Claims: claims, IDs: idgen.NewCounter("id")}

	findings, err := NumericContradictionValidator{}.Validate(ctx)
	require.NoError(t, err)

	var passWithTilde bool
	for _, f := range findings {
		if f.Status == model.StatusPass {
			for _, r := range f.Message {
				if r == '≈' {
					passWithTilde = true
				}
			}
		}
	}
	assert.True(t, passWithTilde)
}

func TestNumericContradictionValidator_ContradictionOnLargeDelta(t *testing.T) {
	claims := []model.ExtractedClaim{
		numericClaim("c1", "r1", "82%", "82", "%", "yield"),
		numericClaim("c2", "r1", "15%", "15", "%", "yield"),
	}
	ctx := Context{RunID: "r1", Text: "82% ... 15%", Claims: claims, IDs: idgen.NewCounter("id")}

	findings, err := NumericContradictionValidator{}.Validate(ctx)
	require.NoError(t, err)

	var fail bool
	for _, f := range findings {
		if f.Status == model.StatusFail && f.Kind != nil && *f.Kind == model.KindContradiction {
			fail = true
		}
	}
	assert.True(t, fail)
}

func TestNumericContradictionValidator_NotComparableForUnresolvedContext(t *testing.T) {
	claims := []model.ExtractedClaim{
		numericClaim("c1", "r1", "1.06 g", "1.06", "g", ""),
	}
	ctx := Context{RunID: "r1", Text: "1.06 g", Claims: claims, IDs: idgen.NewCounter("id")}

	findings, err := NumericContradictionValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].Kind)
	assert.Equal(t, model.KindNotComparable, *findings[0].Kind)
	assert.Equal(t, model.StatusUnverified, findings[0].Status)
}

func TestNumericContradictionValidator_MultiScenarioAbortsGroup(t *testing.T) {
	text := "heated to 78 C for 4 h. In an alternative route, the mixture was cooled to -78 C"
	c1 := numericClaim("c1", "r1", "78 C", "78", "°C", "temp")
	c1.SourceLocator = model.FormatLocator(model.Span{Start: 10, End: 14})
	c2 := numericClaim("c2", "r1", "-78 C", "-78", "°C", "temp")
	altIdx := indexOf(text, "-78 C")
	c2.SourceLocator = model.FormatLocator(model.Span{Start: altIdx, End: altIdx + len("-78 C")})

	ctx := Context{RunID: "r1", Text: text, Claims: []model.ExtractedClaim{c1, c2}, IDs: idgen.NewCounter("id")}

	findings, err := NumericContradictionValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].Kind)
	assert.Equal(t, model.KindMultiScenario, *findings[0].Kind)
	assert.Equal(t, model.StatusUnverified, findings[0].Status)
}

func locate(c model.ExtractedClaim, text, substr string) model.ExtractedClaim {
	start := indexOf(text, substr)
	c.SourceLocator = model.FormatLocator(model.Span{Start: start, End: start + len(substr)})
	return c
}

func TestEquivalentsConsistencyValidator_ConsistentRefMmolNoFindings(t *testing.T) {
	text := "NaH (1.0 equiv, 10 mmol) was added. Then the electrophile (2.0 equiv, 20 mmol) was added."
	claims := []model.ExtractedClaim{
		locate(numericClaim("c1", "r1", "10 mmol", "10", "mmol", ""), text, "10 mmol"),
		locate(numericClaim("c2", "r1", "20 mmol", "20", "mmol", ""), text, "20 mmol"),
	}
	ctx := Context{RunID: "r1", Text: text, Claims: claims, IDs: idgen.NewCounter("id")}

	findings, err := EquivalentsConsistencyValidator{}.Validate(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestEquivalentsConsistencyValidator_InconsistentRefMmolFails(t *testing.T) {
	text := "NaH (1.0 equiv, 10 mmol) was added. Then the electrophile (2.0 equiv, 50 mmol) was added."
	claims := []model.ExtractedClaim{
		locate(numericClaim("c1", "r1", "10 mmol", "10", "mmol", ""), text, "10 mmol"),
		locate(numericClaim("c2", "r1", "50 mmol", "50", "mmol", ""), text, "50 mmol"),
	}
	ctx := Context{RunID: "r1", Text: text, Claims: claims, IDs: idgen.NewCounter("id")}

	findings, err := EquivalentsConsistencyValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].Kind)
	assert.Equal(t, model.KindEquivInconsistent, *findings[0].Kind)
	assert.Equal(t, model.StatusFail, findings[0].Status)
}

func TestMwConsistencyValidator_PlausibleMwPasses(t *testing.T) {
	text := "Isolated product (0.240 g, 1.2 mmol) after workup."
	mass := locate(numericClaim("m1", "r1", "0.240 g", "0.240", "g", "mass"), text, "0.240 g")
	mmol := locate(numericClaim("n1", "r1", "1.2 mmol", "1.2", "mmol", ""), text, "1.2 mmol")
	ctx := Context{RunID: "r1", Text: text, Claims: []model.ExtractedClaim{mass, mmol}, IDs: idgen.NewCounter("id")}

	findings, err := MwConsistencyValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].Kind)
	assert.Equal(t, model.KindMwConsistent, *findings[0].Kind)
	assert.Equal(t, model.StatusPass, findings[0].Status)
}

func TestMwConsistencyValidator_ImplausibleMwFails(t *testing.T) {
	text := "Crude product (5 g, 50000 mmol) was obtained."
	mass := locate(numericClaim("m1", "r1", "5 g", "5", "g", "mass"), text, "5 g")
	mmol := locate(numericClaim("n1", "r1", "50000 mmol", "50000", "mmol", ""), text, "50000 mmol")
	ctx := Context{RunID: "r1", Text: text, Claims: []model.ExtractedClaim{mass, mmol}, IDs: idgen.NewCounter("id")}

	findings, err := MwConsistencyValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].Kind)
	assert.Equal(t, model.KindMwImplausible, *findings[0].Kind)
	assert.Equal(t, model.StatusFail, findings[0].Status)
}

func TestYieldMassConsistencyValidator_ConsistentYieldPasses(t *testing.T) {
	text := "Charged with 500 mg starting material. After workup, product (400 mg, 80% yield) was isolated."
	start := locate(numericClaim("s1", "r1", "500 mg", "500", "mg", ""), text, "500 mg")
	prod := locate(numericClaim("p1", "r1", "400 mg", "400", "mg", ""), text, "400 mg")
	yieldClaim := locate(numericClaim("y1", "r1", "80%", "80", "%", "yield"), text, "80%")
	ctx := Context{RunID: "r1", Text: text, Claims: []model.ExtractedClaim{start, prod, yieldClaim}, IDs: idgen.NewCounter("id")}

	findings, err := YieldMassConsistencyValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.StatusPass, findings[0].Status)
}

func TestYieldMassConsistencyValidator_InconsistentYieldFails(t *testing.T) {
	text := "Charged with 500 mg starting material. After workup, product (50 mg, 80% yield) was isolated."
	start := locate(numericClaim("s1", "r1", "500 mg", "500", "mg", ""), text, "500 mg")
	prod := locate(numericClaim("p1", "r1", "50 mg", "50", "mg", ""), text, "50 mg")
	yieldClaim := locate(numericClaim("y1", "r1", "80%", "80", "%", "yield"), text, "80%")
	ctx := Context{RunID: "r1", Text: text, Claims: []model.ExtractedClaim{start, prod, yieldClaim}, IDs: idgen.NewCounter("id")}

	findings, err := YieldMassConsistencyValidator{}.Validate(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].Kind)
	assert.Equal(t, model.KindYieldMassInconsistent, *findings[0].Kind)
	assert.Equal(t, model.StatusFail, findings[0].Status)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
