package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemverify/chemverify/internal/connector"
	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/policy"
)

func verify(t *testing.T, text string, settings policy.Settings) Outcome {
	t.Helper()
	eng := New(idgen.NewCounter("id"), connector.NewStaticConnector(""))
	out, err := eng.VerifyText(context.Background(), text, settings, "", time.Unix(0, 0).UTC())
	require.NoError(t, err)
	return out
}

func findingsWithKind(findings []model.ValidationFinding, status model.Status, kind model.FindingKind) []model.ValidationFinding {
	var out []model.ValidationFinding
	for _, f := range findings {
		if f.Status == status && f.Kind != nil && *f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Scenario 1: "2 h" and "120 min" normalize to the same
// quantity and must be reported Pass with "≈" in the message.
func TestScenario_UnitEquivalencePass(t *testing.T) {
	text := "The reaction was stirred for 2 h at room temperature. After 120 min, the mixture was quenched with water."
	out := verify(t, text, mustLoad(t, policy.ProfileDefault))

	var found bool
	for _, f := range out.Findings {
		if f.ValidatorName == "NumericContradictionValidator" && f.Status == model.StatusPass && containsRune(f.Message, '≈') {
			found = true
		}
	}
	assert.True(t, found, "expected a Pass finding with ≈ in its message")
}

// Scenario 2: distinct temperatures flagged by alternate-route
// language should be MultiScenario, not Contradiction.
func TestScenario_MultiScenarioNotContradiction(t *testing.T) {
	text := "The reaction was heated to 78 °C for 4 h. In an alternative route, the mixture was cooled to -78 °C before addition of the organolithium reagent."
	out := verify(t, text, mustLoad(t, policy.ProfileDefault))

	assert.NotEmpty(t, findingsWithKind(out.Findings, model.StatusUnverified, model.KindMultiScenario))
	assert.Empty(t, findingsWithKind(out.Findings, model.StatusFail, model.KindContradiction))
}

// Scenario 3: conflicting yields are a genuine contradiction
// and must raise the risk score above zero.
func TestScenario_ConflictingYieldsFail(t *testing.T) {
	text := "The product was isolated in 82% yield after column chromatography. The overall yield of the process was 15%."
	out := verify(t, text, mustLoad(t, policy.ProfileDefault))

	assert.NotEmpty(t, findingsWithKind(out.Findings, model.StatusFail, model.KindContradiction))
	assert.Greater(t, out.Run.RiskScore, 0.0)
}

// Scenario 4: NaH added to water is a known-incompatible
// reagent/solvent pairing.
func TestScenario_IncompatibleReagentSolvent(t *testing.T) {
	text := "NaH (60% dispersion) was added portionwise to water at 0 °C."
	out := verify(t, text, mustLoad(t, policy.ProfileDefault))

	assert.NotEmpty(t, findingsWithKind(out.Findings, model.StatusFail, model.KindIncompatibleReagentSolvent))
}

// Scenario 5: bare mass/volume claims with no resolvable
// context are NotComparable, not a contradiction.
func TestScenario_BareMassNotComparable(t *testing.T) {
	text := "Benzaldehyde (1.06 g, 10 mmol) was dissolved in 10 mL of MeOH. NaBH4 (0.38 g, 10 mmol) was added in portions."
	out := verify(t, text, mustLoad(t, policy.ProfileDefault))

	assert.Empty(t, findingsWithKind(out.Findings, model.StatusFail, model.KindContradiction))
	assert.NotEmpty(t, findingsWithKind(out.Findings, model.StatusUnverified, model.KindNotComparable))
}

// Scenario 6: a malformed DOI fails DoiFormatValidator under
// StrictChemistryV0; under ScientificTextV0 the dampened score stays well
// under Critical.
func TestScenario_MalformedDoi(t *testing.T) {
	text := "See DOI: 10.1038/NOT#A#DOI."

	strict := verify(t, text, mustLoad(t, policy.ProfileStrictChemistryV0))
	doiClaims := strict.Claims
	var doiClaimCount int
	for _, c := range doiClaims {
		if c.Kind == model.ClaimCitationDoi {
			doiClaimCount++
		}
	}
	assert.Equal(t, 1, doiClaimCount)
	var doiFail bool
	for _, f := range strict.Findings {
		if f.ValidatorName == "DoiFormatValidator" && f.Status == model.StatusFail {
			doiFail = true
		}
	}
	assert.True(t, doiFail, "expected a Fail from DoiFormatValidator")

	sci := verify(t, text, mustLoad(t, policy.ProfileScientificTextV0))
	assert.Less(t, sci.Run.RiskScore, 1.0)
	assert.NotEqual(t, "Critical", sci.Report.Severity)
}

// Scenario 7: a temperature unit with no number in front of
// it is a malformed-token finding carrying a structured payload.
func TestScenario_DanglingTemperatureUnit(t *testing.T) {
	text := "The mixture was heated at °C for 1 h in THF."
	out := verify(t, text, mustLoad(t, policy.ProfileDefault))

	fails := findingsWithKind(out.Findings, model.StatusFail, model.KindMalformedChemicalToken)
	require.NotEmpty(t, fails)

	var matched bool
	for _, f := range fails {
		payload := model.ParseFindingPayload(f.Payload)
		if payload.Expected == "temperature numeric value" {
			matched = true
			require.Contains(t, payload.Examples, "°C")
		}
	}
	assert.True(t, matched, "expected a finding with payload expected=\"temperature numeric value\"")
}

// A connector failure in GenerateAndVerify mode must not be discarded as
// a bare error: the run is Failed, the risk score is forced to 1.0, and a
// single Pipeline Fail finding records the cause so the outcome can still
// be persisted.
func TestCreateRunAndAudit_ConnectorFailureProducesFailedRun(t *testing.T) {
	failing := connector.NewStaticConnector().WithError(errors.New("model service unreachable"))
	eng := New(idgen.NewCounter("id"), failing)

	out, err := eng.CreateRunAndAudit(context.Background(), RunCommand{
		Prompt:       "synthesize a procedure",
		PreviousHash: "",
	}, mustLoad(t, policy.ProfileDefault), time.Unix(0, 0).UTC())

	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, out.Run.Status)
	assert.Equal(t, 1.0, out.Run.RiskScore)
	require.Len(t, out.Findings, 1)
	require.NotNil(t, out.Findings[0].Kind)
	assert.Equal(t, model.KindPipeline, *out.Findings[0].Kind)
	assert.Equal(t, model.StatusFail, out.Findings[0].Status)
	assert.Equal(t, "Critical", out.Report.Severity)
}

// Determinism: two runs over the same
// (text, policy) with the same deterministic id generator produce
// byte-identical risk score and report sections.
func TestDeterminism(t *testing.T) {
	text := "The reaction was stirred for 2 h at 60 °C. NaBH4 (0.38 g, 10 mmol) was added in THF."

	run := func() Outcome {
		eng := New(idgen.NewCounter("id"), connector.NewStaticConnector(""))
		out, err := eng.Audit(context.Background(), Request{
			Mode:          model.ModeVerifyOnly,
			InputText:     text,
			PolicyProfile: policy.ProfileDefault,
		}, mustLoad(t, policy.ProfileDefault), time.Unix(0, 0).UTC())
		require.NoError(t, err)
		return out
	}

	a, b := run(), run()
	assert.Equal(t, a.Run.RiskScore, b.Run.RiskScore)
	assert.Equal(t, a.Report.Verdict, b.Report.Verdict)
	assert.Equal(t, a.Report.Severity, b.Report.Severity)
	assert.Equal(t, len(a.Findings), len(b.Findings))
	assert.Equal(t, a.Run.CurrentHash, b.Run.CurrentHash)
}

func mustLoad(t *testing.T, name string) policy.Settings {
	t.Helper()
	settings, err := policy.Load(name)
	require.NoError(t, err)
	return settings
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
