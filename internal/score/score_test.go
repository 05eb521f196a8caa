package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/policy"
)

func failFinding(kind model.FindingKind, validator string) model.ValidationFinding {
	k := kind
	return model.ValidationFinding{Status: model.StatusFail, Kind: &k, ValidatorName: validator}
}

func TestCompute_NoFindingsIsLow(t *testing.T) {
	result := Compute(nil, policy.Settings{})
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, "Low", result.Severity)
}

func TestCompute_SeverityThresholds(t *testing.T) {
	cases := []struct {
		name     string
		score    float64
		expected string
	}{
		{"low boundary", 0.10, "Low"},
		{"medium boundary", 0.35, "Medium"},
		{"high boundary", 0.65, "High"},
		{"above high is critical", 0.90, "Critical"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, classify(c.score), c.name)
	}
}

func TestCompute_TextIntegrityOnlyClampsToLow(t *testing.T) {
	findings := []model.ValidationFinding{
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
		failFinding(model.KindMalformedChemicalToken, "MalformedChemicalTokenValidator"),
	}
	result := Compute(findings, policy.Settings{})
	assert.Equal(t, "Low", result.Severity)
	assert.Greater(t, result.Score, 0.35)
}

func TestCompute_DampensDoiFailSeverity(t *testing.T) {
	findings := []model.ValidationFinding{
		{Status: model.StatusFail, ValidatorName: "DoiFormatValidator"},
	}
	dampened := Compute(findings, policy.Settings{DampenDoiFailSeverity: true})
	undampened := Compute(findings, policy.Settings{DampenDoiFailSeverity: false})
	assert.Less(t, dampened.Score, undampened.Score)
}

func TestWeightFor_ZeroForNonFail(t *testing.T) {
	k := model.KindContradiction
	f := model.ValidationFinding{Status: model.StatusPass, Kind: &k}
	assert.Equal(t, 0.0, WeightFor(f))
}
