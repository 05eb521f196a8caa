package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/score"
)

func withKind(status model.Status, kind model.FindingKind) model.ValidationFinding {
	k := kind
	return model.ValidationFinding{ID: "f-" + string(kind), Status: status, Kind: &k, Message: "msg"}
}

func TestBuild_NoAttentionWithConfirmedIsClean(t *testing.T) {
	findings := []model.ValidationFinding{
		{ID: "f1", Status: model.StatusPass, Message: "ok"},
	}
	r := Build("run1", findings, score.Result{Score: 0, Severity: "Low"})
	assert.Equal(t, "No internal inconsistencies detected. The procedure appears self-consistent.", r.Verdict)
}

func TestBuild_ContradictionTakesPriority(t *testing.T) {
	findings := []model.ValidationFinding{
		withKind(model.StatusFail, model.KindContradiction),
		withKind(model.StatusUnverified, model.KindMultiScenario),
	}
	r := Build("run1", findings, score.Result{Score: 0.5, Severity: "High"})
	assert.Equal(t, "Internal inconsistencies detected. Manual review recommended before proceeding.", r.Verdict)
}

func TestBuild_MultiScenarioOnlyVerdict(t *testing.T) {
	findings := []model.ValidationFinding{
		withKind(model.StatusUnverified, model.KindMultiScenario),
		withKind(model.StatusPass, model.KindContradiction),
	}
	r := Build("run1", findings, score.Result{Score: 0, Severity: "Low"})
	assert.Equal(t, "Internally consistent; multiple distinct experimental regimes detected.", r.Verdict)
	assert.Empty(t, r.Attention)
}

func TestBuild_TextIntegrityOnlyVerdict(t *testing.T) {
	findings := []model.ValidationFinding{
		withKind(model.StatusFail, model.KindMalformedChemicalToken),
	}
	r := Build("run1", findings, score.Result{Score: 0.05, Severity: "Low"})
	assert.Equal(t, "Scientific writing/format issues detected. Manual cleanup recommended.", r.Verdict)
}

func TestBuild_RiskDriversCappedAndSorted(t *testing.T) {
	var findings []model.ValidationFinding
	for i := 0; i < 8; i++ {
		f := withKind(model.StatusFail, model.KindContradiction)
		f.ID = string(rune('a' + i))
		f.Confidence = float64(i) / 10
		f.Message = "driver " + f.ID
		findings = append(findings, f)
	}
	r := Build("run1", findings, score.Result{Score: 0.9, Severity: "Critical"})
	assert.Len(t, r.RiskDrivers, 5)
	assert.Equal(t, "❌ driver h", r.RiskDrivers[0].Label)
	assert.Equal(t, "❌ driver d", r.RiskDrivers[4].Label)
}
