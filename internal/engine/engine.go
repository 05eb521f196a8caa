// Package engine wires the full audit pipeline together: canonicalize,
// segment, merge, classify, extract, validate, enrich, score, and report
//. It is the only package that knows the pipeline's stage
// order.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chemverify/chemverify/internal/canon"
	"github.com/chemverify/chemverify/internal/classify"
	"github.com/chemverify/chemverify/internal/connector"
	"github.com/chemverify/chemverify/internal/extract"
	"github.com/chemverify/chemverify/internal/hashchain"
	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
	"github.com/chemverify/chemverify/internal/policy"
	"github.com/chemverify/chemverify/internal/report"
	"github.com/chemverify/chemverify/internal/score"
	"github.com/chemverify/chemverify/internal/segment"
	"github.com/chemverify/chemverify/internal/validate"
)

// EngineVersion is stamped into every run's hash chain input.
const EngineVersion = "chemverify-1"

// AuditEngine runs the deterministic verification pipeline over a single
// text and, in GenerateAndVerify mode, first obtains that text from a
// ModelConnector.
type AuditEngine struct {
	IDs       idgen.Generator
	Connector connector.ModelConnector
	Claims    *extract.Composite
	Validate  *validate.Pipeline
}

// New builds an AuditEngine wired with the full built-in claim-extractor
// and validator catalogues.
func New(ids idgen.Generator, conn connector.ModelConnector) *AuditEngine {
	return &AuditEngine{
		IDs:       ids,
		Connector: conn,
		Claims: extract.NewComposite(
			extract.NumericUnitExtractor{},
			extract.DoiClaimExtractor{},
			extract.ReagentRoleExtractor{},
			extract.SolventMentionExtractor{},
			extract.AtmosphereConditionExtractor{},
			extract.DrynessConditionExtractor{},
			extract.SymbolicTemperatureExtractor{},
		),
		Validate: validate.NewPipeline(
			validate.NumericContradictionValidator{},
			validate.EquivalentsConsistencyValidator{},
			validate.MwConsistencyValidator{},
			validate.YieldMassConsistencyValidator{},
			validate.DoiFormatValidator{},
			validate.MixedCitationStyleValidator{},
			validate.IncompatibleReagentSolventValidator{},
			validate.MissingSolventValidator{},
			validate.MissingTemperatureWhenImpliedValidator{},
			validate.QuenchWhenReactiveReagentValidator{},
			validate.DryInertMismatchValidator{},
			validate.MalformedChemicalTokenValidator{},
			validate.PlaceholderTokenValidator{},
			validate.IncompleteScientificClaimValidator{},
			validate.ConcentrationSanityValidator{},
		),
	}
}

// Request describes a single audit invocation.
type Request struct {
	Mode          model.RunMode
	Prompt        string
	InputText     string
	ModelName     string
	PolicyProfile string
	PreviousHash  string
}

// Outcome bundles everything a caller needs from a completed run: the run
// record, its extracted claims, its enriched findings, and the rendered
// report.
type Outcome struct {
	Run     model.Run
	Claims  []model.ExtractedClaim
	Findings []model.ValidationFinding
	Report  report.Report
}

// Audit executes the full pipeline for req.
// In GenerateAndVerify mode it first calls the connector to obtain the
// text to analyze.
func (e *AuditEngine) Audit(ctx context.Context, req Request, settings policy.Settings, now time.Time) (Outcome, error) {
	run := model.Run{
		ID:            e.IDs.NewID(),
		CreatedAt:     now,
		Mode:          req.Mode,
		Status:        model.RunStatusCompleted,
		PolicyProfile: req.PolicyProfile,
		PreviousHash:  req.PreviousHash,
		ModelName:     req.ModelName,
	}

	if req.Prompt != "" {
		prompt := req.Prompt
		run.Prompt = &prompt
	}

	switch req.Mode {
	case model.ModeGenerateAndVerify:
		if e.Connector == nil {
			return e.pipelineFailureOutcome(run, settings, "GenerateAndVerify requires a model connector"), nil
		}
		generated, err := e.Connector.Generate(ctx, req.Prompt)
		if err != nil {
			return e.pipelineFailureOutcome(run, settings, fmt.Sprintf("generation failed: %s", err)), nil
		}
		run.GeneratedOutput = &generated
	case model.ModeVerifyOnly:
		input := req.InputText
		run.InputText = &input
	default:
		run.Status = model.RunStatusFailed
		return Outcome{Run: run}, fmt.Errorf("engine: unknown run mode %q", req.Mode)
	}

	text := canon.Text(run.AnalyzedText())

	steps := segment.Split(text)
	procedural := classify.Detect(text, len(steps))
	steps = segment.Merge(text, steps, procedural.ReferencesStartOffset)
	steps = classify.ClassifySteps(text, steps, procedural.ReferencesStartOffset)

	extractCtx := extract.Context{RunID: run.ID, Text: text, Steps: steps, IDs: e.IDs}
	claims, diagnostics := e.Claims.Extract(extractCtx)

	validateCtx := validate.Context{RunID: run.ID, Text: text, Steps: steps, Claims: claims, IDs: e.IDs}
	findings := e.Validate.Run(validateCtx, settings)
	findings = append(findings, diagnostics...)
	findings = validate.EnrichEvidence(text, claims, findings, settings.EvidenceSnippetRadius)

	riskResult := score.Compute(findings, settings)
	run.RiskScore = riskResult.Score

	run.CurrentHash = hashchain.Compute(hashchain.Input{
		PreviousHash:          run.PreviousHash,
		EngineVersion:         EngineVersion,
		Mode:                  string(run.Mode),
		PolicyProfile:         run.PolicyProfile,
		CanonicalPrompt:       canon.Text(req.Prompt),
		CanonicalAnalyzedText: text,
		CreatedUtc:            run.CreatedAt,
		ModelName:             run.ModelName,
	})

	rep := report.Build(run.ID, findings, riskResult)

	return Outcome{Run: run, Claims: claims, Findings: findings, Report: rep}, nil
}

// pipelineFailureOutcome builds the Outcome for a connector or pipeline
// failure in GenerateAndVerify mode: the run is marked Failed, a single
// Pipeline Fail finding records the cause, and the risk score is forced
// to 1.0 by that finding's contribution. Returning a complete Outcome
// (rather than a bare error) lets the caller persist it like any other
// run instead of discarding it.
func (e *AuditEngine) pipelineFailureOutcome(run model.Run, settings policy.Settings, message string) Outcome {
	run.Status = model.RunStatusFailed

	kind := model.KindPipeline
	findings := []model.ValidationFinding{{
		ID:            e.IDs.NewID(),
		RunID:         run.ID,
		ValidatorName: "Pipeline",
		RuleID:        "Pipeline",
		RuleVersion:   "v1",
		Status:        model.StatusFail,
		Kind:          &kind,
		Message:       fmt.Sprintf("engine: %s", message),
		Confidence:    1.0,
	}}

	riskResult := score.Compute(findings, settings)
	run.RiskScore = riskResult.Score

	return Outcome{Run: run, Findings: findings, Report: report.Build(run.ID, findings, riskResult)}
}

// RunCommand is the input to CreateRunAndAudit: a
// GenerateAndVerify request carrying everything needed to ask the
// connector for text and then audit it.
type RunCommand struct {
	Prompt         string
	ModelName      string
	UserID         string
	PolicyProfile  string
	OutputContract string
	ConnectorName  string
	ModelVersion   string
	ParametersJSON string
	PreviousHash   string
}

// VerifyText runs the engine in VerifyOnly mode over a caller-supplied
// string under the given, already-resolved policy settings, recording
// settings.Name as the run's policy profile.
func (e *AuditEngine) VerifyText(ctx context.Context, text string, settings policy.Settings, previousHash string, now time.Time) (Outcome, error) {
	return e.Audit(ctx, Request{
		Mode:          model.ModeVerifyOnly,
		InputText:     text,
		PolicyProfile: settings.Name,
		PreviousHash:  previousHash,
	}, settings, now)
}

// CreateRunAndAudit runs the engine in GenerateAndVerify mode: the
// connector produces the text, then the full pipeline audits it exactly
// as VerifyText would. A connector failure is itself reported as a
// Failed run rather than
// propagated as a bare error where a caller expects an Outcome to
// persist.
func (e *AuditEngine) CreateRunAndAudit(ctx context.Context, cmd RunCommand, settings policy.Settings, now time.Time) (Outcome, error) {
	return e.Audit(ctx, Request{
		Mode:          model.ModeGenerateAndVerify,
		Prompt:        cmd.Prompt,
		ModelName:     cmd.ModelName,
		PolicyProfile: settings.Name,
		PreviousHash:  cmd.PreviousHash,
	}, settings, now)
}
