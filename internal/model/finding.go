package model

// Status is the outcome of a single validator run against a single subject.
type Status string

const (
	StatusPass       Status = "Pass"
	StatusFail       Status = "Fail"
	StatusUnverified Status = "Unverified"
)

// FindingKind is the closed vocabulary labeling a finding's semantic
// category.
type FindingKind string

const (
	KindNotCheckable                FindingKind = "NotCheckable"
	KindMissingEvidence             FindingKind = "MissingEvidence"
	KindMultiScenario               FindingKind = "MultiScenario"
	KindContradiction               FindingKind = "Contradiction"
	KindIncompatibleReagentSolvent  FindingKind = "IncompatibleReagentSolvent"
	KindMissingSolvent              FindingKind = "MissingSolvent"
	KindMissingTemperature          FindingKind = "MissingTemperature"
	KindNotComparable               FindingKind = "NotComparable"
	KindMalformedChemicalToken      FindingKind = "MalformedChemicalToken"
	KindUnsupportedOrIncomplete     FindingKind = "UnsupportedOrIncompleteClaim"
	KindCitationTraceabilityWeak    FindingKind = "CitationTraceabilityWeak"
	KindMissingQuench               FindingKind = "MissingQuench"
	KindAmbiguousWorkupTransition    FindingKind = "AmbiguousWorkupTransition"
	KindEquivInconsistent            FindingKind = "EquivInconsistent"
	KindCrossStepConditionVariation  FindingKind = "CrossStepConditionVariation"
	KindPlaceholderOrMissingToken    FindingKind = "PlaceholderOrMissingToken"
	KindMwConsistent                 FindingKind = "MwConsistent"
	KindMwImplausible                FindingKind = "MwImplausible"
	KindYieldMassInconsistent        FindingKind = "YieldMassInconsistent"
	KindPipeline                     FindingKind = "Pipeline"
)

// ValidationFinding is the uniform output of every validator in the
// pipeline.
type ValidationFinding struct {
	ID            string
	RunID         string
	ClaimID       *string
	ValidatorName string
	RuleID        string
	RuleVersion   string
	Status        Status
	Message       string
	Confidence    float64
	Kind          *FindingKind
	// Payload is an opaque structured JSON string, consumer-parsed.
	Payload string
	// EvidenceRef optionally carries an "AnalyzedText:START-END" token used
	// by the enricher when ClaimID is absent.
	EvidenceRef string

	// Evidence fields, filled in by the EvidenceEnricher.
	EvidenceStartOffset *int
	EvidenceEndOffset   *int
	EvidenceStepIndex   *int
	EvidenceEntityKey   *string
	EvidenceSnippet     *string
}

// HasEvidence reports whether the enricher has already populated the
// evidence offset for this finding.
func (f ValidationFinding) HasEvidence() bool {
	return f.EvidenceStartOffset != nil
}
