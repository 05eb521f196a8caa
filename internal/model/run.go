package model

import "time"

// RunMode selects whether the engine must first generate text via a
// ModelConnector, or whether supplied text is verified directly.
type RunMode string

const (
	ModeGenerateAndVerify RunMode = "GenerateAndVerify"
	ModeVerifyOnly        RunMode = "VerifyOnly"
)

// RunStatus tracks the lifecycle outcome of a run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "Completed"
	RunStatusFailed    RunStatus = "Failed"
)

// Run is the top-level audit record.
type Run struct {
	ID        string
	CreatedAt time.Time
	Mode      RunMode
	Status    RunStatus

	Prompt         *string
	GeneratedOutput *string
	InputText      *string

	PolicyProfile string

	PreviousHash string
	CurrentHash  string

	ModelName string
	RiskScore float64
}

// AnalyzedText returns the text the pipeline actually segments and
// validates: the generated output in generate mode, otherwise the supplied
// input text.
func (r Run) AnalyzedText() string {
	if r.Mode == ModeGenerateAndVerify && r.GeneratedOutput != nil {
		return *r.GeneratedOutput
	}
	if r.InputText != nil {
		return *r.InputText
	}
	return ""
}
