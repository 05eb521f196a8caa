package model

// StepRole classifies a text step relative to the surrounding document.
type StepRole string

const (
	RoleProcedure       StepRole = "Procedure"
	RoleNarrative       StepRole = "Narrative"
	RoleQuestionOrPrompt StepRole = "QuestionOrPrompt"
	RoleReference       StepRole = "Reference"
	RoleHeader          StepRole = "Header"
)

// TextStep is a half-open, non-overlapping character span produced by the
// segmenter, optionally labeled with a role.
type TextStep struct {
	Index       int
	StartOffset int
	EndOffset   int
	Role        StepRole
}

// Span returns the step's character span.
func (s TextStep) Span() Span {
	return Span{Start: s.StartOffset, End: s.EndOffset}
}

// Contains reports whether offset falls inside this step's half-open span.
func (s TextStep) Contains(offset int) bool {
	return offset >= s.StartOffset && offset < s.EndOffset
}
