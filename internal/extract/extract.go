// Package extract implements the composed, fault-tolerant set of
// pattern-based claim extractors.
package extract

import (
	"fmt"

	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/model"
)

// Context carries everything an extractor needs: the owning run id, the
// analyzed text, its pre-segmented steps (for step-index lookup), and the
// id generator.
type Context struct {
	RunID string
	Text  string
	Steps []model.TextStep
	IDs   idgen.Generator
}

// Extractor produces an ordered list of position-anchored claims from the
// analyzed text. Implementations must be pure and stateless: no shared
// mutable state across calls.
type Extractor interface {
	Name() string
	Extract(ctx Context) ([]model.ExtractedClaim, error)
}

// Composite invokes every registered extractor, in registration order,
// and is fault-tolerant: a failing extractor contributes one Unverified
// diagnostic finding instead of aborting the run.
type Composite struct {
	extractors []Extractor
}

// NewComposite builds a composite extractor over the given set. Any
// instance of Composite itself is dropped from the set, guarding against
// dependency-injection recursion.
func NewComposite(extractors ...Extractor) *Composite {
	filtered := make([]Extractor, 0, len(extractors))
	for _, e := range extractors {
		if _, isSelf := e.(*Composite); isSelf {
			continue
		}
		filtered = append(filtered, e)
	}
	return &Composite{extractors: filtered}
}

// Extract runs every extractor in order and returns the merged claims
// plus one diagnostic finding per extractor that failed. Extract is not
// reentrant across goroutines, per the core's single-threaded-per-audit
// contract; each call starts from a clean diagnostic buffer.
func (c *Composite) Extract(ctx Context) ([]model.ExtractedClaim, []model.ValidationFinding) {
	var claims []model.ExtractedClaim
	var diagnostics []model.ValidationFinding

	for _, e := range c.extractors {
		extracted, err := c.invoke(e, ctx)
		if err != nil {
			diagnostics = append(diagnostics, model.ValidationFinding{
				ID:            ctx.IDs.NewID(),
				RunID:         ctx.RunID,
				ValidatorName: e.Name(),
				RuleID:        e.Name(),
				RuleVersion:   "v1",
				Status:        model.StatusUnverified,
				Message:       fmt.Sprintf("Extractor failed: %v", err),
				Confidence:    0,
			})
			continue
		}
		claims = append(claims, extracted...)
	}

	return claims, diagnostics
}

// invoke runs a single extractor, converting panics into errors so a bug
// in one extractor never aborts the whole pipeline.
func (c *Composite) invoke(e Extractor, ctx Context) (claims []model.ExtractedClaim, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.Extract(ctx)
}

// stepIndexFor looks up the step containing offset, if any.
func stepIndexFor(steps []model.TextStep, offset int) *int {
	for _, s := range steps {
		if s.Contains(offset) {
			idx := s.Index
			return &idx
		}
	}
	return nil
}
