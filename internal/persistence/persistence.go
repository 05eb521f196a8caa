// Package persistence stores completed runs, their claims and findings.
// The production Store talks to PostgreSQL directly over pgx/v5 and applies
// its schema with golang-migrate; ent/schema documents that same schema
// declaratively (see DESIGN.md for why the store doesn't call through a
// codegen'd ent client).
package persistence

import (
	"context"

	"github.com/chemverify/chemverify/internal/model"
)

// Store persists completed runs and retrieves them by id or hash-chain
// position.
type Store interface {
	SaveRun(ctx context.Context, run model.Run, claims []model.ExtractedClaim, findings []model.ValidationFinding) error
	GetRun(ctx context.Context, id string) (model.Run, []model.ExtractedClaim, []model.ValidationFinding, error)
	LatestHash(ctx context.Context) (string, error)
}

// ErrNotFound is returned by GetRun when no run with the given id exists.
type ErrNotFound struct{ ID string }

func (e ErrNotFound) Error() string { return "persistence: run not found: " + e.ID }
