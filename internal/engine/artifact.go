package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/chemverify/chemverify/internal/canon"
)

// Artifact is the externally-visible summary of a completed audit: enough to confirm the run happened and compare it
// against the stored full record, without shipping every claim/finding.
type Artifact struct {
	EngineVersion string    `json:"engineVersion"`
	Mode          string    `json:"mode"`
	RunID         string    `json:"runId"`
	CurrentHash   string    `json:"currentHash"`
	CreatedUtc    time.Time `json:"createdUtc"`
	ModelName     string    `json:"modelName"`
	RiskScore     float64   `json:"riskScore"`
	ClaimCount    int       `json:"claimCount"`
	FindingCount  int       `json:"findingCount"`

	// ArtifactHash is not itself part of the hashed payload; it is the
	// SHA-256 digest of the stable JSON of the fields above.
	ArtifactHash string `json:"artifactHash,omitempty"`
}

// BuildArtifact renders an Outcome into its externally-visible Artifact,
// computing ArtifactHash as SHA-256 over the stable-JSON encoding of the
// remaining fields.
func BuildArtifact(out Outcome) (Artifact, error) {
	a := Artifact{
		EngineVersion: EngineVersion,
		Mode:          string(out.Run.Mode),
		RunID:         out.Run.ID,
		CurrentHash:   out.Run.CurrentHash,
		CreatedUtc:    out.Run.CreatedAt,
		ModelName:     out.Run.ModelName,
		RiskScore:     out.Run.RiskScore,
		ClaimCount:    len(out.Claims),
		FindingCount:  len(out.Findings),
	}

	stable, err := canon.StableJSON(a)
	if err != nil {
		return Artifact{}, fmt.Errorf("engine: computing artifact hash: %w", err)
	}
	sum := sha256.Sum256([]byte(stable))
	a.ArtifactHash = hex.EncodeToString(sum[:])
	return a, nil
}
