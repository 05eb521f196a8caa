// Package hashchain computes the run hash chain that lets an auditor
// verify a sequence of runs hasn't been tampered with after the fact.
package hashchain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Input is everything a run hash is computed over, in a fixed order:
// previousHash || engineVersion || mode || policyProfile ||
// canonicalPrompt || canonicalAnalyzedText || ISO-8601(createdUtc) ||
// modelName.
type Input struct {
	PreviousHash          string
	EngineVersion         string
	Mode                  string
	PolicyProfile         string
	CanonicalPrompt       string
	CanonicalAnalyzedText string
	CreatedUtc            time.Time
	ModelName             string
}

// GenesisHash is the previousHash value for the first run in a chain.
const GenesisHash = ""

// Compute returns the lowercase hex-encoded SHA-256 digest of in's fields,
// concatenated in the fixed order above with no separators.
func Compute(in Input) string {
	var b strings.Builder
	b.WriteString(in.PreviousHash)
	b.WriteString(in.EngineVersion)
	b.WriteString(in.Mode)
	b.WriteString(in.PolicyProfile)
	b.WriteString(in.CanonicalPrompt)
	b.WriteString(in.CanonicalAnalyzedText)
	b.WriteString(in.CreatedUtc.UTC().Format(time.RFC3339))
	b.WriteString(in.ModelName)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether run's CurrentHash matches the hash recomputed
// from in (e.g. when re-validating a stored chain).
func Verify(in Input, currentHash string) bool {
	return Compute(in) == currentHash
}
