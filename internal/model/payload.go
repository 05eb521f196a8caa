package model

import "encoding/json"

// ClaimPayload is the structured view of ExtractedClaim.Payload. Only the
// fields relevant to a given claim kind are populated; marshaling omits
// the rest. Consumers must tolerate malformed or partial payloads — ParseClaimPayload never errors, it falls back to a zero value.
type ClaimPayload struct {
	ContextKey string `json:"contextKey,omitempty"`
	TimeAction string `json:"timeAction,omitempty"`
	Role       string `json:"role,omitempty"`
	Symbolic   string `json:"symbolic,omitempty"`
	Token      string `json:"token,omitempty"`
}

// MarshalClaimPayload renders p as a compact JSON string. Marshal of this
// fixed-field struct can never fail.
func MarshalClaimPayload(p ClaimPayload) string {
	raw, _ := json.Marshal(p)
	return string(raw)
}

// ParseClaimPayload parses an opaque claim payload string, swallowing any
// error and returning a zero-value ClaimPayload on failure.
func ParseClaimPayload(payload string) ClaimPayload {
	var p ClaimPayload
	if payload == "" {
		return p
	}
	_ = json.Unmarshal([]byte(payload), &p)
	return p
}

// FindingPayload is the structured view of ValidationFinding.Payload.
// Fields are populated per finding kind; e.g. MalformedChemicalToken
// carries Expected/Examples, Contradiction/MultiScenario carry ClaimIDs.
type FindingPayload struct {
	Expected string   `json:"expected,omitempty"`
	Examples []string `json:"examples,omitempty"`
	ClaimIDs []string `json:"claimIds,omitempty"`
}

// MarshalFindingPayload renders p as a compact JSON string.
func MarshalFindingPayload(p FindingPayload) string {
	raw, _ := json.Marshal(p)
	return string(raw)
}

// ParseFindingPayload parses an opaque finding payload, swallowing errors.
func ParseFindingPayload(payload string) FindingPayload {
	var p FindingPayload
	if payload == "" {
		return p
	}
	_ = json.Unmarshal([]byte(payload), &p)
	return p
}
