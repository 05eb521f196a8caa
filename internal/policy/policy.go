// Package policy loads and merges the engine's policy profiles: the set of
// validators to run, severity-dampening toggles and report-shaping
// options. Builtin profiles are Go overlays and LoadYAML accepts a YAML
// overlay; both are layered over the defaults with dario.cat/mergo.
package policy

import (
	"fmt"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Settings is the fully-resolved policy used by a single audit run.
type Settings struct {
	Name string `yaml:"name"`

	// IncludeValidators, when non-empty, restricts the pipeline to exactly
	// these validator names. ExcludeValidators removes names from
	// whichever set is otherwise active. Include is applied before
	// Exclude.
	IncludeValidators []string `yaml:"includeValidators"`
	ExcludeValidators []string `yaml:"excludeValidators"`

	// DampenDoiFailSeverity replaces a DoiFormatValidator Fail's general
	// risk-score weight of 1.0 with 0.15.
	DampenDoiFailSeverity bool `yaml:"dampenDoiFailSeverity"`

	// EvidenceSnippetRadius controls how many characters the evidence
	// enricher captures on each side of a finding's anchor offset.
	EvidenceSnippetRadius int `yaml:"evidenceSnippetRadius"`

	// MaxInputChars bounds the analyzed text accepted by a run; requests
	// exceeding it are rejected before the pipeline runs.
	MaxInputChars int `yaml:"maxInputChars"`
}

// defaultSettings is the baseline every named profile merges over.
func defaultSettings() Settings {
	return Settings{
		Name:                  "Default",
		EvidenceSnippetRadius: 48,
		MaxInputChars:         200_000,
	}
}

// Builtin profile names.
const (
	ProfileDefault           = "Default"
	ProfileStrictChemistryV0 = "StrictChemistryV0"
	ProfileScientificTextV0  = "ScientificTextV0"
)

// builtinOverlays holds the non-default fields each builtin profile layers
// on top of defaultSettings via mergo.
var builtinOverlays = map[string]Settings{
	ProfileStrictChemistryV0: {
		Name:                  ProfileStrictChemistryV0,
		DampenDoiFailSeverity: false,
	},
	ProfileScientificTextV0: {
		Name:                  ProfileScientificTextV0,
		ExcludeValidators:     []string{"IncompatibleReagentSolventValidator", "DryInertMismatchValidator"},
		DampenDoiFailSeverity: true,
	},
}

// Load resolves a named builtin profile. An empty name resolves to Default.
func Load(name string) (Settings, error) {
	if name == "" {
		name = ProfileDefault
	}

	base := defaultSettings()
	if name == ProfileDefault {
		return base, nil
	}

	overlay, ok := builtinOverlays[name]
	if !ok {
		return Settings{}, fmt.Errorf("policy: unknown profile %q", name)
	}
	if err := mergo.Merge(&base, overlay, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return Settings{}, fmt.Errorf("policy: merging profile %q: %w", name, err)
	}
	base.Name = overlay.Name
	return base, nil
}

// LoadYAML parses a YAML document as a profile overlay on top of Default.
// The HTTP and CLI front ends resolve profiles by builtin name through
// Load and do not call it.
func LoadYAML(raw []byte) (Settings, error) {
	base := defaultSettings()
	var overlay Settings
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return Settings{}, fmt.Errorf("policy: parsing profile yaml: %w", err)
	}
	if err := mergo.Merge(&base, overlay, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return Settings{}, fmt.Errorf("policy: merging profile yaml: %w", err)
	}
	if overlay.Name != "" {
		base.Name = overlay.Name
	}
	return base, nil
}

// Allows reports whether the named validator should run under these
// settings: Include (if non-empty) gates membership, then Exclude removes.
func (s Settings) Allows(validatorName string) bool {
	if len(s.IncludeValidators) > 0 && !contains(s.IncludeValidators, validatorName) {
		return false
	}
	if contains(s.ExcludeValidators, validatorName) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
