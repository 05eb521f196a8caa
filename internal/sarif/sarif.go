// Package sarif renders a completed audit's findings as a SARIF 2.1.0 log
//. It is a pure formatter: it never touches
// the network or a file, and takes the analyzed text only to compute
// line/column locations.
package sarif

import (
	"encoding/json"
	"strings"

	"github.com/chemverify/chemverify/internal/model"
)

const schemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
const version = "2.1.0"

// DriverName is the SARIF tool.driver.name emitted for every run.
const DriverName = "ChemVerify"

// Log is the root SARIF document.
type Log struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run is a single SARIF run, one per audit invocation.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis engine and its rule catalogue.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver names the engine and lists the distinct rule ids of the findings
// passed to Build, in first-seen order.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// Rule is a single SARIF reportingDescriptor.
type Rule struct {
	ID string `json:"id"`
}

// Result is one non-Pass finding rendered as a SARIF result.
type Result struct {
	RuleID  string  `json:"ruleId"`
	Level   string  `json:"level"`
	Message Message `json:"message"`
	// Locations is omitted entirely when the finding has no evidence
	// offsets at all (no enrichable claim/evidenceRef).
	Locations []Location `json:"locations,omitempty"`
}

// Message wraps the finding's human-readable text.
type Message struct {
	Text string `json:"text"`
}

// Location is a single SARIF physicalLocation.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation carries either a line/column region (when analyzed
// text is available) or a raw character offset/length region.
type PhysicalLocation struct {
	Region Region `json:"region"`
}

// Region is a SARIF region: line/column when analyzedText is supplied to
// Build, charOffset/charLength otherwise, plus an optional snippet.
type Region struct {
	StartLine   int     `json:"startLine,omitempty"`
	StartColumn int     `json:"startColumn,omitempty"`
	CharOffset  int     `json:"charOffset,omitempty"`
	CharLength  int     `json:"charLength,omitempty"`
	Snippet     *Artifact `json:"snippet,omitempty"`
}

// Artifact is a SARIF artifactContent, used here only for snippet text.
type Artifact struct {
	Text string `json:"text"`
}

// Build renders findings (already evidence-enriched) into a SARIF log.
// analyzedText, if non-empty, lets Build compute line/column positions;
// otherwise results carry a raw character offset/length region.
func Build(engineVersion string, findings []model.ValidationFinding, analyzedText string) Log {
	rules := ruleCatalogue(findings)

	var results []Result
	for _, f := range findings {
		if f.Status == model.StatusPass {
			continue
		}
		results = append(results, toResult(f, analyzedText))
	}

	return Log{
		Schema:  schemaURI,
		Version: version,
		Runs: []Run{{
			Tool: Tool{Driver: Driver{
				Name:    DriverName,
				Version: engineVersion,
				Rules:   rules,
			}},
			Results: results,
		}},
	}
}

// Marshal renders l as indented JSON.
func Marshal(l Log) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

func ruleCatalogue(findings []model.ValidationFinding) []Rule {
	seen := make(map[string]bool)
	var rules []Rule
	for _, f := range findings {
		if seen[f.RuleID] {
			continue
		}
		seen[f.RuleID] = true
		rules = append(rules, Rule{ID: f.RuleID})
	}
	return rules
}

func toResult(f model.ValidationFinding, analyzedText string) Result {
	res := Result{
		RuleID:  f.RuleID,
		Level:   levelFor(f),
		Message: Message{Text: f.Message},
	}

	if f.EvidenceStartOffset == nil || f.EvidenceEndOffset == nil {
		return res
	}

	region := Region{}
	if analyzedText != "" {
		line, col := lineColumn(analyzedText, *f.EvidenceStartOffset)
		region.StartLine = line
		region.StartColumn = col
	} else {
		region.CharOffset = *f.EvidenceStartOffset
		region.CharLength = *f.EvidenceEndOffset - *f.EvidenceStartOffset
	}
	if f.EvidenceSnippet != nil && *f.EvidenceSnippet != "" {
		region.Snippet = &Artifact{Text: *f.EvidenceSnippet}
	}

	res.Locations = []Location{{PhysicalLocation: PhysicalLocation{Region: region}}}
	return res
}

// levelFor derives the SARIF level from the finding's status, since the
// catalogue carries no per-validator severity override in this build
// (Fail -> error, Unverified -> warning, else -> note).
func levelFor(f model.ValidationFinding) string {
	switch f.Status {
	case model.StatusFail:
		return "error"
	case model.StatusUnverified:
		return "warning"
	default:
		return "note"
	}
}

// lineColumn converts a 0-based char offset into a 1-based (line, column)
// pair: line is the number of LFs strictly before offset, plus 1.
func lineColumn(text string, offset int) (line, column int) {
	if offset > len(text) {
		offset = len(text)
	}
	prefix := text[:offset]
	line = strings.Count(prefix, "\n") + 1
	lastNL := strings.LastIndexByte(prefix, '\n')
	column = len(prefix) - lastNL
	return line, column
}
