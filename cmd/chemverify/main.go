// ChemVerify analyzes a chemistry procedure file and reports its risk of
// internal inconsistency.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chemverify/chemverify/internal/apperrors"
	"github.com/chemverify/chemverify/internal/connector"
	"github.com/chemverify/chemverify/internal/engine"
	"github.com/chemverify/chemverify/internal/hashchain"
	"github.com/chemverify/chemverify/internal/idgen"
	"github.com/chemverify/chemverify/internal/policy"
	"github.com/chemverify/chemverify/internal/sarif"
)

// Exit codes.
const (
	exitOK          = 0
	exitWarning     = 1
	exitRiskHigh    = 2
	exitEngineError = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	profile := fs.String("profile", policy.ProfileDefault, "policy profile name")
	format := fs.String("format", "json", "output format: json|sarif")
	out := fs.String("out", "", "output file (default: stdout)")
	maxInputChars := fs.Int("max-input-chars", 500_000, "maximum accepted analyzed-text length")

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: chemverify analyze <path> [--profile NAME] [--format json|sarif] [--out FILE] [--max-input-chars N]")
		return exitEngineError
	}
	if args[0] != "analyze" {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		return exitEngineError
	}
	if err := fs.Parse(args[1:]); err != nil {
		return exitEngineError
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "analyze requires a file path")
		return exitEngineError
	}
	path := fs.Arg(0)

	text, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, "file not found")
		} else {
			fmt.Fprintf(os.Stderr, "reading %s: %v\n", path, err)
		}
		return exitEngineError
	}

	if len(text) > *maxInputChars {
		fmt.Fprintf(os.Stderr, "input exceeds --max-input-chars (%d)\n", *maxInputChars)
		return exitEngineError
	}

	settings, err := policy.Load(*profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading profile %q: %v\n", *profile, err)
		return exitEngineError
	}
	settings.MaxInputChars = *maxInputChars

	eng := engine.New(idgen.UUIDGenerator{}, connector.NewStaticConnector(""))
	outcome, err := eng.VerifyText(context.Background(), string(text), settings, hashchain.GenesisHash, time.Now())
	if err != nil {
		log.Printf("chemverify: audit failed: %v", err)
		fmt.Fprintf(os.Stderr, "audit failed: %v\n", err)
		return exitEngineError
	}

	rendered, renderErr := render(*format, outcome)
	if renderErr != nil {
		fmt.Fprintf(os.Stderr, "rendering output: %v\n", renderErr)
		return exitEngineError
	}

	if *out == "" {
		fmt.Println(string(rendered))
	} else if err := os.WriteFile(*out, rendered, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", *out, err)
		return exitEngineError
	}

	return exitCodeFor(outcome.Report.Severity)
}

func render(format string, outcome engine.Outcome) ([]byte, error) {
	switch format {
	case "sarif":
		analyzedText := outcome.Run.AnalyzedText()
		log := sarif.Build(engine.EngineVersion, outcome.Findings, analyzedText)
		return sarif.Marshal(log)
	case "json", "":
		artifact, err := engine.BuildArtifact(outcome)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(struct {
			Artifact engine.Artifact `json:"artifact"`
			Summary  string          `json:"summary"`
		}{Artifact: artifact, Summary: outcome.Report.Summary()}, "", "  ")
	default:
		return nil, apperrors.NewValidationError("format", fmt.Sprintf("unsupported output format %q", format))
	}
}

// exitCodeFor maps the report's severity to the CLI's exit code: Low or no findings at all is a clean exit, Medium is a soft
// warning, High/Critical fails the build.
func exitCodeFor(severity string) int {
	switch severity {
	case "High", "Critical":
		return exitRiskHigh
	case "Medium":
		return exitWarning
	default:
		return exitOK
	}
}
