package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/olmosoft/beret/pkg/engine"
	"github.com/olmosoft/beret/pkg/feature"
	"github.com/olmosoft/beret/pkg/harness"
	"github.com/olmosoft/beret/pkg/steps"
	"github.com/olmosoft/beret/pkg/tags"
)

var (
	runFormat    string
	runTags      string
	runArtifacts string
	runStashArg  bool
)

var runCmd = &cobra.Command{
	Use:   "run [feature.yaml...]",
	Short: "Execute feature files",
	Long: `Validate and execute one or more feature files against the built-in
step library.

Scenarios run in source order; scenario outlines run once per example row.
A failing step short-circuits the rest of its scenario (remaining steps
report as pending).

Exit codes:
  0 — all steps passed
  1 — at least one step failed or was undefined
  2 — a feature file failed validation (nothing ran)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "pretty", "Output format: pretty or tap")
	runCmd.Flags().StringVar(&runTags, "tags", "", `Tag expression selecting scenarios, e.g. 'has("fast") and not has("wip")'`)
	runCmd.Flags().StringVar(&runArtifacts, "artifacts", ".beret/runs", "Base directory for run artifacts (trace + manifest)")
	runCmd.Flags().BoolVar(&runStashArg, "stash-arg", false, "Pass the step stash as a second action argument")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Validate everything up front; a broken file means nothing runs.
	features := make([]*feature.Feature, 0, len(args))
	for _, path := range args {
		ft, errs := feature.ValidateFile(path)
		bad := false
		for _, e := range errs {
			if e.Severity == "warning" {
				fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
				continue
			}
			fmt.Fprintf(os.Stderr, "  ✗ %s: [%s] %s\n", path, e.Phase, e.Message)
			bad = true
		}
		if bad {
			os.Exit(2)
		}
		features = append(features, ft)
	}

	var filter *tags.Filter
	if runTags != "" {
		f, err := tags.Compile(runTags)
		if err != nil {
			return err
		}
		filter = f
	}

	reg := engine.NewRegistry()
	steps.Register(reg, steps.ExecExecutor{})

	// Run artifacts: trace.jsonl plus a run.yaml manifest.
	manifest := engine.NewRunManifest()
	manifest.Features = args
	runDir := filepath.Join(runArtifacts, manifest.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	trace, err := harness.NewTrace(filepath.Join(runDir, "trace.jsonl"))
	if err != nil {
		return err
	}
	defer trace.Close()

	summary := &harness.Summary{}
	observers := harness.Multi{summary, trace}
	switch runFormat {
	case "pretty":
		observers = append(observers, harness.NewPretty(os.Stdout))
	case "tap":
		observers = append(observers, harness.NewTAP(os.Stdout))
	default:
		return fmt.Errorf("unknown format %q: expected pretty or tap", runFormat)
	}

	exec := engine.NewExecutor(reg, observers)
	exec.StashArg = runStashArg

	ctx := context.Background()
	for _, ft := range features {
		if filter != nil {
			exec.Filter = filter.WithFeatureTags(ft.Meta.Tags).Apply
		}
		exec.RunFeature(ctx, ft)
	}

	manifest.Steps = summary.Steps
	if err := manifest.Write(filepath.Join(runDir, "run.yaml")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write run manifest: %v\n", err)
	} else {
		fmt.Printf("  Manifest: %s/run.yaml\n", runDir)
	}

	fmt.Printf("  %d steps: %d passing, %d failing, %d pending, %d undefined\n",
		summary.Steps.Total, summary.Steps.Passing, summary.Steps.Failing,
		summary.Steps.Pending, summary.Steps.Undefined)

	if summary.Failed() {
		os.Exit(1)
	}
	return nil
}
