package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olmosoft/beret/pkg/feature"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beret",
	Short: "Behavior-driven feature runner",
	Long:  "beret — runs YAML feature files against a step registry, with outline expansion, backgrounds, and TAP or console output.",
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [feature.yaml...]",
	Short: "Validate feature YAML files against the schema",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		ft, errs := feature.ValidateFile(path)
		warnings := 0
		errors := 0
		for _, e := range errs {
			if e.Severity == "warning" {
				warnings++
				fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			} else {
				errors++
				fmt.Fprintf(os.Stderr, "  ✗ [%s] %s\n", e.Phase, e.Message)
			}
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", e.Path)
			}
		}
		if errors > 0 {
			fmt.Fprintf(os.Stderr, "%s: %d error(s)\n", path, errors)
			failed++
			continue
		}
		fmt.Printf("✓ %s is valid (%d scenarios)\n", ft.Meta.Name, len(ft.Scenarios))
	}
	if failed > 0 {
		return fmt.Errorf("validation failed for %d file(s)", failed)
	}
	return nil
}

// --- schema export ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export JSON Schema to stdout",
	RunE:  runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	data, err := feature.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	var out json.RawMessage = data
	formatted, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(string(formatted))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("beret %s (build: %s)\n", version, commit)
	},
}

func init() {
	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
