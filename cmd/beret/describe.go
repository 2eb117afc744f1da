package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/olmosoft/beret/pkg/feature"
)

var describeCmd = &cobra.Command{
	Use:   "describe [feature.yaml]",
	Short: "Render a human-readable summary of a feature file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ft, err := feature.LoadFile(args[0])
	if err != nil {
		return err
	}

	md := featureMarkdown(ft)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to raw markdown when no terminal styling is available.
		fmt.Print(md)
		return nil
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

// featureMarkdown formats a feature as a markdown document.
func featureMarkdown(ft *feature.Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Feature: %s\n\n", ft.Meta.Name)
	if ft.Meta.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", ft.Meta.Description)
	}
	if len(ft.Meta.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: `%s`\n\n", strings.Join(ft.Meta.Tags, "` `"))
	}

	if ft.Background != nil {
		b.WriteString("## Background\n\n")
		writeSteps(&b, ft.Background)
	}

	for _, sc := range ft.Scenarios {
		fmt.Fprintf(&b, "## Scenario: %s\n\n", sc.Name)
		if len(sc.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: `%s`\n\n", strings.Join(sc.Tags, "` `"))
		}
		writeSteps(&b, sc)
		if len(sc.Examples) > 0 {
			fmt.Fprintf(&b, "Runs %d example row(s).\n\n", len(sc.Examples))
		}
	}
	return b.String()
}

func writeSteps(b *strings.Builder, sc *feature.Scenario) {
	for _, st := range sc.Steps {
		fmt.Fprintf(b, "- **%s** %s\n", st.Verb, st.Text)
	}
	b.WriteString("\n")
}
