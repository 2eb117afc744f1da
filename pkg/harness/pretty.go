package harness

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/olmosoft/beret/pkg/engine"
	"github.com/olmosoft/beret/pkg/feature"
)

// Step status glyphs — convey meaning without relying on color alone.
const (
	glyphPassing   = "✓"
	glyphFailing   = "✗"
	glyphPending   = "⏭"
	glyphUndefined = "?"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
)

var (
	featureStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	scenarioStyle = lipgloss.NewStyle().Bold(true)

	stepPassing = lipgloss.NewStyle().Foreground(colorGreen)

	stepFailing = lipgloss.NewStyle().Foreground(colorRed)

	stepPending = lipgloss.NewStyle().Foreground(colorYellow)

	stepUndefined = lipgloss.NewStyle().Foreground(colorDim)
)

// Pretty is a colorized console reporter. Step lines are padded to the
// scenario's longest step line so status markers align.
type Pretty struct {
	engine.NopHarness
	w       io.Writer
	longest int
}

// NewPretty creates a console harness writing to w.
func NewPretty(w io.Writer) *Pretty {
	return &Pretty{w: w}
}

func (p *Pretty) Feature(ft *feature.Feature) {
	fmt.Fprintln(p.w, featureStyle.Render("Feature: "+ft.Meta.Name))
}

func (p *Pretty) FeatureDone(ft *feature.Feature) {
	fmt.Fprintln(p.w)
}

func (p *Pretty) Scenario(sc *feature.Scenario, row feature.Row, longest int) {
	p.longest = longest
	name := sc.Name
	if len(row) > 0 {
		name += " " + formatRow(row)
	}
	fmt.Fprintln(p.w, "  "+scenarioStyle.Render("Scenario: "+name))
}

func (p *Pretty) Background(sc *feature.Scenario, row feature.Row, longest int) {
	p.longest = longest
	fmt.Fprintln(p.w, "  "+scenarioStyle.Render("Background:"))
}

func (p *Pretty) StepDone(sc *engine.StepContext, res *engine.Result) {
	line := sc.Verb + " " + sc.Text
	pad := p.longest - runewidth.StringWidth(line)
	if pad < 0 {
		pad = 0
	}
	var style lipgloss.Style
	var glyph string
	switch res.Status {
	case engine.StatusPassing:
		style, glyph = stepPassing, glyphPassing
	case engine.StatusFailing:
		style, glyph = stepFailing, glyphFailing
	case engine.StatusPending:
		style, glyph = stepPending, glyphPending
	case engine.StatusUndefined:
		style, glyph = stepUndefined, glyphUndefined
	}
	fmt.Fprintf(p.w, "    %s %s\n",
		style.Render(glyph+" "+line+strings.Repeat(" ", pad)),
		stepUndefined.Render(string(res.Status)))
}

// formatRow renders an example row inline, e.g. [count=2 name=a].
func formatRow(row feature.Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + row[k]
	}
	return "[" + strings.Join(parts, " ") + "]"
}
