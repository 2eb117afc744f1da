package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/olmosoft/beret/pkg/engine"
	"github.com/olmosoft/beret/pkg/feature"
)

// TAP writes one TAP document per feature: a comment header, one test line
// per step, and a trailing plan. Step diagnostics (the Result output) are
// emitted as comment lines so downstream TAP consumers ignore them.
type TAP struct {
	engine.NopHarness
	w io.Writer
	n int
}

// NewTAP creates a TAP harness writing to w.
func NewTAP(w io.Writer) *TAP {
	return &TAP{w: w}
}

func (t *TAP) Feature(ft *feature.Feature) {
	t.n = 0
	fmt.Fprintf(t.w, "# Feature: %s\n", ft.Meta.Name)
}

func (t *TAP) FeatureDone(ft *feature.Feature) {
	fmt.Fprintf(t.w, "1..%d\n", t.n)
}

func (t *TAP) Scenario(sc *feature.Scenario, row feature.Row, _ int) {
	fmt.Fprintf(t.w, "# Scenario: %s\n", sc.Name)
}

func (t *TAP) Background(sc *feature.Scenario, row feature.Row, _ int) {
	fmt.Fprintf(t.w, "# Background:\n")
}

func (t *TAP) StepDone(sc *engine.StepContext, res *engine.Result) {
	t.n++
	line := sc.Verb + " " + sc.Text
	switch res.Status {
	case engine.StatusPassing:
		fmt.Fprintf(t.w, "ok %d - %s\n", t.n, line)
	case engine.StatusFailing:
		fmt.Fprintf(t.w, "not ok %d - %s\n", t.n, line)
	case engine.StatusPending:
		fmt.Fprintf(t.w, "ok %d - %s # SKIP short-circuited\n", t.n, line)
	case engine.StatusUndefined:
		fmt.Fprintf(t.w, "not ok %d - %s # TODO undefined step\n", t.n, line)
	}
	if res.Output != "" {
		for _, l := range strings.Split(res.Output, "\n") {
			fmt.Fprintf(t.w, "# %s\n", l)
		}
	}
}
