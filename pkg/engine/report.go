package engine

import (
	"fmt"
	"strings"
)

// Reporter is the isolated assertion sink for one step's action invocation.
// Each dispatch opens a fresh Reporter, so assertions never bleed between
// steps. Output is TAP-style text carried on the step's Result.
type Reporter struct {
	entries []entry
}

type entry struct {
	kind string // pass, fail, todo, diag
	msg  string
}

// NewReporter creates an empty assertion sink.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Pass records a passing assertion.
func (r *Reporter) Pass(msg string) {
	r.entries = append(r.entries, entry{"pass", msg})
}

// Fail records a failing assertion.
func (r *Reporter) Fail(msg string) {
	r.entries = append(r.entries, entry{"fail", msg})
}

// Todo records a pending (not yet implemented) assertion.
func (r *Reporter) Todo(msg string) {
	r.entries = append(r.entries, entry{"todo", msg})
}

// Diag records a diagnostic line that is not an assertion.
func (r *Reporter) Diag(msg string) {
	r.entries = append(r.entries, entry{"diag", msg})
}

// Summary counts assertion outcomes by kind.
type Summary struct {
	Pass int
	Fail int
	Todo int
}

// Status reduces the counts to a verdict with precedence fail > todo > pass.
func (s Summary) Status() Status {
	switch {
	case s.Fail > 0:
		return StatusFailing
	case s.Todo > 0:
		return StatusPending
	default:
		return StatusPassing
	}
}

// Summarize folds the recorded outcomes into counts.
func (r *Reporter) Summarize() Summary {
	var s Summary
	for _, e := range r.entries {
		switch e.kind {
		case "pass":
			s.Pass++
		case "fail":
			s.Fail++
		case "todo":
			s.Todo++
		}
	}
	return s
}

// Output renders the recorded outcomes as TAP-style text: a plan line
// followed by one line per assertion. Diagnostics do not consume numbers.
func (r *Reporter) Output() string {
	var b strings.Builder
	n := 0
	for _, e := range r.entries {
		if e.kind != "diag" {
			n++
		}
	}
	fmt.Fprintf(&b, "1..%d", n)
	i := 0
	for _, e := range r.entries {
		switch e.kind {
		case "pass":
			i++
			fmt.Fprintf(&b, "\nok %d - %s", i, e.msg)
		case "fail":
			i++
			fmt.Fprintf(&b, "\nnot ok %d - %s", i, e.msg)
		case "todo":
			i++
			fmt.Fprintf(&b, "\nok %d - %s # TODO", i, e.msg)
		case "diag":
			fmt.Fprintf(&b, "\n# %s", e.msg)
		}
	}
	return b.String()
}
