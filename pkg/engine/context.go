package engine

import (
	"context"
	"fmt"

	"github.com/olmosoft/beret/pkg/feature"
)

// StepContext is the ephemeral per-step view handed to actions. It exists
// only for the duration of one dispatch.
type StepContext struct {
	Context  context.Context
	Feature  *feature.Feature
	Scenario *feature.Scenario
	Step     feature.Step

	// Verb and Text are the resolved values: verb after alias resolution,
	// text after placeholder substitution.
	Verb string
	Text string

	// Data is a per-use clone of the step's payload; actions may mutate it
	// without affecting other outline rows.
	Data any

	Stash *Stash

	// Matches holds the pattern's submatches against Text (index 0 is the
	// full match). Populated after a definition is resolved.
	Matches []string

	Harness Harness

	report *Reporter
}

// Pass records a passing assertion for this step.
func (sc *StepContext) Pass(format string, args ...any) {
	sc.report.Pass(fmt.Sprintf(format, args...))
}

// Fail records a failing assertion for this step.
func (sc *StepContext) Fail(format string, args ...any) {
	sc.report.Fail(fmt.Sprintf(format, args...))
}

// Todo records a pending assertion for this step.
func (sc *StepContext) Todo(format string, args ...any) {
	sc.report.Todo(fmt.Sprintf(format, args...))
}

// Diag records a diagnostic line for this step.
func (sc *StepContext) Diag(format string, args ...any) {
	sc.report.Diag(fmt.Sprintf(format, args...))
}

// Assert records a passing or failing assertion depending on cond.
func (sc *StepContext) Assert(cond bool, format string, args ...any) {
	if cond {
		sc.Pass(format, args...)
	} else {
		sc.Fail(format, args...)
	}
}

// cloneData deep-copies structured step payloads (maps and slices) so each
// outline row mutates its own copy. Scalars pass through.
func cloneData(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneData(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneData(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	default:
		return v
	}
}
