package harness

import (
	"github.com/olmosoft/beret/pkg/engine"
)

// Summary accumulates step verdict counts across a run.
type Summary struct {
	engine.NopHarness
	Steps engine.StepsSummary
}

func (s *Summary) StepDone(_ *engine.StepContext, res *engine.Result) {
	s.Steps.Record(res.Status)
}

// Failed reports whether any step failed or was undefined.
func (s *Summary) Failed() bool {
	return s.Steps.Failing > 0 || s.Steps.Undefined > 0
}
