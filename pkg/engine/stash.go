package engine

// Stash is the three-tier mutable scratch space available to step actions.
// Feature lives for the whole feature run; Scenario lives for one outline row
// (shared between the background replay and the row's main body); Step is
// fresh per step and discarded after it.
type Stash struct {
	Feature  map[string]any
	Scenario map[string]any
	Step     map[string]any
}

// ShortCircuit is the per-outline-row skip flag. The background replay and
// the row's main body share one instance; each outline row gets a fresh one.
// Arming is monotonic within a row.
type ShortCircuit struct {
	failures int
}

// Arm records a non-passing step.
func (s *ShortCircuit) Arm() {
	s.failures++
}

// Armed reports whether any step in this row has failed to pass.
func (s *ShortCircuit) Armed() bool {
	return s.failures > 0
}
