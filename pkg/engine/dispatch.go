package engine

import "fmt"

// Skip messages are emitted verbatim; downstream reporters pattern-match the
// "1..0 # SKIP " prefix.
const skipShortCircuit = "1..0 # SKIP Short-circuited from previous tests"

func skipUndefined(verb, text string) string {
	return fmt.Sprintf("1..0 # SKIP No matching step definition for: %s %s", verb, text)
}

// dispatch resolves one step to a definition and runs it, producing a Result.
// The harness sees Step/StepDone for every step, executed or not.
func (e *Executor) dispatch(sc *StepContext, flag *ShortCircuit) *Result {
	sc.Harness.Step(sc)

	if flag.Armed() {
		res := &Result{Status: StatusPending, Output: skipShortCircuit}
		sc.Harness.StepDone(sc, res)
		return res
	}

	def, matches, ok := e.Registry.Find(sc.Verb, sc.Text)
	if !ok {
		res := &Result{Status: StatusUndefined, Output: skipUndefined(sc.Verb, sc.Text)}
		sc.Harness.StepDone(sc, res)
		return res
	}

	// Fresh, self-contained sink per invocation; the baseline assertion
	// guarantees a step that asserts nothing still reports passing.
	rep := NewReporter()
	sc.report = rep
	sc.Matches = matches
	rep.Pass(fmt.Sprintf("starting to execute step: %s %s", sc.Verb, sc.Text))

	if err := e.invoke(def, sc); err != nil {
		rep.Fail(err.Error())
	}

	res := &Result{Status: rep.Summarize().Status(), Output: rep.Output()}
	sc.Harness.StepDone(sc, res)
	return res
}

// invoke runs the matched action, converting panics into errors so a single
// step failure never aborts the run.
func (e *Executor) invoke(def *StepDefinition, sc *StepContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step action panicked: %v", r)
		}
	}()

	if def.stashAction != nil {
		if e.StashArg {
			return def.stashAction(sc, sc.Stash.Step)
		}
		return def.stashAction(sc, nil)
	}
	return def.action(sc)
}
