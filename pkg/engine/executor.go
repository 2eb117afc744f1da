package engine

import (
	"context"

	"github.com/mattn/go-runewidth"

	"github.com/olmosoft/beret/pkg/feature"
)

// Executor drives feature execution: scenario ordering, outline expansion,
// background replay, stash lifetimes, and short-circuit propagation. Scenarios
// and steps run strictly sequentially in source order.
type Executor struct {
	Registry *Registry
	Harness  Harness

	// Filter, when set, narrows the feature's scenario list before execution
	// (tag filtering; the executor imposes no further semantics on it).
	Filter func([]*feature.Scenario) []*feature.Scenario

	// StashArg enables the compatibility mode where two-argument actions
	// receive the step-scoped stash directly.
	StashArg bool
}

// NewExecutor creates an executor over the given registry, reporting to h.
// A nil harness discards all events.
func NewExecutor(reg *Registry, h Harness) *Executor {
	if h == nil {
		h = NopHarness{}
	}
	return &Executor{Registry: reg, Harness: h}
}

// RunFeature executes all (filtered) scenarios of a feature, sharing one
// feature stash across them. Everything observable flows through the harness.
func (e *Executor) RunFeature(ctx context.Context, ft *feature.Feature) {
	e.Harness.Feature(ft)

	scenarios := ft.Scenarios
	if e.Filter != nil {
		scenarios = e.Filter(scenarios)
	}

	featureStash := make(map[string]any)
	for _, sc := range scenarios {
		e.runScenario(ctx, ft, sc, featureStash, ft.Background, nil, nil)
	}

	e.Harness.FeatureDone(ft)
}

// runScenario executes one scenario (or background, flagged on the scenario
// itself). The background replay is the same code path, called recursively
// with the row's scenario stash and short-circuit flag threaded in so stash
// writes are visible to the body and background failures skip the body's
// steps.
func (e *Executor) runScenario(
	ctx context.Context,
	ft *feature.Feature,
	sc *feature.Scenario,
	featureStash map[string]any,
	background *feature.Scenario,
	incomingScenarioStash map[string]any,
	incomingFlag *ShortCircuit,
) {
	isBackground := sc.IsBackground

	flag := incomingFlag
	if flag == nil {
		flag = &ShortCircuit{}
	}

	// Outlines with zero rows behave as one empty row; backgrounds and plain
	// scenarios always execute exactly once.
	datasets := sc.Examples
	if len(datasets) == 0 {
		datasets = []feature.Row{{}}
	}

	longest := longestStepLine(sc, background)

	for _, row := range datasets {
		scenarioStash := incomingScenarioStash
		if scenarioStash == nil {
			scenarioStash = make(map[string]any)
		}

		if isBackground {
			e.Harness.Background(sc, row, longest)
		} else {
			e.Harness.Scenario(sc, row, longest)
		}

		if background != nil {
			e.runScenario(ctx, ft, background, featureStash, nil, scenarioStash, flag)
		}

		for _, st := range sc.Steps {
			res := e.runStep(ctx, ft, sc, st, row, featureStash, scenarioStash, flag)
			if res.Status != StatusPassing {
				flag.Arm()
			}
		}

		if isBackground {
			e.Harness.BackgroundDone(sc, row)
		} else {
			e.Harness.ScenarioDone(sc, row)
		}

		// Remaining outline rows start over with a fresh flag and stash,
		// unless they were threaded in for a background recursion.
		if incomingFlag == nil {
			flag = &ShortCircuit{}
		}
	}
}

// runStep substitutes placeholders, builds the step context, and dispatches.
// An unresolved placeholder surfaces as a failing Result (malformed outline
// data fails the row, not the run) and still reaches the harness.
func (e *Executor) runStep(
	ctx context.Context,
	ft *feature.Feature,
	sc *feature.Scenario,
	st feature.Step,
	row feature.Row,
	featureStash, scenarioStash map[string]any,
	flag *ShortCircuit,
) *Result {
	text, err := Substitute(st.Text, row)
	if err != nil {
		stepCtx := e.newStepContext(ctx, ft, sc, st, st.Text, featureStash, scenarioStash)
		stepCtx.Harness.Step(stepCtx)
		stepCtx.report.Fail(err.Error())
		res := &Result{Status: stepCtx.report.Summarize().Status(), Output: stepCtx.report.Output()}
		stepCtx.Harness.StepDone(stepCtx, res)
		return res
	}

	stepCtx := e.newStepContext(ctx, ft, sc, st, text, featureStash, scenarioStash)
	return e.dispatch(stepCtx, flag)
}

// newStepContext builds the ephemeral per-step context: fresh step stash,
// cloned step payload, and the three-tier stash structure.
func (e *Executor) newStepContext(
	ctx context.Context,
	ft *feature.Feature,
	sc *feature.Scenario,
	st feature.Step,
	text string,
	featureStash, scenarioStash map[string]any,
) *StepContext {
	return &StepContext{
		Context:  ctx,
		Feature:  ft,
		Scenario: sc,
		Step:     st,
		Verb:     st.Verb,
		Text:     text,
		Data:     cloneData(st.Data),
		Stash: &Stash{
			Feature:  featureStash,
			Scenario: scenarioStash,
			Step:     make(map[string]any),
		},
		Harness: e.Harness,
		report:  NewReporter(),
	}
}

// longestStepLine returns the display width of the widest "verb text" line
// across the scenario and its background, for harness output alignment.
func longestStepLine(sc *feature.Scenario, background *feature.Scenario) int {
	longest := 0
	for _, block := range []*feature.Scenario{background, sc} {
		if block == nil {
			continue
		}
		for _, st := range block.Steps {
			if w := runewidth.StringWidth(st.Verb + " " + st.Text); w > longest {
				longest = w
			}
		}
	}
	return longest
}
