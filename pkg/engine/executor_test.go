package engine

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/olmosoft/beret/pkg/feature"
)

// recordingHarness captures the full event stream for assertions.
type recordingHarness struct {
	NopHarness
	events   []string
	statuses []Status
	outputs  []string
}

func (h *recordingHarness) Scenario(sc *feature.Scenario, row feature.Row, _ int) {
	h.events = append(h.events, "scenario:"+sc.Name)
}

func (h *recordingHarness) ScenarioDone(sc *feature.Scenario, row feature.Row) {
	h.events = append(h.events, "scenario_done:"+sc.Name)
}

func (h *recordingHarness) Background(sc *feature.Scenario, row feature.Row, _ int) {
	h.events = append(h.events, "background")
}

func (h *recordingHarness) BackgroundDone(sc *feature.Scenario, row feature.Row) {
	h.events = append(h.events, "background_done")
}

func (h *recordingHarness) Step(sc *StepContext) {
	h.events = append(h.events, "step:"+sc.Text)
}

func (h *recordingHarness) StepDone(sc *StepContext, res *Result) {
	h.events = append(h.events, "step_done:"+sc.Text)
	h.statuses = append(h.statuses, res.Status)
	h.outputs = append(h.outputs, res.Output)
}

func singleScenario(steps ...feature.Step) *feature.Feature {
	return &feature.Feature{
		APIVersion: "feature/v0",
		Meta:       feature.Meta{Name: "test feature"},
		Scenarios:  []*feature.Scenario{{Name: "only", Steps: steps}},
	}
}

func st(verb, text string) feature.Step {
	return feature.Step{Verb: verb, Text: text}
}

// TestRunFeaturePassingAndUndefined verifies a defined step passes, an
// undefined step reports undefined, and both reach the harness.
func TestRunFeaturePassingAndUndefined(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", "a thing", func(sc *StepContext) error { return nil })

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), singleScenario(
		st("given", "a thing"),
		st("when", "nothing matches this"),
	))

	if len(h.statuses) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(h.statuses))
	}
	if h.statuses[0] != StatusPassing || h.statuses[1] != StatusUndefined {
		t.Errorf("statuses = %v, want [passing undefined]", h.statuses)
	}
	want := "1..0 # SKIP No matching step definition for: when nothing matches this"
	if h.outputs[1] != want {
		t.Errorf("undefined output = %q, want %q", h.outputs[1], want)
	}
}

// TestShortCircuitAfterFailure verifies a failing step arms the scenario's
// short-circuit: later steps report pending with the verbatim skip plan, and
// still fire harness callbacks.
func TestShortCircuitAfterFailure(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", "works", func(sc *StepContext) error { return nil })
	reg.MustAdd("when", "breaks", func(sc *StepContext) error {
		sc.Fail("broken")
		return nil
	})
	reg.MustAdd("then", "never runs", func(sc *StepContext) error {
		t.Error("short-circuited step action must not run")
		return nil
	})

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), singleScenario(
		st("given", "works"),
		st("when", "breaks"),
		st("then", "never runs"),
	))

	want := []Status{StatusPassing, StatusFailing, StatusPending}
	for i, w := range want {
		if h.statuses[i] != w {
			t.Errorf("step %d status = %s, want %s", i, h.statuses[i], w)
		}
	}
	if h.outputs[2] != "1..0 # SKIP Short-circuited from previous tests" {
		t.Errorf("pending output = %q", h.outputs[2])
	}
	// Step/StepDone fire even for the skipped step.
	joined := strings.Join(h.events, ",")
	if !strings.Contains(joined, "step:never runs") || !strings.Contains(joined, "step_done:never runs") {
		t.Errorf("skipped step missing from event stream: %v", h.events)
	}
}

// TestUndefinedStepArmsShortCircuit verifies an undefined step also skips the
// rest of the scenario.
func TestUndefinedStepArmsShortCircuit(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("then", "defined", func(sc *StepContext) error { return nil })

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), singleScenario(
		st("when", "no such step"),
		st("then", "defined"),
	))

	if h.statuses[0] != StatusUndefined || h.statuses[1] != StatusPending {
		t.Errorf("statuses = %v, want [undefined pending]", h.statuses)
	}
}

// TestActionErrorFails verifies a returned error records one failing
// assertion with the error text.
func TestActionErrorFails(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("when", "it errors", func(sc *StepContext) error {
		return &UnresolvedPlaceholderError{Name: "x", Text: "y"}
	})

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), singleScenario(st("when", "it errors")))

	if h.statuses[0] != StatusFailing {
		t.Errorf("status = %s, want failing", h.statuses[0])
	}
	if !strings.Contains(h.outputs[0], "unresolved placeholder") {
		t.Errorf("output missing error text: %q", h.outputs[0])
	}
}

// TestActionPanicRecovered verifies a panicking action fails its own step
// without aborting the run.
func TestActionPanicRecovered(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("when", "it panics", func(sc *StepContext) error { panic("kaboom") })
	reg.MustAdd("then", "ok", func(sc *StepContext) error { return nil })

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	ft := &feature.Feature{
		Meta: feature.Meta{Name: "f"},
		Scenarios: []*feature.Scenario{
			{Name: "a", Steps: []feature.Step{st("when", "it panics")}},
			{Name: "b", Steps: []feature.Step{st("then", "ok")}},
		},
	}
	exec.RunFeature(context.Background(), ft)

	if h.statuses[0] != StatusFailing {
		t.Errorf("panicking step status = %s, want failing", h.statuses[0])
	}
	if !strings.Contains(h.outputs[0], "step action panicked: kaboom") {
		t.Errorf("output = %q", h.outputs[0])
	}
	// The next scenario starts clean.
	if h.statuses[1] != StatusPassing {
		t.Errorf("following scenario status = %s, want passing", h.statuses[1])
	}
}

// TestBaselineAssertion verifies a step that asserts nothing still passes,
// with the baseline line in its output.
func TestBaselineAssertion(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", "noop", func(sc *StepContext) error { return nil })

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), singleScenario(st("given", "noop")))

	if h.statuses[0] != StatusPassing {
		t.Fatalf("status = %s, want passing", h.statuses[0])
	}
	want := "1..1\nok 1 - starting to execute step: given noop"
	if h.outputs[0] != want {
		t.Errorf("output = %q, want %q", h.outputs[0], want)
	}
}

// TestOutlineExpansion verifies each example row runs the scenario once with
// its substituted values, and rows are isolated: a failure in one row does
// not short-circuit the next.
func TestOutlineExpansion(t *testing.T) {
	reg := NewRegistry()
	var seen []string
	reg.MustAdd("when", regexp.MustCompile(`^I eat (\w+)$`), func(sc *StepContext) error {
		seen = append(seen, sc.Matches[1])
		sc.Assert(sc.Matches[1] != "worms", "edible")
		return nil
	})
	reg.MustAdd("then", "I am satisfied", func(sc *StepContext) error { return nil })

	ft := singleScenario(
		st("when", "I eat <food>"),
		st("then", "I am satisfied"),
	)
	ft.Scenarios[0].Examples = []feature.Row{
		{"food": "worms"},
		{"food": "apples"},
	}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), ft)

	if len(seen) != 2 || seen[0] != "worms" || seen[1] != "apples" {
		t.Errorf("substituted values = %v", seen)
	}
	want := []Status{StatusFailing, StatusPending, StatusPassing, StatusPassing}
	if len(h.statuses) != len(want) {
		t.Fatalf("expected %d step results, got %d", len(want), len(h.statuses))
	}
	for i, w := range want {
		if h.statuses[i] != w {
			t.Errorf("step %d status = %s, want %s", i, h.statuses[i], w)
		}
	}
}

// TestUnresolvedPlaceholderFailsRow verifies a row missing a placeholder value
// fails that step (and skips the rest of the row) instead of running with the
// literal token.
func TestUnresolvedPlaceholderFailsRow(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("when", regexp.MustCompile(`.*`), func(sc *StepContext) error {
		t.Errorf("action ran with text %q despite unresolved placeholder", sc.Text)
		return nil
	})

	ft := singleScenario(
		st("when", "I eat <count> apples"),
		st("when", "anything"),
	)
	ft.Scenarios[0].Examples = []feature.Row{{"kind": "fuji"}}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), ft)

	if h.statuses[0] != StatusFailing {
		t.Errorf("status = %s, want failing", h.statuses[0])
	}
	if !strings.Contains(h.outputs[0], "unresolved placeholder <count>") {
		t.Errorf("output = %q", h.outputs[0])
	}
	if h.statuses[1] != StatusPending {
		t.Errorf("following step status = %s, want pending", h.statuses[1])
	}
}

// TestBackgroundRunsBeforeEachScenario verifies the background replays before
// every scenario, shares the scenario stash with the body, and a background
// failure short-circuits the body's steps.
func TestBackgroundRunsBeforeEachScenario(t *testing.T) {
	reg := NewRegistry()
	runs := 0
	reg.MustAdd("given", "setup", func(sc *StepContext) error {
		runs++
		sc.Stash.Scenario["ready"] = true
		return nil
	})
	reg.MustAdd("then", "check", func(sc *StepContext) error {
		sc.Assert(sc.Stash.Scenario["ready"] == true, "background stash visible")
		return nil
	})

	ft := &feature.Feature{
		Meta:       feature.Meta{Name: "f"},
		Background: &feature.Scenario{IsBackground: true, Steps: []feature.Step{st("given", "setup")}},
		Scenarios: []*feature.Scenario{
			{Name: "a", Steps: []feature.Step{st("then", "check")}},
			{Name: "b", Steps: []feature.Step{st("then", "check")}},
		},
	}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), ft)

	if runs != 2 {
		t.Errorf("background ran %d times, want 2", runs)
	}
	for i, s := range h.statuses {
		if s != StatusPassing {
			t.Errorf("step %d status = %s, want passing", i, s)
		}
	}
	joined := strings.Join(h.events, ",")
	wantOrder := "scenario:a,background,step:setup,step_done:setup,background_done,step:check"
	if !strings.Contains(joined, wantOrder) {
		t.Errorf("event order wrong:\n%s", joined)
	}
}

// TestBackgroundFailureSkipsBody verifies a failing background step leaves the
// scenario's own steps pending.
func TestBackgroundFailureSkipsBody(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", "bad setup", func(sc *StepContext) error {
		sc.Fail("nope")
		return nil
	})
	reg.MustAdd("then", "check", func(sc *StepContext) error {
		t.Error("body step must not run after background failure")
		return nil
	})

	ft := &feature.Feature{
		Meta:       feature.Meta{Name: "f"},
		Background: &feature.Scenario{IsBackground: true, Steps: []feature.Step{st("given", "bad setup")}},
		Scenarios: []*feature.Scenario{
			{Name: "a", Steps: []feature.Step{st("then", "check")}},
		},
	}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), ft)

	if h.statuses[0] != StatusFailing || h.statuses[1] != StatusPending {
		t.Errorf("statuses = %v, want [failing pending]", h.statuses)
	}
}

// TestStashTiers verifies the three stash lifetimes: feature stash persists
// across scenarios, scenario stash resets per scenario (and per outline row),
// step stash is fresh every step.
func TestStashTiers(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", "write all tiers", func(sc *StepContext) error {
		sc.Stash.Feature["f"] = true
		sc.Stash.Scenario["s"] = true
		sc.Stash.Step["st"] = true
		return nil
	})
	reg.MustAdd("then", "check tiers", func(sc *StepContext) error {
		sc.Assert(sc.Stash.Feature["f"] == true, "feature stash persists")
		sc.Assert(sc.Stash.Scenario["s"] == true, "scenario stash persists within scenario")
		sc.Assert(sc.Stash.Step["st"] == nil, "step stash is fresh")
		return nil
	})
	reg.MustAdd("then", "check cross scenario", func(sc *StepContext) error {
		sc.Assert(sc.Stash.Feature["f"] == true, "feature stash persists across scenarios")
		sc.Assert(sc.Stash.Scenario["s"] == nil, "scenario stash resets")
		return nil
	})

	ft := &feature.Feature{
		Meta: feature.Meta{Name: "f"},
		Scenarios: []*feature.Scenario{
			{Name: "a", Steps: []feature.Step{st("given", "write all tiers"), st("then", "check tiers")}},
			{Name: "b", Steps: []feature.Step{st("then", "check cross scenario")}},
		},
	}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), ft)

	for i, s := range h.statuses {
		if s != StatusPassing {
			t.Errorf("step %d status = %s, output:\n%s", i, s, h.outputs[i])
		}
	}
}

// TestOutlineRowsGetFreshScenarioStash verifies each example row starts with
// its own scenario stash.
func TestOutlineRowsGetFreshScenarioStash(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("when", "touch", func(sc *StepContext) error {
		sc.Assert(sc.Stash.Scenario["seen"] == nil, "row stash starts empty")
		sc.Stash.Scenario["seen"] = true
		return nil
	})

	ft := singleScenario(st("when", "touch"))
	ft.Scenarios[0].Examples = []feature.Row{{}, {}}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.RunFeature(context.Background(), ft)

	for i, s := range h.statuses {
		if s != StatusPassing {
			t.Errorf("row %d status = %s, output:\n%s", i, s, h.outputs[i])
		}
	}
}

// TestStashArgMode verifies two-argument actions receive the step stash only
// when the executor's StashArg mode is on.
func TestStashArgMode(t *testing.T) {
	reg := NewRegistry()
	var got map[string]any
	called := false
	reg.MustAdd("given", "stashy", func(sc *StepContext, stash map[string]any) error {
		called = true
		got = stash
		return nil
	})

	exec := NewExecutor(reg, nil)
	exec.StashArg = true
	exec.RunFeature(context.Background(), singleScenario(st("given", "stashy")))
	if !called {
		t.Fatal("action not invoked")
	}
	if got == nil {
		t.Error("StashArg mode should pass a non-nil step stash")
	}

	called = false
	exec.StashArg = false
	exec.RunFeature(context.Background(), singleScenario(st("given", "stashy")))
	if !called {
		t.Fatal("action not invoked")
	}
	if got != nil {
		t.Error("with StashArg off, the second argument must be nil")
	}
}

// TestFilterNarrowsScenarios verifies the executor applies its Filter before
// running anything.
func TestFilterNarrowsScenarios(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("then", "runs", func(sc *StepContext) error { return nil })

	ft := &feature.Feature{
		Meta: feature.Meta{Name: "f"},
		Scenarios: []*feature.Scenario{
			{Name: "keep", Steps: []feature.Step{st("then", "runs")}},
			{Name: "drop", Steps: []feature.Step{st("then", "runs")}},
		},
	}

	h := &recordingHarness{}
	exec := NewExecutor(reg, h)
	exec.Filter = func(scs []*feature.Scenario) []*feature.Scenario {
		var out []*feature.Scenario
		for _, sc := range scs {
			if sc.Name == "keep" {
				out = append(out, sc)
			}
		}
		return out
	}
	exec.RunFeature(context.Background(), ft)

	joined := strings.Join(h.events, ",")
	if !strings.Contains(joined, "scenario:keep") {
		t.Error("kept scenario did not run")
	}
	if strings.Contains(joined, "scenario:drop") {
		t.Error("filtered scenario ran")
	}
}
