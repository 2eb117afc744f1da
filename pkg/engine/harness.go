package engine

import "github.com/olmosoft/beret/pkg/feature"

// Harness observes execution lifecycle events for reporting. Every callback
// fires even for skipped and undefined steps. The longestLine hint on
// scenario/background start is the display width of the widest step line in
// the upcoming block, for reporters that align output.
type Harness interface {
	Feature(ft *feature.Feature)
	FeatureDone(ft *feature.Feature)
	Background(sc *feature.Scenario, row feature.Row, longestLine int)
	BackgroundDone(sc *feature.Scenario, row feature.Row)
	Scenario(sc *feature.Scenario, row feature.Row, longestLine int)
	ScenarioDone(sc *feature.Scenario, row feature.Row)
	Step(sc *StepContext)
	StepDone(sc *StepContext, res *Result)
}

// NopHarness discards all events. Embed it to implement only part of the
// Harness contract.
type NopHarness struct{}

func (NopHarness) Feature(*feature.Feature)                            {}
func (NopHarness) FeatureDone(*feature.Feature)                        {}
func (NopHarness) Background(*feature.Scenario, feature.Row, int)      {}
func (NopHarness) BackgroundDone(*feature.Scenario, feature.Row)       {}
func (NopHarness) Scenario(*feature.Scenario, feature.Row, int)        {}
func (NopHarness) ScenarioDone(*feature.Scenario, feature.Row)         {}
func (NopHarness) Step(*StepContext)                                   {}
func (NopHarness) StepDone(*StepContext, *Result)                      {}
