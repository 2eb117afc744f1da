// Package harness provides reporters implementing the engine's Harness
// contract: TAP text output, colorized console output, a JSONL step trace,
// a status summary, and a fan-out combinator.
package harness

import (
	"github.com/olmosoft/beret/pkg/engine"
	"github.com/olmosoft/beret/pkg/feature"
)

// Multi fans every event out to several harnesses, in order.
type Multi []engine.Harness

func (m Multi) Feature(ft *feature.Feature) {
	for _, h := range m {
		h.Feature(ft)
	}
}

func (m Multi) FeatureDone(ft *feature.Feature) {
	for _, h := range m {
		h.FeatureDone(ft)
	}
}

func (m Multi) Background(sc *feature.Scenario, row feature.Row, longest int) {
	for _, h := range m {
		h.Background(sc, row, longest)
	}
}

func (m Multi) BackgroundDone(sc *feature.Scenario, row feature.Row) {
	for _, h := range m {
		h.BackgroundDone(sc, row)
	}
}

func (m Multi) Scenario(sc *feature.Scenario, row feature.Row, longest int) {
	for _, h := range m {
		h.Scenario(sc, row, longest)
	}
}

func (m Multi) ScenarioDone(sc *feature.Scenario, row feature.Row) {
	for _, h := range m {
		h.ScenarioDone(sc, row)
	}
}

func (m Multi) Step(sc *engine.StepContext) {
	for _, h := range m {
		h.Step(sc)
	}
}

func (m Multi) StepDone(sc *engine.StepContext, res *engine.Result) {
	for _, h := range m {
		h.StepDone(sc, res)
	}
}
