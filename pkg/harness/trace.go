package harness

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olmosoft/beret/pkg/engine"
)

// TraceEvent is one JSONL record: a step verdict with its location.
type TraceEvent struct {
	Type      string        `json:"type"` // step_result
	Timestamp time.Time     `json:"timestamp"`
	Feature   string        `json:"feature"`
	Scenario  string        `json:"scenario"`
	Verb      string        `json:"verb"`
	Text      string        `json:"text"`
	Status    engine.Status `json:"status"`
	Output    string        `json:"output"`
}

// Trace appends step results to a JSONL trace file, flushing at step
// boundaries so a crash loses at most the in-flight step.
type Trace struct {
	engine.NopHarness
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
}

// NewTrace creates a trace harness appending to the given file.
func NewTrace(path string) (*Trace, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &Trace{file: f, writer: w, enc: json.NewEncoder(w)}, nil
}

func (t *Trace) StepDone(sc *engine.StepContext, res *engine.Result) {
	event := TraceEvent{
		Type:      "step_result",
		Timestamp: time.Now(),
		Feature:   sc.Feature.Meta.Name,
		Scenario:  sc.Scenario.Name,
		Verb:      sc.Verb,
		Text:      sc.Text,
		Status:    res.Status,
		Output:    res.Output,
	}
	// Encode errors surface on Close; the run must not abort on trace I/O.
	t.enc.Encode(event)
	t.writer.Flush()
	t.file.Sync()
}

// Close flushes and closes the trace file.
func (t *Trace) Close() error {
	if err := t.writer.Flush(); err != nil {
		return err
	}
	return t.file.Close()
}
