package harness

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/olmosoft/beret/pkg/engine"
)

// TestTraceWritesJSONL verifies each step result lands as one parseable JSON
// line with the step's location and verdict.
func TestTraceWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tr, err := NewTrace(path)
	if err != nil {
		t.Fatalf("NewTrace: %v", err)
	}

	tr.StepDone(stepCtx("given", "a bowl"), &engine.Result{Status: engine.StatusPassing, Output: "1..1\nok 1 - x"})
	tr.StepDone(stepCtx("when", "it breaks"), &engine.Result{Status: engine.StatusFailing, Output: "1..1\nnot ok 1 - y"})
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var events []TraceEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev TraceEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	first := events[0]
	if first.Type != "step_result" || first.Feature != "f" || first.Scenario != "s" {
		t.Errorf("unexpected event: %+v", first)
	}
	if first.Verb != "given" || first.Text != "a bowl" || first.Status != engine.StatusPassing {
		t.Errorf("unexpected event: %+v", first)
	}
	if events[1].Status != engine.StatusFailing {
		t.Errorf("second event status = %s", events[1].Status)
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
}

// TestTraceAppends verifies reopening the same path appends rather than
// truncates.
func TestTraceAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	for i := 0; i < 2; i++ {
		tr, err := NewTrace(path)
		if err != nil {
			t.Fatalf("NewTrace: %v", err)
		}
		tr.StepDone(stepCtx("given", "a"), &engine.Result{Status: engine.StatusPassing})
		if err := tr.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("expected 2 lines after two sessions, got %d", lines)
	}
}
