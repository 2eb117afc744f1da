package engine

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GenerateRunID creates a run ID in format YYYYMMDDTHHmmss-xxxx.
func GenerateRunID() string {
	ts := time.Now().Format("20060102T150405")
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("%s-%x", ts, suffix)
}

// StepsSummary counts step results by status.
type StepsSummary struct {
	Total     int `yaml:"total"     json:"total"`
	Passing   int `yaml:"passing"   json:"passing"`
	Failing   int `yaml:"failing"   json:"failing"`
	Pending   int `yaml:"pending"   json:"pending"`
	Undefined int `yaml:"undefined" json:"undefined"`
}

// Record folds one step verdict into the counts.
func (s *StepsSummary) Record(st Status) {
	s.Total++
	switch st {
	case StatusPassing:
		s.Passing++
	case StatusFailing:
		s.Failing++
	case StatusPending:
		s.Pending++
	case StatusUndefined:
		s.Undefined++
	}
}

// RunManifest records the complete metadata for a feature run.
// Written as run.yaml after a run completes.
type RunManifest struct {
	RunID     string       `yaml:"run_id"     json:"run_id"`
	Features  []string     `yaml:"features"   json:"features"`
	StartedAt string       `yaml:"started_at" json:"started_at"`
	EndedAt   string       `yaml:"ended_at"   json:"ended_at"`
	Steps     StepsSummary `yaml:"steps"      json:"steps"`
}

// NewRunManifest stamps a manifest with a fresh run ID and start time.
func NewRunManifest() *RunManifest {
	return &RunManifest{
		RunID:     GenerateRunID(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Write finalizes the end timestamp and writes the manifest as YAML.
func (m *RunManifest) Write(path string) error {
	m.EndedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
