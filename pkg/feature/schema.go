// Package feature defines the Go struct types for the feature YAML schema
// and provides strict YAML parsing.
package feature

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Verbs recognized in step shorthand form. "and" and "but" are aliases that
// resolve to the preceding step's verb at load time; "step" registers against
// the wildcard bucket.
var knownVerbs = []string{"given", "when", "then", "and", "but", "step"}

// Feature is the top-level document: an ordered list of scenarios with an
// optional background replayed before each one.
type Feature struct {
	APIVersion string      `yaml:"apiVersion"           json:"apiVersion" jsonschema:"required,const=feature/v0"`
	Meta       Meta        `yaml:"meta"                 json:"meta"       jsonschema:"required"`
	Background *Scenario   `yaml:"background,omitempty" json:"background,omitempty"`
	Scenarios  []*Scenario `yaml:"scenarios"            json:"scenarios"  jsonschema:"required,minItems=1"`
}

// Meta holds the feature's identity and documentation.
type Meta struct {
	Name        string   `yaml:"name"                  json:"name" jsonschema:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"        json:"tags,omitempty"`
}

// Scenario is an ordered list of steps, optionally parameterized by example
// rows (an outline). A background section is a Scenario with IsBackground set
// by the loader; it never carries examples of its own.
type Scenario struct {
	Name     string   `yaml:"name,omitempty"     json:"name,omitempty"`
	Tags     []string `yaml:"tags,omitempty"     json:"tags,omitempty"`
	Steps    []Step   `yaml:"steps"              json:"steps" jsonschema:"required,minItems=1"`
	Examples []Row    `yaml:"examples,omitempty" json:"examples,omitempty"`

	// IsBackground marks the feature's background section. Set by the loader,
	// never by the document.
	IsBackground bool `yaml:"-" json:"-"`
}

// Row is one outline example: placeholder name to value.
type Row map[string]string

// Step is one line of scenario text plus optional structured data. Text may
// contain <name> placeholders resolved against the active example row.
type Step struct {
	Verb string `yaml:"verb" json:"verb" jsonschema:"required,enum=given,enum=when,enum=then,enum=and,enum=but,enum=step"`
	Text string `yaml:"text" json:"text" jsonschema:"required"`
	Data any    `yaml:"data,omitempty" json:"data,omitempty"`
}

// UnmarshalYAML accepts both the verbose form ({verb, text, data}) and the
// shorthand form (- given: some text).
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("step must be a mapping, got %s", value.Tag)
	}

	// Shorthand: a single-key mapping whose key is a verb.
	if len(value.Content) == 2 {
		key := strings.ToLower(value.Content[0].Value)
		for _, v := range knownVerbs {
			if key == v {
				s.Verb = key
				return value.Content[1].Decode(&s.Text)
			}
		}
	}

	// Verbose form. Decode into a shadow type to avoid recursion.
	type plain struct {
		Verb string `yaml:"verb"`
		Text string `yaml:"text"`
		Data any    `yaml:"data"`
	}
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.Verb == "" || p.Text == "" {
		return fmt.Errorf("step requires 'verb' and 'text' (or shorthand '- given: ...')")
	}
	s.Verb = strings.ToLower(p.Verb)
	s.Text = p.Text
	s.Data = p.Data
	return nil
}

// LoadFile reads and parses a feature YAML file with strict unknown-field
// rejection (yaml.v3 KnownFields). Returns the parsed Feature or an error.
func LoadFile(path string) (*Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feature: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a feature document from a reader.
func Load(r io.Reader) (*Feature, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown fields

	var ft Feature
	if err := dec.Decode(&ft); err != nil {
		return nil, fmt.Errorf("parse feature: %w", err)
	}

	normalize(&ft)
	return &ft, nil
}

// normalize resolves verb aliases and marks the background section. After
// normalization every step verb is concrete (given/when/then/step), so the
// registry never sees "and" or "but".
func normalize(ft *Feature) {
	if ft.Background != nil {
		ft.Background.IsBackground = true
		resolveAliases(ft.Background.Steps)
	}
	for _, sc := range ft.Scenarios {
		resolveAliases(sc.Steps)
	}
}

// resolveAliases rewrites and/but to the preceding step's verb. A leading
// alias (no preceding step) falls back to the wildcard verb.
func resolveAliases(steps []Step) {
	prev := "step"
	for i := range steps {
		switch steps[i].Verb {
		case "and", "but":
			steps[i].Verb = prev
		default:
			prev = steps[i].Verb
		}
	}
}
