package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// WildcardVerb is the fallback bucket searched after the step's own verb.
const WildcardVerb = "step"

// Action is a step implementation invoked with the step's context. A non-nil
// error is recorded as one failing assertion.
type Action func(sc *StepContext) error

// StashAction additionally receives the step-scoped stash as a second
// argument. The stash is only populated when the executor's StashArg mode is
// on; otherwise it is nil. Compatibility affordance for actions that want
// direct stash access without reading it off the context.
type StashAction func(sc *StepContext, stash map[string]any) error

// StepDefinition pairs a compiled text matcher with the action it triggers.
// Immutable once added to a registry.
type StepDefinition struct {
	Verb    string
	Pattern *regexp.Regexp

	action      Action
	stashAction StashAction
}

// Registry stores step definitions in per-verb buckets, preserving insertion
// order within each bucket. Matching is first-added, first-tried.
type Registry struct {
	buckets map[string][]*StepDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[string][]*StepDefinition)}
}

// Add registers a step definition. The verb is case-folded; WildcardVerb
// registers into the fallback bucket tried for every verb. pattern is either
// a *regexp.Regexp used as-is, or a plain string compiled as a
// case-insensitive, start-anchored prefix literal (trailing colon stripped,
// optional trailing colon matched). action must be an Action or StashAction
// (or a bare func of either shape).
func (r *Registry) Add(verb string, pattern any, action any) error {
	verb = strings.ToLower(verb)

	def := &StepDefinition{Verb: verb}
	switch p := pattern.(type) {
	case *regexp.Regexp:
		def.Pattern = p
	case string:
		def.Pattern = CompileLiteral(p)
	default:
		return fmt.Errorf("pattern must be string or *regexp.Regexp, got %T", pattern)
	}

	switch fn := action.(type) {
	case Action:
		def.action = fn
	case func(*StepContext) error:
		def.action = fn
	case StashAction:
		def.stashAction = fn
	case func(*StepContext, map[string]any) error:
		def.stashAction = fn
	default:
		return fmt.Errorf("action must be func(*StepContext) error or func(*StepContext, map[string]any) error, got %T", action)
	}

	r.buckets[verb] = append(r.buckets[verb], def)
	return nil
}

// MustAdd is Add that panics on error, for static step tables.
func (r *Registry) MustAdd(verb string, pattern any, action any) {
	if err := r.Add(verb, pattern, action); err != nil {
		panic(err)
	}
}

// CompileLiteral turns a plain-text step pattern into a matcher: the trailing
// colon is stripped, special characters escaped, and the result anchored at
// the start of the step text, case-insensitive, with an optional trailing
// colon consumed.
func CompileLiteral(text string) *regexp.Regexp {
	text = strings.TrimSuffix(text, ":")
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(text) + `:?`)
}

// Find resolves step text to the first matching definition, searching the
// verb's own bucket then the wildcard bucket, each in insertion order.
// Returns the definition and its submatches (index 0 is the full match).
func (r *Registry) Find(verb, text string) (*StepDefinition, []string, bool) {
	verb = strings.ToLower(verb)
	for _, bucket := range [2]string{verb, WildcardVerb} {
		if bucket == WildcardVerb && verb == WildcardVerb {
			continue // already searched
		}
		for _, def := range r.buckets[bucket] {
			if m := def.Pattern.FindStringSubmatch(text); m != nil {
				return def, m, true
			}
		}
	}
	return nil, nil, false
}
