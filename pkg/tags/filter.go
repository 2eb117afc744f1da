// Package tags implements scenario filtering by tag expression. Expressions
// use expr-lang syntax over the scenario's tag list, e.g.:
//
//	"wip" in tags
//	has("fast") and not has("flaky")
package tags

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/olmosoft/beret/pkg/feature"
)

// Filter selects scenarios whose tags satisfy a compiled expression.
// Feature-level tags are inherited by every scenario.
type Filter struct {
	expression  string
	program     *vm.Program
	featureTags []string
}

// env builds the evaluation environment for a tag list.
func env(tagList []string) map[string]any {
	return map[string]any{
		"tags": tagList,
		"has": func(name string) bool {
			for _, t := range tagList {
				if t == name {
					return true
				}
			}
			return false
		},
	}
}

// Compile parses a tag expression. The expression must evaluate to a boolean.
func Compile(expression string) (*Filter, error) {
	program, err := expr.Compile(expression, expr.Env(env(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile tag expression %q: %w", expression, err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// WithFeatureTags returns a filter that also counts the feature's own tags
// toward every scenario.
func (f *Filter) WithFeatureTags(tagList []string) *Filter {
	clone := *f
	clone.featureTags = tagList
	return &clone
}

// Match evaluates the expression against one scenario's effective tag list.
// Evaluation errors count as no match.
func (f *Filter) Match(sc *feature.Scenario) bool {
	tagList := make([]string, 0, len(f.featureTags)+len(sc.Tags))
	tagList = append(tagList, f.featureTags...)
	tagList = append(tagList, sc.Tags...)

	out, err := expr.Run(f.program, env(tagList))
	if err != nil {
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Apply returns the subset of scenarios matching the expression, in order.
// It satisfies the executor's Filter contract.
func (f *Filter) Apply(scenarios []*feature.Scenario) []*feature.Scenario {
	var out []*feature.Scenario
	for _, sc := range scenarios {
		if f.Match(sc) {
			out = append(out, sc)
		}
	}
	return out
}
