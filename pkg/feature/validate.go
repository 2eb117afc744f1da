package feature

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "scenarios[0].steps")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a feature file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Feature, []*ValidationError) {
	var allErrors []*ValidationError

	ft, err := LoadFile(path)
	if err != nil {
		allErrors = append(allErrors, &ValidationError{
			Phase:    "structural",
			Path:     "",
			Message:  err.Error(),
			Severity: "error",
		})
		return nil, allErrors
	}

	allErrors = append(allErrors, validateSemantic(ft)...)
	allErrors = append(allErrors, ValidateDomain(ft)...)

	if len(allErrors) > 0 {
		return ft, allErrors
	}
	return ft, nil
}

// validateSemantic validates the feature against the JSON Schema.
func validateSemantic(ft *Feature) []*ValidationError {
	data, err := json.Marshal(ft)
	if err != nil {
		return []*ValidationError{semanticErr(fmt.Sprintf("marshal for schema validation: %v", err))}
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return []*ValidationError{semanticErr(fmt.Sprintf("generate schema: %v", err))}
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return []*ValidationError{semanticErr(fmt.Sprintf("unmarshal schema: %v", err))}
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("feature-v0.json", schemaDoc); err != nil {
		return []*ValidationError{semanticErr(fmt.Sprintf("add schema resource: %v", err))}
	}

	sch, err := c.Compile("feature-v0.json")
	if err != nil {
		return []*ValidationError{semanticErr(fmt.Sprintf("compile schema: %v", err))}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []*ValidationError{semanticErr(fmt.Sprintf("unmarshal document: %v", err))}
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, semanticErr(err.Error()))
		}
		return errs
	}
	return nil
}

func semanticErr(msg string) *ValidationError {
	return &ValidationError{Phase: "semantic", Path: "", Message: msg, Severity: "error"}
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// placeholderRe extracts <name> placeholder tokens from step text.
var placeholderRe = regexp.MustCompile(`<(\w+)>`)

// ValidateDomain performs Phase 3 domain-level validation.
// Returns a slice of errors; empty means valid.
func ValidateDomain(ft *Feature) []*ValidationError {
	var errs []*ValidationError

	if ft.APIVersion != "feature/v0" {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     "apiVersion",
			Message:  fmt.Sprintf("unrecognized apiVersion %q, expected %q", ft.APIVersion, "feature/v0"),
			Severity: "error",
		})
	}

	if len(ft.Scenarios) == 0 {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     "scenarios",
			Message:  "feature must contain at least one scenario",
			Severity: "error",
		})
	}

	if ft.Background != nil {
		if len(ft.Background.Steps) == 0 {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     "background.steps",
				Message:  "background requires at least one step",
				Severity: "error",
			})
		}
		if len(ft.Background.Examples) > 0 {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     "background.examples",
				Message:  "background cannot carry examples; outline expansion belongs to scenarios",
				Severity: "error",
			})
		}
		// Backgrounds replay once per outline row with an empty row of their
		// own, so placeholders there can never resolve.
		for n := range placeholderNames(ft.Background.Steps) {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     "background.steps",
				Message:  fmt.Sprintf("placeholder <%s> is not allowed in background steps", n),
				Severity: "error",
			})
		}
	}

	// Scenario name uniqueness (duplicates make harness output ambiguous).
	seen := make(map[string]int)
	for i, sc := range ft.Scenarios {
		if sc.Name == "" {
			continue
		}
		if prev, ok := seen[sc.Name]; ok {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     fmt.Sprintf("scenarios[%d].name", i),
				Message:  fmt.Sprintf("duplicate scenario name %q (first at scenarios[%d])", sc.Name, prev),
				Severity: "warning",
			})
		}
		seen[sc.Name] = i
	}

	for i, sc := range ft.Scenarios {
		errs = append(errs, validateScenario(fmt.Sprintf("scenarios[%d]", i), sc)...)
	}

	return errs
}

// validateScenario checks step verbs and placeholder coverage for one scenario.
func validateScenario(path string, sc *Scenario) []*ValidationError {
	var errs []*ValidationError

	if len(sc.Steps) == 0 {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path + ".steps",
			Message:  "scenario requires at least one step",
			Severity: "error",
		})
	}

	for j, st := range sc.Steps {
		switch st.Verb {
		case "given", "when", "then", "step":
		default:
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     fmt.Sprintf("%s.steps[%d].verb", path, j),
				Message:  fmt.Sprintf("unknown verb %q", st.Verb),
				Severity: "error",
			})
		}
	}

	// Placeholder coverage: every <name> used in this scenario's steps must be
	// supplied by every example row. A scenario without examples must not use
	// placeholders at all.
	names := placeholderNames(sc.Steps)
	if len(sc.Examples) == 0 {
		for n := range names {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     path + ".steps",
				Message:  fmt.Sprintf("placeholder <%s> used without examples", n),
				Severity: "error",
			})
		}
		return errs
	}
	for ri, row := range sc.Examples {
		for n := range names {
			if _, ok := row[n]; !ok {
				errs = append(errs, &ValidationError{
					Phase:    "domain",
					Path:     fmt.Sprintf("%s.examples[%d]", path, ri),
					Message:  fmt.Sprintf("example row missing value for placeholder <%s>", n),
					Severity: "error",
				})
			}
		}
	}

	return errs
}

func placeholderNames(steps []Step) map[string]bool {
	names := make(map[string]bool)
	for _, st := range steps {
		for _, m := range placeholderRe.FindAllStringSubmatch(st.Text, -1) {
			names[m[1]] = true
		}
	}
	return names
}
