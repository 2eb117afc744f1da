package engine

import (
	"regexp"
	"testing"
)

// TestFindInsertionOrder verifies that when two definitions match the same
// text, the first-added one wins.
func TestFindInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", regexp.MustCompile(`^a (\w+)`), func(sc *StepContext) error { return nil })
	reg.MustAdd("given", regexp.MustCompile(`^a thing`), func(sc *StepContext) error { return nil })

	def, matches, ok := reg.Find("given", "a thing")
	if !ok {
		t.Fatal("expected a match")
	}
	if def.Pattern.String() != `^a (\w+)` {
		t.Errorf("expected first-added definition to win, got %q", def.Pattern)
	}
	if len(matches) != 2 || matches[1] != "thing" {
		t.Errorf("unexpected submatches: %v", matches)
	}
}

// TestFindWildcardFallback verifies the wildcard bucket is searched after the
// verb's own bucket, in that order.
func TestFindWildcardFallback(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd(WildcardVerb, "anything goes", func(sc *StepContext) error { return nil })

	if _, _, ok := reg.Find("when", "anything goes here"); !ok {
		t.Error("wildcard definition should match any verb")
	}

	// A verb-specific definition added later still shadows the wildcard.
	reg.MustAdd("when", "anything goes", func(sc *StepContext) error { return nil })
	def, _, ok := reg.Find("when", "anything goes here")
	if !ok {
		t.Fatal("expected a match")
	}
	if def.Verb != "when" {
		t.Errorf("verb bucket should be searched before wildcard, got %q", def.Verb)
	}
}

// TestFindVerbCaseFolding verifies verbs are matched case-insensitively.
func TestFindVerbCaseFolding(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("GIVEN", "a precondition", func(sc *StepContext) error { return nil })

	if _, _, ok := reg.Find("given", "a precondition"); !ok {
		t.Error("verb registered as GIVEN should match lookup as given")
	}
}

// TestCompileLiteral verifies plain-string patterns: case-insensitive prefix
// match, trailing colon stripped from the pattern and optional in the text.
func TestCompileLiteral(t *testing.T) {
	re := CompileLiteral("I have a thing:")

	for _, text := range []string{
		"I have a thing",
		"i have a thing",
		"I have a thing: with details",
		"I have a thing and more",
	} {
		if !re.MatchString(text) {
			t.Errorf("expected %q to match", text)
		}
	}
	if re.MatchString("oh I have a thing") {
		t.Error("literal patterns are start-anchored")
	}
}

// TestAddRejectsBadArguments verifies Add validates pattern and action types.
func TestAddRejectsBadArguments(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add("given", 42, func(sc *StepContext) error { return nil }); err == nil {
		t.Error("expected error for non-string, non-regexp pattern")
	}
	if err := reg.Add("given", "text", "not a func"); err == nil {
		t.Error("expected error for non-function action")
	}
	if err := reg.Add("given", "text", func(sc *StepContext, stash map[string]any) error { return nil }); err != nil {
		t.Errorf("stash-arg action shape should be accepted: %v", err)
	}
}

// TestFindNoMatch verifies a miss returns ok=false.
func TestFindNoMatch(t *testing.T) {
	reg := NewRegistry()
	reg.MustAdd("given", "something", func(sc *StepContext) error { return nil })

	if _, _, ok := reg.Find("given", "unrelated"); ok {
		t.Error("expected no match for unrelated text")
	}
	if _, _, ok := reg.Find("then", "something"); ok {
		t.Error("expected no match in a different verb bucket")
	}
}
