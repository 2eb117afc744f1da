package steps

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/olmosoft/beret/pkg/engine"
)

// Scenario stash keys populated by the "I run" step.
const (
	StashStdout   = "stdout"
	StashStderr   = "stderr"
	StashExitCode = "exit_code"
)

var (
	runPattern      = regexp.MustCompile(`^I run "(.+)"$`)
	containsPattern = regexp.MustCompile(`^the output should contain "(.*)"$`)
	matchPattern    = regexp.MustCompile(`^the output should match /(.*)/$`)
	exitPattern     = regexp.MustCompile(`^the exit status should be (\d+)$`)
	setPattern      = regexp.MustCompile(`^I set "(\w+)" to "(.*)"$`)
	equalPattern    = regexp.MustCompile(`^"(\w+)" should equal "(.*)"$`)
)

// Register installs the built-in step library into reg. Commands run through
// executor; pass ExecExecutor{} for real execution.
func Register(reg *engine.Registry, executor CommandExecutor) {
	reg.MustAdd("when", runPattern, runStep(executor))
	reg.MustAdd("then", containsPattern, outputContains)
	reg.MustAdd("then", matchPattern, outputMatches)
	reg.MustAdd("then", exitPattern, exitStatusIs)
	reg.MustAdd("given", setPattern, setValue)
	reg.MustAdd("then", equalPattern, valueEquals)
	reg.MustAdd(engine.WildcardVerb, "pending", markPending)
}

func runStep(executor CommandExecutor) engine.Action {
	return func(sc *engine.StepContext) error {
		argv := splitCommand(sc.Matches[1])
		if len(argv) == 0 {
			return fmt.Errorf("empty command")
		}
		res, err := executor.Execute(sc.Context, argv[0], argv[1:], nil)
		if err != nil {
			return err
		}
		sc.Stash.Scenario[StashStdout] = string(res.Stdout)
		sc.Stash.Scenario[StashStderr] = string(res.Stderr)
		sc.Stash.Scenario[StashExitCode] = res.ExitCode
		sc.Pass("ran %s (exit %d)", argv[0], res.ExitCode)
		if len(res.Stderr) > 0 {
			sc.Diag("stderr: %s", strings.TrimRight(string(res.Stderr), "\n"))
		}
		return nil
	}
}

func stashedOutput(sc *engine.StepContext) (string, bool) {
	out, ok := sc.Stash.Scenario[StashStdout].(string)
	if !ok {
		sc.Fail("no command output in scenario stash; run a command first")
	}
	return out, ok
}

func outputContains(sc *engine.StepContext) error {
	out, ok := stashedOutput(sc)
	if !ok {
		return nil
	}
	want := sc.Matches[1]
	sc.Assert(strings.Contains(out, want), "output contains %q", want)
	if !strings.Contains(out, want) {
		sc.Diag("output was: %s", strings.TrimRight(out, "\n"))
	}
	return nil
}

func outputMatches(sc *engine.StepContext) error {
	out, ok := stashedOutput(sc)
	if !ok {
		return nil
	}
	re, err := regexp.Compile(sc.Matches[1])
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", sc.Matches[1], err)
	}
	sc.Assert(re.MatchString(out), "output matches /%s/", sc.Matches[1])
	return nil
}

func exitStatusIs(sc *engine.StepContext) error {
	want, err := strconv.Atoi(sc.Matches[1])
	if err != nil {
		return err
	}
	got, ok := sc.Stash.Scenario[StashExitCode].(int)
	if !ok {
		sc.Fail("no exit status in scenario stash; run a command first")
		return nil
	}
	sc.Assert(got == want, "exit status is %d (got %d)", want, got)
	return nil
}

func setValue(sc *engine.StepContext) error {
	key, val := sc.Matches[1], sc.Matches[2]
	sc.Stash.Scenario[key] = val
	sc.Pass("set %q", key)
	return nil
}

func valueEquals(sc *engine.StepContext) error {
	key, want := sc.Matches[1], sc.Matches[2]
	got, ok := sc.Stash.Scenario[key]
	if !ok {
		sc.Fail("%q is not set", key)
		return nil
	}
	sc.Assert(fmt.Sprintf("%v", got) == want, "%q equals %q (got %v)", key, want, got)
	return nil
}

func markPending(sc *engine.StepContext) error {
	sc.Todo("not yet implemented")
	return nil
}
