// Package steps ships the built-in step library: command execution, output
// assertions, and stash manipulation. Feature files using only these steps
// run end-to-end without any project-specific definitions.
package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandResult captures one command invocation.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandExecutor runs commands on behalf of the "I run" step. Injected so
// tests substitute a fake and never shell out.
type CommandExecutor interface {
	Execute(ctx context.Context, command string, args []string, env []string) (*CommandResult, error)
}

// ExecExecutor is the real CommandExecutor backed by os/exec.
type ExecExecutor struct{}

func (ExecExecutor) Execute(ctx context.Context, command string, args []string, env []string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if env != nil {
		cmd.Env = env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("execute %s: %w", command, err)
	}
	return result, nil
}

// splitCommand breaks a command line into argv, honoring double quotes.
func splitCommand(line string) []string {
	var argv []string
	var cur strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				argv = append(argv, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		argv = append(argv, cur.String())
	}
	return argv
}
