package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
)

// maxStderrBytes caps the amount of stderr echoed into an execution error.
const maxStderrBytes = 4 * 1024

// DefaultAllowedCommands is the fixed set of executable names command/run may
// spawn when the config does not override it. The check is intentionally
// coarse: the literal command name only, never arguments or resolved paths.
var DefaultAllowedCommands = []string{"python", "node", "git", "uv"}

// CommandRunner executes allow-listed external commands for command/run tasks.
type CommandRunner struct {
	allowed map[string]struct{}
}

// NewCommandRunner creates a runner for the given allow-list. An empty list
// falls back to DefaultAllowedCommands.
func NewCommandRunner(allowed []string) *CommandRunner {
	if len(allowed) == 0 {
		allowed = DefaultAllowedCommands
	}
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	return &CommandRunner{allowed: set}
}

// Allowed returns the allow-listed command names in sorted order.
func (c *CommandRunner) Allowed() []string {
	names := make([]string, 0, len(c.allowed))
	for name := range c.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle runs one allow-listed command synchronously, blocking until the
// child process terminates. The task path, when set, becomes the working
// directory; the environment mapping, when set, replaces the inherited
// process environment. Non-zero exit and spawn failures are normalized into
// structured execution errors so command/run fails the same way the file
// handlers do.
func (c *CommandRunner) Handle(ctx context.Context, t Task) Result {
	if t.Command == "" {
		return Failure(t, KindArgument, "a `command` must be specified")
	}
	if _, ok := c.allowed[t.Command]; !ok {
		return Failure(t, KindArgument,
			fmt.Sprintf("the command %q is not currently available to run", t.Command))
	}

	cmd := exec.CommandContext(ctx, t.Command, t.Arguments...)
	cmd.Dir = t.Path
	if t.Environment != nil {
		env := make([]string, 0, len(t.Environment))
		for key, value := range t.Environment {
			env = append(env, key+"="+value)
		}
		cmd.Env = env
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := fmt.Sprintf("command %q exited with status %d", t.Command, exitErr.ExitCode())
			if detail := truncateStderr(stderr.String()); detail != "" {
				msg += ": " + detail
			}
			return Failure(t, KindExecution, msg)
		}
		return Failure(t, KindExecution, fmt.Sprintf("spawn command %q: %v", t.Command, err))
	}
	return Success(t)
}

// truncateStderr truncates stderr to maxStderrBytes.
func truncateStderr(s string) string {
	if len(s) > maxStderrBytes {
		return s[:maxStderrBytes]
	}
	return s
}
