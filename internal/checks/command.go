package checks

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/genomics-tools/datacheck/internal/config"
)

// Commander interface for testing
type Commander interface {
	CombinedOutput() ([]byte, error)
}

// CommandRunner turns configured external programs into checks
type CommandRunner struct {
	execCommand func(ctx context.Context, name string, args ...string) Commander
}

// NewCommandRunner creates a runner executing real processes
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		execCommand: func(ctx context.Context, name string, args ...string) Commander {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

// Checks builds one check per configured command.
// A zero exit status passes; otherwise the last line of output becomes the failure message.
func (cr *CommandRunner) Checks(commands []config.CommandCheck) []Check {
	checks := make([]Check, 0, len(commands))

	for _, cc := range commands {
		checks = append(checks, Check{
			Suite: cc.Suite,
			Name:  cc.Name,
			Run:   cr.run(cc),
		})
	}

	return checks
}

func (cr *CommandRunner) run(cc config.CommandCheck) Func {
	return func(ctx context.Context, env *Env, _ Warn) error {
		out, err := cr.execCommand(ctx, cc.Path, cc.ExpandArgs(env.File, env.Database)...).CombinedOutput()
		if err == nil {
			return nil
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := fmt.Sprintf("%s exited with status %d", cc.Path, exitErr.ExitCode())
			if line := lastLine(out); line != "" {
				msg += ": " + line
			}
			return errors.New(msg)
		}

		return fmt.Errorf("failed to run %s: %w", cc.Path, err)
	}
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
