// Package shell runs commands with captured output and whole-tree
// timeout kills, shared by the direct and approval-gated tools.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// dangerousCommands are blocked before execution. Substring match on
// the lowercased command, a guard against obvious footguns, not a
// sandbox.
var dangerousCommands = []string{"rm -rf /", "format", "del /f", "shutdown", "reboot"}

// Dangerous reports whether a command matches a blocked pattern.
func Dangerous(command string) bool {
	lowered := strings.ToLower(command)
	for _, pattern := range dangerousCommands {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

// Output is the captured result of a finished command.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined merges stdout and stderr under a [stderr] marker, the way
// approval results are reported back to the user.
func (o Output) Combined() string {
	out := o.Stdout
	if o.Stderr != "" {
		out += "\n[stderr]\n" + o.Stderr
	}
	return strings.TrimSpace(out)
}

// Run executes command through the system shell in dir. A done context
// kills the whole process group and returns ctx.Err.
func Run(ctx context.Context, command, dir string) (Output, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	return run(ctx, cmd)
}

// RunProgram executes a program directly with args, bypassing the shell.
func RunProgram(ctx context.Context, name string, args []string, dir string) (Output, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return run(ctx, cmd)
}

func run(ctx context.Context, cmd *exec.Cmd) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("start command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		return Output{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: -1,
		}, ctx.Err()
	case err := <-done:
		out := Output{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: 0,
		}
		if err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				return out, fmt.Errorf("run command: %w", err)
			}
			// Non-zero exit is data for the caller, not a transport fault.
			out.ExitCode = exitErr.ExitCode()
		}
		return out, nil
	}
}
