package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"squire/internal/shell"
)

// ExecuteCommandTool runs a shell command immediately, without approval.
// Mutating workflows go through the approval-gated execute_shell instead.
type ExecuteCommandTool struct {
	Dir            string
	DefaultTimeout time.Duration
	MaxOutputBytes int
}

func (t *ExecuteCommandTool) Name() string { return "execute_command" }

func (t *ExecuteCommandTool) Description() string {
	return "Execute a shell command and get its output"
}

func (t *ExecuteCommandTool) Params() []Param {
	return []Param{
		{Name: "command", Type: "string", Description: "Shell command to execute", Required: true},
		{Name: "timeout", Type: "integer", Description: "Timeout in seconds (default: 30)"},
	}
}

func (t *ExecuteCommandTool) Execute(ctx context.Context, args Args) Result {
	command, err := args.RequiredString("command")
	if err != nil {
		return Errorf("%v", err)
	}
	if shell.Dangerous(command) {
		return Errorf("Dangerous command blocked for safety")
	}
	timeout, err := timeoutArg(args, t.DefaultTimeout)
	if err != nil {
		return Errorf("%v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, runErr := shell.Run(runCtx, command, t.Dir)
	if runErr != nil {
		if errors.Is(runErr, context.DeadlineExceeded) {
			return Errorf("Command timed out after %ds", int(timeout.Seconds()))
		}
		return Errorf("%v", runErr)
	}
	if out.ExitCode != 0 {
		return Errorf("%s", strings.TrimSpace(out.Stderr))
	}
	return Ok(clipOutput(strings.TrimSpace(out.Stdout), t.MaxOutputBytes))
}

// ExecuteCodeTool runs a code snippet through the configured interpreter.
type ExecuteCodeTool struct {
	Interpreter    string
	Dir            string
	DefaultTimeout time.Duration
	MaxOutputBytes int
}

func (t *ExecuteCodeTool) Name() string { return "execute_code" }

func (t *ExecuteCodeTool) Description() string {
	return "Execute a code snippet and get its output"
}

func (t *ExecuteCodeTool) Params() []Param {
	return []Param{
		{Name: "code", Type: "string", Description: "Code to execute", Required: true},
		{Name: "timeout", Type: "integer", Description: "Timeout in seconds (default: 30)"},
	}
}

func (t *ExecuteCodeTool) Execute(ctx context.Context, args Args) Result {
	code, ok, err := args.Text("code")
	if err != nil {
		return Errorf("%v", err)
	}
	if !ok || strings.TrimSpace(code) == "" {
		return Errorf("code is required")
	}
	timeout, err := timeoutArg(args, t.DefaultTimeout)
	if err != nil {
		return Errorf("%v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interpreter := t.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	out, runErr := shell.RunProgram(runCtx, interpreter, []string{"-c", code}, t.Dir)
	if runErr != nil {
		if errors.Is(runErr, context.DeadlineExceeded) {
			return Errorf("Code execution timed out after %ds", int(timeout.Seconds()))
		}
		return Errorf("%v", runErr)
	}
	if out.ExitCode != 0 {
		return Errorf("%s", strings.TrimSpace(out.Stderr))
	}
	return Ok(clipOutput(strings.TrimSpace(out.Stdout), t.MaxOutputBytes))
}

// timeoutArg reads the optional timeout argument, falling back to def.
func timeoutArg(args Args, def time.Duration) (time.Duration, error) {
	value, err := args.OptionalInt("timeout")
	if err != nil {
		return 0, err
	}
	if value == nil || *value <= 0 {
		if def <= 0 {
			def = 30 * time.Second
		}
		return def, nil
	}
	return time.Duration(*value) * time.Second, nil
}
