package tools

import (
	"context"
	"fmt"
)

// Result captures a tool execution outcome.
type Result struct {
	Success bool
	Output  string
	Error   string
}

// Ok returns a successful result with output.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// Errorf returns a failed result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Param describes one tool parameter for the system prompt.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Tool is a capability the model can invoke.
type Tool interface {
	Name() string
	Description() string
	Params() []Param
	Execute(ctx context.Context, args Args) Result
}
