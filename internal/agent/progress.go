package agent

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"squire/internal/tools"
)

const progressRule = "============================================================"

// progress prints loop milestones for verbose runs. A nil progress is
// valid and prints nothing.
type progress struct {
	out     io.Writer
	noColor bool
}

// start prints the run banner.
func (p *progress) start(userInput string) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, stylize(progressRule, p.noColor, lipgloss.Color("33")))
	fmt.Fprintln(p.out, stylize("Agent starting", p.noColor, lipgloss.Color("33")))
	fmt.Fprintln(p.out, stylize(progressRule, p.noColor, lipgloss.Color("33")))
	fmt.Fprintf(p.out, "User: %s\n", userInput)
}

// iteration prints the loop counter.
func (p *progress) iteration(n int) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, stylize(fmt.Sprintf("--- Iteration %d ---", n), p.noColor, lipgloss.Color("242")))
}

// response prints a truncated model response.
func (p *progress) response(text string) {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "Agent: %s\n", clipText(text, 200))
}

// toolUse prints the tool about to run and its arguments.
func (p *progress) toolUse(call ToolCall) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out, stylize("Using tool: "+call.ToolName, p.noColor, lipgloss.Color("208")))
	if len(call.Arguments) > 0 {
		fmt.Fprintf(p.out, "   Arguments: %s\n", formatArguments(call.Arguments))
	}
}

// toolResult prints a truncated tool result.
func (p *progress) toolResult(result tools.Result) {
	if p == nil {
		return
	}
	text := result.Output
	if !result.Success {
		text = result.Error
	}
	fmt.Fprintf(p.out, "   Result: %s\n", clipText(text, 100))
}

// done prints the completion banner.
func (p *progress) done() {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, stylize(progressRule, p.noColor, lipgloss.Color("34")))
	fmt.Fprintln(p.out, stylize("Agent complete", p.noColor, lipgloss.Color("34")))
	fmt.Fprintln(p.out, stylize(progressRule, p.noColor, lipgloss.Color("34")))
}

// exhausted prints the iteration budget warning.
func (p *progress) exhausted(max int) {
	if p == nil {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, stylize(fmt.Sprintf("Max iterations (%d) reached", max), p.noColor, lipgloss.Color("214")))
}

// formatArguments renders tool arguments on one line, keys sorted.
func formatArguments(args tools.Args) string {
	parts := make([]string, 0, len(args))
	for _, key := range args.Keys() {
		parts = append(parts, key+"="+clipText(string(args[key]), 60))
	}
	return strings.Join(parts, " ")
}

// clipText truncates text for display, never mid-rune.
func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + "..."
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
