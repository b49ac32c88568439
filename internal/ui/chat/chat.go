// Package chat provides the interactive chat surfaces: a Bubble Tea
// terminal UI and a plain line-oriented REPL for non-TTY sessions.
package chat

import (
	"context"
	"strings"

	"squire/internal/agent"
	"squire/internal/approval"
	"squire/internal/tools"
)

// Runner drives one agent request; satisfied by *agent.Agent.
type Runner interface {
	Run(ctx context.Context, input string) (string, agent.RunInfo, error)
}

// Options configure a chat session.
type Options struct {
	Runner    Runner
	Registry  *tools.Registry
	Approvals *approval.Handler
	Model     string
	SessionID string
	NoColor   bool
}

const chatRule = "============================================================"

// session holds the state shared by the TUI and the REPL.
type session struct {
	runner    Runner
	registry  *tools.Registry
	approvals *approval.Handler
	model     string
	sessionID string
	noColor   bool
}

func newSession(opts Options) *session {
	return &session{
		runner:    opts.Runner,
		registry:  opts.Registry,
		approvals: opts.Approvals,
		model:     opts.Model,
		sessionID: opts.SessionID,
		noColor:   opts.NoColor,
	}
}

// welcome renders the banner with the command reference.
func (s *session) welcome() string {
	rule := stylize(chatRule, s.noColor, colorBanner)
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(stylize("  Squire - CLI Chat", s.noColor, colorBanner) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("Model: " + s.model + "\n")
	b.WriteString("Session: " + shortID(s.sessionID) + "\n\n")
	b.WriteString(stylize("Commands:", s.noColor, colorWarn) + "\n")
	b.WriteString("  /help - Show help\n")
	b.WriteString("  /clear - Clear conversation\n")
	b.WriteString("  /tools - List available tools\n")
	b.WriteString("  /quit - Exit chat\n")
	b.WriteString("  approve <id> - Approve pending change\n")
	b.WriteString("  reject <id> - Reject pending change\n")
	b.WriteString(rule)
	return b.String()
}

// isCommand reports whether a chat line is a command rather than a
// message for the agent.
func isCommand(line string) bool {
	return strings.HasPrefix(line, "/") ||
		strings.HasPrefix(line, "approve ") ||
		strings.HasPrefix(line, "reject ")
}

// handleCommand runs one chat command and returns its output plus
// whether the session should end.
func (s *session) handleCommand(ctx context.Context, line string) (string, bool) {
	switch {
	case line == "/quit" || line == "/exit":
		return stylize("Goodbye!", s.noColor, colorBanner), true
	case line == "/help":
		return s.welcome(), false
	case line == "/clear":
		return stylize("Conversation cleared", s.noColor, colorOK), false
	case line == "/tools":
		var b strings.Builder
		b.WriteString(stylize("Available Tools:", s.noColor, colorBanner))
		for _, tool := range s.registry.List() {
			b.WriteString("\n  - " + tool.Name())
		}
		return b.String(), false
	case strings.HasPrefix(line, "approve"):
		id := strings.TrimSpace(strings.TrimPrefix(line, "approve"))
		if id == "" {
			return "Usage: approve <change-id>", false
		}
		result := s.approvals.Approve(ctx, id)
		if result.Success {
			return stylize(result.Output, s.noColor, colorOK), false
		}
		return stylize(result.Error, s.noColor, colorErr), false
	case strings.HasPrefix(line, "reject"):
		id := strings.TrimSpace(strings.TrimPrefix(line, "reject"))
		if id == "" {
			return "Usage: reject <change-id>", false
		}
		result := s.approvals.Reject(id, "")
		if result.Success {
			return stylize(result.Output, s.noColor, colorWarn), false
		}
		return stylize(result.Error, s.noColor, colorErr), false
	}
	return stylize("Unknown command. Type /help for help.", s.noColor, colorErr), false
}

// FormatApprovalRequest renders a proposed change as a console banner.
func FormatApprovalRequest(changeID string, change approval.Change, noColor bool) string {
	rule := stylize(chatRule, noColor, colorWarn)
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(stylize("APPROVAL REQUIRED: "+changeID, noColor, colorWarn) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("Operation: " + change.Op + "\n")
	if change.Op == approval.OpExecuteShell {
		b.WriteString("Command: " + change.Command + "\n")
	} else {
		b.WriteString("Path: " + change.Path + "\n")
	}
	if change.Reason != "" {
		b.WriteString("Reason: " + change.Reason + "\n")
	}
	switch change.Op {
	case approval.OpCreate:
		b.WriteString("\n" + stylize("Content:", noColor, colorOK) + "\n")
		b.WriteString(clipBlock(change.Content, 500) + "\n")
	case approval.OpModify:
		b.WriteString("\n" + stylize("Diff:", noColor, colorWarn) + "\n")
		b.WriteString(clipBlock(change.Diff(), 500) + "\n")
	}
	b.WriteString("\n" + stylize("Commands:", noColor, colorWarn) + "\n")
	b.WriteString("  approve " + changeID + " - Approve this change\n")
	b.WriteString("  reject " + changeID + " - Reject this change\n")
	b.WriteString(rule)
	return b.String()
}

// shortID abbreviates a session id for the banner.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// clipBlock truncates a multi-line block for display.
func clipBlock(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
