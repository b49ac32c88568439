// Package cli implements the squire command line interface: a small
// dispatch table of subcommands, each with its own flag set.
package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  squire <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"squire <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("chat", "Interactive chat with the agent", []string{
		"squire chat [--plain] [--verbose]",
	}, runChat),
	command("ask", "Ask a single question", []string{
		"squire ask [--verbose] <question>",
	}, runAsk),
	command("init", "Scaffold .squire/config.yml", []string{
		"squire init [--config <path>]",
	}, runInit),
	command("validate", "Validate the config file", []string{
		"squire validate [--config <path>]",
	}, runValidate),
	command("status", "Show agent and provider status", []string{
		"squire status",
	}, runStatus),
	command("index", "Index the workspace for semantic search", []string{
		"squire index [path]",
	}, runIndex),
	command("history", "Browse saved conversations", []string{
		"squire history [--limit <n>]",
		"squire history --search <text>",
		"squire history --show <conversation-id>",
	}, runHistory),
	command("serve", "Serve the web chat UI", []string{
		"squire serve [--addr <host:port>]",
	}, runServe),
	command("ide", "Run the IDE approval bridge on stdin/stdout", []string{
		"squire ide",
	}, runIDE),
	command("mcp", "List or probe MCP servers", []string{
		"squire mcp",
		"squire mcp --server <name>",
	}, runMCP),
	command("version", "Print the version", []string{
		"squire version",
	}, runVersion),
}
