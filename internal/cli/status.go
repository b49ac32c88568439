package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// statusProbeTimeout bounds the Ollama availability check.
const statusProbeTimeout = 5 * time.Second

// runStatus builds the handler for the status command.
func runStatus(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .squire/config.yml)")
		model := flags.String("model", "", "Override the configured model")
		baseURL := flags.String("url", "", "Override the Ollama base URL")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		rt, err := newRuntime(buildOptions{
			configPath: *configPath,
			model:      *model,
			baseURL:    *baseURL,
			noColor:    true,
		}, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Status failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		workspace := rt.root
		if workspace == "" {
			workspace = "(none, using defaults)"
		}
		fmt.Fprintf(stdout, "Model:     %s\n", rt.cfg.Model.Name)
		fmt.Fprintf(stdout, "Base URL:  %s\n", rt.cfg.Model.BaseURL)
		fmt.Fprintf(stdout, "Workspace: %s\n", workspace)

		fmt.Fprintln(stdout, "\nTools:")
		for _, tool := range rt.registry.List() {
			fmt.Fprintf(stdout, "  - %s\n", tool.Name())
		}

		if len(rt.cfg.MCPServers) > 0 {
			fmt.Fprintln(stdout, "\nMCP servers:")
			connected := map[string]bool{}
			for _, name := range rt.servers {
				connected[name] = true
			}
			for _, server := range rt.cfg.MCPServers {
				state := "not connected"
				if connected[server.Name] {
					state = "connected"
				}
				if server.Enabled != nil && !*server.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(stdout, "  - %s (%s): %s\n", server.Name, server.Transport, state)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
		defer cancel()
		if !rt.client.IsAvailable(ctx) {
			fmt.Fprintf(stdout, "\nOllama: unreachable at %s\n", rt.cfg.Model.BaseURL)
			fmt.Fprintln(stdout, "Start it with: ollama serve")
			return ExitError
		}
		fmt.Fprintln(stdout, "\nOllama: available")

		models, err := rt.client.ListModels(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: list models: %v\n", err)
			return ExitOK
		}
		fmt.Fprintf(stdout, "Installed models: %s\n", strings.Join(models, ", "))
		if !hasModel(models, rt.cfg.Model.Name) {
			fmt.Fprintf(stdout, "Model %q is not installed. Pull it with: ollama pull %s\n", rt.cfg.Model.Name, rt.cfg.Model.Name)
		}
		return ExitOK
	}
}

// hasModel reports whether name (or name with a default tag) is in the
// installed list.
func hasModel(models []string, name string) bool {
	for _, model := range models {
		if model == name || strings.TrimSuffix(model, ":latest") == name {
			return true
		}
	}
	return false
}
