package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"squire/internal/config"
	"squire/internal/mcp"
)

// runMCP builds the handler for the mcp command.
func runMCP(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .squire/config.yml)")
		server := flags.String("server", "", "Connect to one server and list its tools")
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

		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "MCP failed: %v\n", err)
			return ExitError
		}
		if *server != "" {
			return probeMCPServer(cfg.MCPServers, *server, stdout, stderr)
		}

		if len(cfg.MCPServers) == 0 {
			fmt.Fprintln(stdout, "No MCP servers configured.")
			return ExitOK
		}
		for _, sc := range cfg.MCPServers {
			target := sc.URL
			if sc.Transport == "stdio" || sc.Transport == "" {
				target = strings.TrimSpace(sc.Command + " " + strings.Join(sc.Args, " "))
			}
			suffix := ""
			if sc.Enabled != nil && !*sc.Enabled {
				suffix = " [disabled]"
			}
			fmt.Fprintf(stdout, "%s (%s): %s%s\n", sc.Name, sc.Transport, target, suffix)
		}
		return ExitOK
	}
}

// probeMCPServer dials one configured server and prints its tools.
func probeMCPServer(servers []config.MCPServerConfig, name string, stdout, stderr io.Writer) int {
	var found *config.MCPServerConfig
	for i := range servers {
		if servers[i].Name == name {
			found = &servers[i]
			break
		}
	}
	if found == nil {
		fmt.Fprintf(stderr, "MCP server %q is not configured.\n", name)
		return ExitError
	}

	manager := mcp.NewManager()
	manager.Register(mcp.ServerConfig{
		Name:      found.Name,
		Transport: found.Transport,
		Command:   found.Command,
		Args:      found.Args,
		Env:       found.Env,
		URL:       found.URL,
	})
	defer manager.DisconnectAll()

	ctx, cancel := context.WithTimeout(context.Background(), mcpConnectTimeout)
	defer cancel()
	client, err := manager.Connect(ctx, name)
	if err != nil {
		fmt.Fprintf(stderr, "MCP failed: %v\n", err)
		return ExitError
	}

	remote := mcp.RemoteTools(client)
	if len(remote) == 0 {
		fmt.Fprintf(stdout, "%s exposes no tools.\n", name)
		return ExitOK
	}
	fmt.Fprintf(stdout, "Tools on %s:\n", name)
	for _, tool := range remote {
		fmt.Fprintf(stdout, "  - %s: %s\n", tool.Name(), tool.Description())
	}
	return ExitOK
}
