package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"squire/internal/webui"
)

// serveWeb is swappable in tests.
var serveWeb = webui.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		addr := flags.String("addr", "127.0.0.1:5000", "Address to listen on")
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
			progress:   stderr,
		}, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Serve failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		fmt.Fprintf(stdout, "Serving chat UI at http://%s\n", *addr)
		err = serveWeb(context.Background(), webui.Config{
			Addr:       *addr,
			Runner:     &recordingRunner{rt: rt, stderr: stderr},
			Registry:   rt.registry,
			Approvals:  rt.approvals,
			Model:      rt.cfg.Model.Name,
			MCPServers: rt.servers,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
