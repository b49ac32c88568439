package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"squire/internal/approval"
)

// ideInput is swappable in tests.
var ideInput io.Reader = os.Stdin

// runIDE builds the handler for the ide command. It reads prompts line
// by line from stdin and answers on stdout, with approval traffic
// carried as APPROVAL_REQUEST/APPROVAL_RESPONSE lines so an editor
// plugin can drive the agent over a pipe.
func runIDE(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
			fmt.Fprintf(stderr, "IDE mode failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		bridge := approval.NewBridge(rt.approvals, stdout)
		rt.approvals.SetNotifier(bridge)
		runner := &recordingRunner{rt: rt, stderr: stderr}

		ctx := context.Background()
		err = bridge.Listen(ctx, ideInput, func(line string) {
			prompt := strings.TrimSpace(line)
			if prompt == "" {
				return
			}
			response, _, err := runner.Run(ctx, prompt)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return
			}
			fmt.Fprintln(stdout, response)
		})
		if err != nil {
			fmt.Fprintf(stderr, "IDE mode failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
