package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"squire/internal/agent"
)

// runAsk builds the handler for the ask command.
func runAsk(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		verbose := flags.Bool("verbose", false, "Print the agent loop while it runs")
		stream := flags.Bool("stream", false, "Stream the answer as it is generated (skips tools)")
		noColor := flags.Bool("no-color", false, "Disable ANSI colors")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		question := strings.TrimSpace(strings.Join(flags.Args(), " "))
		if question == "" {
			fmt.Fprintln(stderr, "Missing question")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		rt, err := newRuntime(buildOptions{
			configPath: *configPath,
			model:      *model,
			baseURL:    *baseURL,
			verbose:    *verbose,
			noColor:    resolveNoColor(*noColor, stdout),
			progress:   stderr,
		}, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Ask failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		ctx := context.Background()
		if *stream {
			_, err := rt.agent.RunStream(ctx, question, func(chunk string) {
				fmt.Fprint(stdout, chunk)
			})
			if err != nil {
				fmt.Fprintf(stderr, "Ask failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintln(stdout)
			rt.saveRun(ctx, agent.RunInfo{}, stderr)
			return ExitOK
		}

		runner := recordingRunner{rt: rt, stderr: stderr}
		response, info, err := runner.Run(ctx, question)
		if err != nil {
			fmt.Fprintf(stderr, "Ask failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(stdout, response)
		if info.Exhausted {
			fmt.Fprintln(stderr, "Warning: iteration limit reached; the answer may be incomplete.")
		}
		if pending := len(rt.approvals.Pending()); pending > 0 {
			fmt.Fprintf(stderr, "%d change(s) await approval; run \"squire chat\" to decide them.\n", pending)
		}
		return ExitOK
	}
}
