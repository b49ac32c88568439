package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"squire/internal/ui/chat"
)

// Seams for tests: the interactive program, the line REPL, and stdin.
var (
	chatProgram = chat.Run
	chatREPL    = chat.REPL
	chatInput   io.Reader = os.Stdin
)

// runChat builds the handler for the chat command.
func runChat(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		plain := flags.Bool("plain", false, "Use the line-oriented chat instead of the full-screen UI")
		verbose := flags.Bool("verbose", false, "Print the agent loop while it runs")
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
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		colorOff := resolveNoColor(*noColor, stdout)
		rt, err := newRuntime(buildOptions{
			configPath: *configPath,
			model:      *model,
			baseURL:    *baseURL,
			verbose:    *verbose,
			noColor:    colorOff,
			progress:   stdout,
		}, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		defer rt.Close()

		mode := "auto"
		if *plain {
			mode = "plain"
		}
		decision, err := resolveUIMode(mode, rt.cfg.Agent.Verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		opts := chat.Options{
			Runner:    recordingRunner{rt: rt, stderr: stderr},
			Registry:  rt.registry,
			Approvals: rt.approvals,
			Model:     rt.cfg.Model.Name,
			SessionID: rt.sessionID,
			NoColor:   colorOff,
		}
		if decision.useTUI {
			if err := chatProgram(opts); err != nil {
				fmt.Fprintf(stderr, "Chat failed: %v\n", err)
				return ExitError
			}
			return ExitOK
		}
		if err := chatREPL(context.Background(), opts, chatInput, stdout); err != nil {
			fmt.Fprintf(stderr, "Chat failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
