package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"squire/internal/config"
	"squire/internal/llm"
	"squire/internal/vector"
)

// runIndex builds the handler for the index command.
func runIndex(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .squire/config.yml)")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 1 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args()[1:], " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Index failed: %v\n", err)
			return ExitError
		}
		if root == "" {
			fmt.Fprintln(stderr, "No workspace found. Run squire init first.")
			return ExitError
		}

		target := root
		if flags.NArg() == 1 {
			target, err = filepath.Abs(flags.Arg(0))
			if err != nil {
				fmt.Fprintf(stderr, "Index failed: %v\n", err)
				return ExitError
			}
		}

		client, err := llm.NewClient(cfg.Model.BaseURL, cfg.Model.Name, time.Duration(cfg.Model.TimeoutSeconds)*time.Second, nil)
		if err != nil {
			fmt.Fprintf(stderr, "Index failed: %v\n", err)
			return ExitError
		}
		embedder := &vector.OllamaEmbedder{Client: client, Model: cfg.Embeddings.Model}
		store, err := vector.Open(config.IndexPath(root), cfg.Embeddings.Dimensions, embedder)
		if err != nil {
			fmt.Fprintf(stderr, "Index failed: %v\n", err)
			return ExitError
		}
		defer store.Close()

		fmt.Fprintf(stdout, "Indexing %s ...\n", target)
		indexer := &vector.Indexer{Store: store, Root: target}
		report, err := indexer.IndexWorkspace(context.Background())
		if err != nil {
			fmt.Fprintf(stderr, "Index failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Indexed %d files (%d chunks).\n", report.Files, report.Chunks)
		return ExitOK
	}
}
