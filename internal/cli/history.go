package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"squire/internal/config"
	"squire/internal/history"
)

// runHistory builds the handler for the history command.
func runHistory(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .squire/config.yml)")
		limit := flags.Int("limit", 10, "Number of conversations to list")
		search := flags.String("search", "", "Search message text")
		show := flags.String("show", "", "Show one conversation by id")
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

		_, root, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "History failed: %v\n", err)
			return ExitError
		}
		if root == "" {
			fmt.Fprintln(stderr, "No workspace found. Run squire init first.")
			return ExitError
		}
		store, err := history.Open(config.HistoryPath(root))
		if err != nil {
			fmt.Fprintf(stderr, "History failed: %v\n", err)
			return ExitError
		}
		defer store.Close()

		ctx := context.Background()
		switch {
		case *show != "":
			return showConversation(ctx, store, *show, stdout, stderr)
		case *search != "":
			return searchHistory(ctx, store, *search, *limit, stdout, stderr)
		default:
			return listConversations(ctx, store, *limit, stdout, stderr)
		}
	}
}

func listConversations(ctx context.Context, store *history.Store, limit int, stdout, stderr io.Writer) int {
	conversations, err := store.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(stderr, "History failed: %v\n", err)
		return ExitError
	}
	if len(conversations) == 0 {
		fmt.Fprintln(stdout, "No conversations yet.")
		return ExitOK
	}
	for _, conv := range conversations {
		fmt.Fprintf(stdout, "%s  %s  %3d msgs  %s\n",
			shortID(conv.ID), conv.LastActive.Format("2006-01-02 15:04"), conv.Messages, conv.Title)
	}
	return ExitOK
}

func searchHistory(ctx context.Context, store *history.Store, query string, limit int, stdout, stderr io.Writer) int {
	hits, err := store.Search(ctx, query, limit)
	if err != nil {
		fmt.Fprintf(stderr, "History failed: %v\n", err)
		return ExitError
	}
	if len(hits) == 0 {
		fmt.Fprintf(stdout, "No messages match %q.\n", query)
		return ExitOK
	}
	for _, hit := range hits {
		fmt.Fprintf(stdout, "%s  [%s] %s\n", shortID(hit.ConversationID), hit.Role, clipLine(hit.Content, 100))
	}
	return ExitOK
}

func showConversation(ctx context.Context, store *history.Store, id string, stdout, stderr io.Writer) int {
	conv, messages, err := store.Load(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		fmt.Fprintf(stderr, "No conversation with id %s.\n", id)
		return ExitError
	}
	if err != nil {
		fmt.Fprintf(stderr, "History failed: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(stdout, "%s (%s, %d messages, last active %s)\n",
		conv.Title, conv.Model, conv.Messages, conv.LastActive.Format("2006-01-02 15:04"))
	for _, msg := range messages {
		fmt.Fprintf(stdout, "\n[%s] %s\n", msg.Role, msg.Content)
	}
	return ExitOK
}

// shortID trims a uuid to its first block for listing.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// clipLine flattens newlines and truncates for one-line listings.
func clipLine(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}
