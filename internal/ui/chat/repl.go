package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"squire/internal/approval"
)

// REPL runs the line-oriented chat fallback for non-TTY sessions.
func REPL(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	s := newSession(opts)
	if opts.Approvals != nil {
		opts.Approvals.SetNotifier(approval.NotifierFunc(func(changeID string, change approval.Change) {
			fmt.Fprintln(out)
			fmt.Fprintln(out, FormatApprovalRequest(changeID, change, s.noColor))
		}))
	}

	fmt.Fprintln(out, s.welcome())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	prompt := stylize("You: ", s.noColor, colorYou)

	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(out, prompt)
			continue
		}

		if isCommand(line) {
			output, quit := s.handleCommand(ctx, line)
			fmt.Fprintln(out, output)
			if quit {
				return nil
			}
			fmt.Fprint(out, prompt)
			continue
		}

		response, info, err := s.runner.Run(ctx, line)
		if err != nil {
			fmt.Fprintln(out, stylize("Error: "+err.Error(), s.noColor, colorErr))
			fmt.Fprint(out, prompt)
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, stylize("Agent: ", s.noColor, colorAgent)+response)
		if info.Exhausted {
			fmt.Fprintln(out, stylize("(iteration limit reached)", s.noColor, colorFaint))
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, prompt)
	}
	return scanner.Err()
}
