package cli

import (
	"fmt"
	"io"
)

// Version is the squire release version.
const Version = "0.1.0"

// runVersion builds the handler for the version command.
func runVersion(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		if len(args) > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		fmt.Fprintf(stdout, "squire %s\n", Version)
		return ExitOK
	}
}
