package approval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"squire/internal/shell"
	"squire/internal/tools"
)

// apply performs the effect of an approved change. Callers hold the
// handler lock.
func (h *Handler) apply(ctx context.Context, change Change) tools.Result {
	if change.Op == OpExecuteShell {
		return h.runShell(ctx, change.Command)
	}

	path, err := sanitizePath(change.Path)
	if err != nil {
		return tools.Errorf("Invalid path: %v", err)
	}
	target := h.resolve(path)

	switch change.Op {
	case OpCreate:
		if _, err := os.Stat(target); err == nil {
			return tools.Errorf("File already exists: %s", change.Path)
		}
		if dir := filepath.Dir(target); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return tools.Errorf("Error executing change: %v", err)
			}
		}
		if err := os.WriteFile(target, []byte(change.Content), 0o644); err != nil {
			return tools.Errorf("Error executing change: %v", err)
		}
		abs, err := filepath.Abs(target)
		if err != nil {
			abs = target
		}
		return tools.Ok("Created file: " + abs)

	case OpModify:
		if _, err := os.Stat(target); err != nil {
			return tools.Errorf("File not found: %s", change.Path)
		}
		if err := os.WriteFile(target, []byte(change.Content), 0o644); err != nil {
			return tools.Errorf("Error executing change: %v", err)
		}
		return tools.Ok("Modified file: " + change.Path)

	case OpDelete:
		if _, err := os.Stat(target); err != nil {
			return tools.Errorf("File not found: %s", change.Path)
		}
		if err := os.Remove(target); err != nil {
			return tools.Errorf("Error executing change: %v", err)
		}
		return tools.Ok("Deleted file: " + change.Path)
	}
	return tools.Errorf("Unknown operation: %s", change.Op)
}

// sanitizePath strips leading separators and rejects traversal
// segments. Shell commands never pass through here.
func sanitizePath(path string) (string, error) {
	trimmed := strings.TrimLeft(path, "/\\")
	if strings.TrimSpace(trimmed) == "" {
		return "", errors.New("empty path")
	}
	for _, segment := range strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if segment == ".." {
			return "", errors.New("path traversal not allowed")
		}
	}
	return trimmed, nil
}

// runShell executes an approved shell command. The denylist check
// runs here, after approval.
func (h *Handler) runShell(ctx context.Context, command string) tools.Result {
	if shell.Dangerous(command) {
		return tools.Errorf("Dangerous command blocked for safety")
	}

	timeout := h.ShellTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := shell.Run(runCtx, command, h.Dir)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return tools.Errorf("Command timed out after %ds", int(timeout.Seconds()))
		}
		return tools.Errorf("Error executing command: %v", err)
	}

	combined := out.Combined()
	if out.ExitCode != 0 {
		return tools.Result{
			Output: combined,
			Error:  fmt.Sprintf("Command failed with exit code %d", out.ExitCode),
		}
	}
	if combined == "" {
		combined = "Command executed successfully (no output)"
	}
	return tools.Ok(combined)
}
