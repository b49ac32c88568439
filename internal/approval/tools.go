package approval

import (
	"context"
	"os"

	"squire/internal/tools"
)

// CreateFileTool proposes creating a new file.
type CreateFileTool struct {
	Handler *Handler
}

func (t *CreateFileTool) Name() string { return "create_file" }

func (t *CreateFileTool) Description() string {
	return "Propose creating a new file (requires user approval)"
}

func (t *CreateFileTool) Params() []tools.Param {
	return []tools.Param{
		{Name: "path", Type: "string", Description: "File path to create (e.g. 'src/utils.py')", Required: true},
		{Name: "content", Type: "string", Description: "Content to write to the file", Required: true},
		{Name: "reason", Type: "string", Description: "Reason for creating the file"},
	}
}

func (t *CreateFileTool) Execute(ctx context.Context, args tools.Args) tools.Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	content, ok, err := args.Text("content")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	if !ok {
		return tools.Errorf("content is required")
	}
	reason, _, err := args.OptionalString("reason")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	if reason == "" {
		reason = "Create new file: " + path
	}

	changeID := t.Handler.RequestApproval(Change{
		Op:      OpCreate,
		Path:    path,
		Content: content,
		Reason:  reason,
	})
	return tools.Ok("File creation proposed (ID: " + changeID + "). Waiting for user approval...")
}

// ModifyFileTool proposes overwriting an existing file.
type ModifyFileTool struct {
	Handler *Handler
}

func (t *ModifyFileTool) Name() string { return "modify_file" }

func (t *ModifyFileTool) Description() string {
	return "Propose modifying an existing file (requires user approval)"
}

func (t *ModifyFileTool) Params() []tools.Param {
	return []tools.Param{
		{Name: "path", Type: "string", Description: "File path to modify (e.g. 'src/main.py')", Required: true},
		{Name: "content", Type: "string", Description: "New content for the file", Required: true},
		{Name: "reason", Type: "string", Description: "Reason for modifying the file"},
	}
}

func (t *ModifyFileTool) Execute(ctx context.Context, args tools.Args) tools.Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	content, ok, err := args.Text("content")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	if !ok {
		return tools.Errorf("content is required")
	}
	reason, _, err := args.OptionalString("reason")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	if reason == "" {
		reason = "Modify file: " + path
	}

	// The current content rides along so the decision side can show
	// a diff.
	old, readErr := os.ReadFile(t.Handler.resolve(path))
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return tools.Errorf("File not found: %s", path)
		}
		return tools.Errorf("Error reading file: %v", readErr)
	}

	changeID := t.Handler.RequestApproval(Change{
		Op:         OpModify,
		Path:       path,
		Content:    content,
		OldContent: string(old),
		Reason:     reason,
	})
	return tools.Ok("File modification proposed (ID: " + changeID + "). Waiting for user approval...")
}

// DeleteFileTool proposes removing a file.
type DeleteFileTool struct {
	Handler *Handler
}

func (t *DeleteFileTool) Name() string { return "delete_file" }

func (t *DeleteFileTool) Description() string {
	return "Propose deleting a file (requires user approval)"
}

func (t *DeleteFileTool) Params() []tools.Param {
	return []tools.Param{
		{Name: "path", Type: "string", Description: "File path to delete (e.g. 'temp/old_file.txt')", Required: true},
		{Name: "reason", Type: "string", Description: "Reason for deleting the file"},
	}
}

func (t *DeleteFileTool) Execute(ctx context.Context, args tools.Args) tools.Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	reason, _, err := args.OptionalString("reason")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	if reason == "" {
		reason = "Delete file: " + path
	}

	if _, statErr := os.Stat(t.Handler.resolve(path)); statErr != nil {
		return tools.Errorf("File not found: %s", path)
	}

	changeID := t.Handler.RequestApproval(Change{
		Op:     OpDelete,
		Path:   path,
		Reason: reason,
	})
	return tools.Ok("File deletion proposed (ID: " + changeID + "). Waiting for user approval...")
}

// ShellCommandTool proposes running a shell command.
type ShellCommandTool struct {
	Handler *Handler
}

func (t *ShellCommandTool) Name() string { return "execute_shell" }

func (t *ShellCommandTool) Description() string {
	return "Execute a shell command (requires user approval)"
}

func (t *ShellCommandTool) Params() []tools.Param {
	return []tools.Param{
		{Name: "command", Type: "string", Description: "Shell command to execute (e.g. 'git status', 'npm install')", Required: true},
		{Name: "reason", Type: "string", Description: "Reason for executing the command"},
	}
}

func (t *ShellCommandTool) Execute(ctx context.Context, args tools.Args) tools.Result {
	command, err := args.RequiredString("command")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	reason, _, err := args.OptionalString("reason")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	if reason == "" {
		reason = "Execute shell command: " + command
	}

	changeID := t.Handler.RequestApproval(Change{
		Op:      OpExecuteShell,
		Command: command,
		Reason:  reason,
	})
	return tools.Ok("Shell command proposed (ID: " + changeID + "). Waiting for user approval...")
}
