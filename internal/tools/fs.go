package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFileTool reads file contents for the model.
type ReadFileTool struct {
	MaxOutputBytes int
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file"
}

func (t *ReadFileTool) Params() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Path to the file to read (e.g. 'config.py')", Required: true},
		{Name: "max_lines", Type: "integer", Description: "Maximum number of lines to read"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args Args) Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return Errorf("%v", err)
	}
	maxLines, err := args.OptionalInt("max_lines")
	if err != nil {
		return Errorf("%v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Errorf("File not found: %s", path)
		}
		return Errorf("read %s: %v", path, err)
	}

	content := string(data)
	if maxLines != nil && *maxLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > *maxLines {
			content = strings.Join(lines[:*maxLines], "\n")
		}
	}
	return Ok(clipOutput(content, t.MaxOutputBytes))
}

// ListDirectoryTool lists directory entries, optionally recursively.
type ListDirectoryTool struct {
	MaxOutputBytes int
}

func (t *ListDirectoryTool) Name() string { return "list_directory" }

func (t *ListDirectoryTool) Description() string {
	return "List files and directories in a path"
}

func (t *ListDirectoryTool) Params() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Directory path to list (default: current directory)"},
		{Name: "recursive", Type: "boolean", Description: "List recursively (default: false)"},
	}
}

func (t *ListDirectoryTool) Execute(ctx context.Context, args Args) Result {
	path, ok, err := args.OptionalString("path")
	if err != nil {
		return Errorf("%v", err)
	}
	if !ok || path == "" {
		path = "."
	}
	recursive, err := args.OptionalBool("recursive")
	if err != nil {
		return Errorf("%v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Errorf("Path not found: %s", path)
		}
		return Errorf("stat %s: %v", path, err)
	}
	if !info.IsDir() {
		return Errorf("Not a directory: %s", path)
	}

	var output string
	if recursive != nil && *recursive {
		output, err = listRecursive(path)
		if err != nil {
			return Errorf("walk %s: %v", path, err)
		}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return Errorf("list %s: %v", path, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		output = strings.Join(names, "\n")
	}
	return Ok(clipOutput(output, t.MaxOutputBytes))
}

// listRecursive renders a directory tree with two-space indentation.
func listRecursive(root string) (string, error) {
	var lines []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(os.PathSeparator)) + 1
		}
		indent := strings.Repeat("  ", depth)
		if entry.IsDir() {
			lines = append(lines, fmt.Sprintf("%s%s/", indent, entry.Name()))
		} else {
			lines = append(lines, indent+entry.Name())
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}
