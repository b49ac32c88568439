package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tool := &ReadFileTool{}
	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "`+path+`"}`))
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Output != "alpha\nbeta\ngamma\n" {
		t.Fatalf("unexpected output: %q", result.Output)
	}
}

func TestReadFileNotFound(t *testing.T) {
	tool := &ReadFileTool{}
	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "no-such-file.txt"}`))
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "File not found: no-such-file.txt" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestReadFileMaxLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.txt")
	if err := os.WriteFile(path, []byte("1\n2\n3\n4\n5"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tool := &ReadFileTool{}
	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "`+path+`", "max_lines": 2}`))
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Output != "1\n2" {
		t.Fatalf("expected first two lines, got %q", result.Output)
	}
}

func TestReadFileClipsOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 200)), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tool := &ReadFileTool{MaxOutputBytes: 100}
	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "`+path+`"}`))
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if len(result.Output) != 100 {
		t.Fatalf("expected clipped output of 100 bytes, got %d", len(result.Output))
	}
	if !strings.HasSuffix(result.Output, truncationMarker) {
		t.Fatalf("expected truncation marker, got %q", result.Output)
	}
}

func TestListDirectorySorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zebra.txt", "apple.txt", "mango.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	tool := &ListDirectoryTool{}
	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "`+dir+`"}`))
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Output != "apple.txt\nmango.txt\nzebra.txt" {
		t.Fatalf("expected sorted listing, got %q", result.Output)
	}
}

func TestListDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "inner.txt"), nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "top.txt"), nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tool := &ListDirectoryTool{}
	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "`+dir+`", "recursive": true}`))
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if !strings.Contains(result.Output, "  sub/") {
		t.Fatalf("expected indented subdirectory, got %q", result.Output)
	}
	if !strings.Contains(result.Output, "    inner.txt") {
		t.Fatalf("expected nested file, got %q", result.Output)
	}
}

func TestListDirectoryErrors(t *testing.T) {
	tool := &ListDirectoryTool{}

	result := tool.Execute(context.Background(), parseArgs(t, `{"path": "no-such-dir"}`))
	if result.Error != "Path not found: no-such-dir" {
		t.Fatalf("unexpected error: %q", result.Error)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = tool.Execute(context.Background(), parseArgs(t, `{"path": "`+file+`"}`))
	if result.Error != "Not a directory: "+file {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}
