package approval

import (
	"fmt"
	"strings"
	"testing"
)

func TestUnifiedDiff(t *testing.T) {
	change := Change{
		Op:         OpModify,
		Path:       "f.txt",
		OldContent: "one\ntwo\nthree\n",
		Content:    "one\n2\nthree\n",
	}
	want := strings.Join([]string{
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,3 +1,3 @@",
		" one",
		"-two",
		"+2",
		" three",
	}, "\n")
	if got := change.Diff(); got != want {
		t.Fatalf("unexpected diff:\n%s\nwant:\n%s", got, want)
	}
}

func TestDiffOnlyForModify(t *testing.T) {
	if diff := (Change{Op: OpCreate, Path: "a", Content: "x"}).Diff(); diff != "" {
		t.Fatalf("expected no diff for create, got %q", diff)
	}
	if diff := (Change{Op: OpModify, Path: "a", Content: "x"}).Diff(); diff != "" {
		t.Fatalf("expected no diff without old content, got %q", diff)
	}
}

func TestUnifiedDiffNoChanges(t *testing.T) {
	if diff := unifiedDiff("same\n", "same\n", "a/f", "b/f"); diff != "" {
		t.Fatalf("expected empty diff, got %q", diff)
	}
}

func TestUnifiedDiffSplitsHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 1; i <= 10; i++ {
		oldLines = append(oldLines, fmt.Sprintf("l%d", i))
		newLines = append(newLines, fmt.Sprintf("l%d", i))
	}
	newLines[0] = "L1"
	newLines[9] = "L10"

	diff := unifiedDiff(strings.Join(oldLines, "\n"), strings.Join(newLines, "\n"), "a/f", "b/f")
	if strings.Count(diff, "@@") != 4 {
		t.Fatalf("expected two hunks, got:\n%s", diff)
	}
	if !strings.Contains(diff, "@@ -1,4 +1,4 @@") || !strings.Contains(diff, "@@ -7,4 +7,4 @@") {
		t.Fatalf("unexpected hunk headers:\n%s", diff)
	}
	if !strings.Contains(diff, "-l1\n+L1") || !strings.Contains(diff, "-l10\n+L10") {
		t.Fatalf("expected both edits present:\n%s", diff)
	}
}

func TestUnifiedDiffAppend(t *testing.T) {
	diff := unifiedDiff("a\n", "a\nb\n", "a/f", "b/f")
	if !strings.Contains(diff, "+b") {
		t.Fatalf("expected appended line, got:\n%s", diff)
	}
	if !strings.Contains(diff, "@@ -1 +1,2 @@") {
		t.Fatalf("unexpected hunk header:\n%s", diff)
	}
}
