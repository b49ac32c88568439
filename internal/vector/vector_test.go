package vector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubEmbedder returns canned vectors keyed by text, with a fallback
// so unknown inputs still embed.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return s.fallback, nil
}

func newTestStore(t *testing.T, embedder Embedder) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	store, err := Open(path, 3, embedder)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAddAndSearch(t *testing.T) {
	embedder := &stubEmbedder{
		vectors: map[string][]float32{
			"parse config files":  {1, 0, 0},
			"render html tables":  {0, 1, 0},
			"stream chat replies": {0, 0, 1},
			"config parsing":      {0.9, 0.1, 0},
		},
		fallback: []float32{1, 0, 0},
	}
	store := newTestStore(t, embedder)
	ctx := context.Background()

	for i, content := range []string{"parse config files", "render html tables", "stream chat replies"} {
		if _, err := store.Add(ctx, Document{Kind: KindCode, Path: "src/a.go", Chunk: i, Content: content}); err != nil {
			t.Fatalf("add document: %v", err)
		}
	}

	matches, err := store.Search(ctx, "config parsing", "", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Content != "parse config files" {
		t.Fatalf("expected config document first, got %q", matches[0].Content)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Fatalf("matches not ordered by distance: %v then %v", matches[0].Distance, matches[1].Distance)
	}
	if sim := matches[0].Similarity(); sim < 0.9 {
		t.Fatalf("expected near-identical similarity, got %v", sim)
	}
}

func TestStoreSearchKindFilter(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float32{1, 0, 0}}
	store := newTestStore(t, embedder)
	ctx := context.Background()

	if _, err := store.Add(ctx, Document{Kind: KindCode, Path: "a.go", Content: "code chunk"}); err != nil {
		t.Fatalf("add code: %v", err)
	}
	if _, err := store.Add(ctx, Document{Kind: KindConversation, Content: "chat about testing"}); err != nil {
		t.Fatalf("add conversation: %v", err)
	}

	matches, err := store.Search(ctx, "anything", KindConversation, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 conversation match, got %d", len(matches))
	}
	if matches[0].Kind != KindConversation {
		t.Fatalf("expected conversation kind, got %q", matches[0].Kind)
	}
}

func TestStoreDeleteByPath(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float32{0, 1, 0}}
	store := newTestStore(t, embedder)
	ctx := context.Background()

	for chunk := 0; chunk < 3; chunk++ {
		if _, err := store.Add(ctx, Document{Kind: KindCode, Path: "gone.go", Chunk: chunk, Content: "x"}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := store.Add(ctx, Document{Kind: KindCode, Path: "kept.go", Content: "y"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.DeleteByPath(ctx, "gone.go"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Documents != 1 || stats.Paths != 1 {
		t.Fatalf("expected 1 document on 1 path after delete, got %+v", stats)
	}
}

func TestStoreRejectsWrongDimensions(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float32{1, 0}}
	store := newTestStore(t, embedder)

	_, err := store.Add(context.Background(), Document{Kind: KindCode, Content: "short vector"})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if !strings.Contains(err.Error(), "dimensions") {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestChunkLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("line\n")
	}
	chunks := chunkLines(b.String(), 40, 30)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	first := strings.Count(chunks[0], "\n")
	if first != 39 {
		t.Fatalf("expected 40-line window, got %d newlines", first)
	}

	short := chunkLines("one\ntwo", 40, 30)
	if len(short) != 1 || short[0] != "one\ntwo" {
		t.Fatalf("expected short text to stay one chunk, got %q", short)
	}
}

func TestIndexWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(root, "notes.md"), "# notes\n")
	writeFile(t, filepath.Join(root, "image.png"), "not text")
	writeFile(t, filepath.Join(root, ".git", "config"), "[core]\n")
	writeFile(t, filepath.Join(root, "node_modules", "dep.js"), "module.exports = 1\n")

	embedder := &stubEmbedder{fallback: []float32{1, 0, 0}}
	store := newTestStore(t, embedder)
	indexer := &Indexer{Store: store, Root: root}

	report, err := indexer.IndexWorkspace(context.Background())
	if err != nil {
		t.Fatalf("index workspace: %v", err)
	}
	if report.Files != 2 {
		t.Fatalf("expected 2 indexed files, got %d", report.Files)
	}
	if report.Chunks == 0 {
		t.Fatal("expected at least one chunk")
	}

	matches, err := store.Search(context.Background(), "main", KindCode, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, match := range matches {
		if match.Path != "main.go" && match.Path != "notes.md" {
			t.Fatalf("unexpected indexed path %q", match.Path)
		}
	}
}

func TestIndexFileReplacesChunks(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "app.go")
	writeFile(t, path, "package app\n")

	embedder := &stubEmbedder{fallback: []float32{0, 0, 1}}
	store := newTestStore(t, embedder)
	indexer := &Indexer{Store: store, Root: root}
	ctx := context.Background()

	if _, err := indexer.IndexFile(ctx, path); err != nil {
		t.Fatalf("first index: %v", err)
	}
	if _, err := indexer.IndexFile(ctx, path); err != nil {
		t.Fatalf("second index: %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Documents != 1 {
		t.Fatalf("expected reindex to replace chunks, got %d documents", stats.Documents)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
