package vector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	chunkWindow = 40
	chunkStep   = 30

	// Files above this size are skipped rather than chunked.
	maxIndexedFileSize = 1 << 20
)

// skippedDirs are never descended into while indexing.
var skippedDirs = map[string]bool{
	".git":         true,
	".squire":      true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// indexedExtensions lists the file types worth embedding.
var indexedExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".js":   true,
	".ts":   true,
	".jsx":  true,
	".tsx":  true,
	".java": true,
	".c":    true,
	".h":    true,
	".cpp":  true,
	".rs":   true,
	".rb":   true,
	".sh":   true,
	".md":   true,
	".txt":  true,
	".yml":  true,
	".yaml": true,
	".json": true,
	".toml": true,
	".sql":  true,
}

// Indexer walks a workspace and feeds code chunks into a store.
type Indexer struct {
	Store *Store
	Root  string
}

// Report summarizes one indexing run.
type Report struct {
	Files  int
	Chunks int
}

// IndexWorkspace reindexes every recognized file under the root.
func (ix *Indexer) IndexWorkspace(ctx context.Context) (Report, error) {
	var report Report
	err := filepath.WalkDir(ix.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if skippedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !indexedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxIndexedFileSize {
			return nil
		}
		chunks, err := ix.indexFile(ctx, path)
		if err != nil {
			return err
		}
		report.Files++
		report.Chunks += chunks
		return nil
	})
	return report, err
}

// IndexFile reindexes a single file, replacing any previous chunks.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	return ix.indexFile(ctx, path)
}

func (ix *Indexer) indexFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	rel, err := filepath.Rel(ix.Root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if err := ix.Store.DeleteByPath(ctx, rel); err != nil {
		return 0, err
	}
	chunks := chunkLines(string(data), chunkWindow, chunkStep)
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		_, err := ix.Store.Add(ctx, Document{
			Kind:    KindCode,
			Path:    rel,
			Chunk:   i,
			Content: chunk,
		})
		if err != nil {
			return 0, fmt.Errorf("index %s: %w", rel, err)
		}
	}
	return len(chunks), nil
}

// chunkLines splits text into overlapping line windows so matches keep
// enough surrounding context to be useful.
func chunkLines(text string, window, step int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) <= window {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(lines); start += step {
		end := start + window
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, strings.Join(lines[start:end], "\n"))
		if end == len(lines) {
			break
		}
	}
	return chunks
}
