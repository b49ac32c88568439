// Package vector maintains the workspace similarity index: document
// chunks embedded through Ollama and stored in SQLite with sqlite-vec.
package vector

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// schemaDDL holds the document table definition. The vec0 table is
// created separately because its dimension comes from config.
//
//go:embed schema.sql
var schemaDDL string

// Document kinds stored in the index.
const (
	KindCode         = "code"
	KindConversation = "conversation"
)

// Document is one indexed chunk.
type Document struct {
	ID      int64
	Kind    string
	Path    string
	Chunk   int
	Content string
}

// Match is a search hit with its cosine distance.
type Match struct {
	Document
	Distance float64
}

// Similarity converts the cosine distance into a 0..1 score.
func (m Match) Similarity() float64 {
	return 1 - m.Distance
}

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// registerOnce loads the sqlite-vec extension for all new connections.
var registerOnce sync.Once

// Store persists documents and their embeddings.
type Store struct {
	db       *sql.DB
	embedder Embedder
	dims     int
}

// Open opens (creating if needed) the index database at path.
func Open(path string, dims int, embedder Embedder) (*Store, error) {
	if dims < 1 {
		return nil, errors.New("vector: dimensions must be >= 1")
	}
	if embedder == nil {
		return nil, errors.New("vector: embedder is nil")
	}
	registerOnce.Do(sqlite_vec.Auto)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	store := &Store{db: db, embedder: embedder, dims: dims}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("apply index schema: %w", err)
	}
	ddl := fmt.Sprintf(
		"CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(embedding float[%d] distance_metric=cosine)",
		s.dims,
	)
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}

// Add embeds and stores one document, returning its id.
func (s *Store) Add(ctx context.Context, doc Document) (int64, error) {
	embedding, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return 0, fmt.Errorf("embed document: %w", err)
	}
	if len(embedding) != s.dims {
		return 0, fmt.Errorf("embedding has %d dimensions, index expects %d", len(embedding), s.dims)
	}
	serialized, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return 0, fmt.Errorf("serialize embedding: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO documents (kind, path, chunk, content) VALUES (?, ?, ?, ?)`,
		doc.Kind, doc.Path, doc.Chunk, doc.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("document id: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO vec_documents (rowid, embedding) VALUES (?, ?)`,
		id, serialized,
	); err != nil {
		return 0, fmt.Errorf("insert embedding: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

// Search returns the topK nearest documents for a query, optionally
// restricted to one kind. The KNN pass over-fetches because the kind
// filter can only run after the vector scan.
func (s *Store) Search(ctx context.Context, query, kind string, topK int) ([]Match, error) {
	if topK < 1 {
		topK = 5
	}
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	serialized, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serialize query: %w", err)
	}

	fetch := topK
	if kind != "" {
		fetch = topK * 8
		if fetch > 256 {
			fetch = 256
		}
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT d.id, d.kind, d.path, d.chunk, d.content, knn.distance
		 FROM (
		     SELECT rowid, distance
		     FROM vec_documents
		     WHERE embedding MATCH ?
		     ORDER BY distance
		     LIMIT ?
		 ) AS knn
		 JOIN documents d ON d.id = knn.rowid
		 ORDER BY knn.distance`,
		serialized, fetch,
	)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var match Match
		if err := rows.Scan(&match.ID, &match.Kind, &match.Path, &match.Chunk, &match.Content, &match.Distance); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if kind != "" && match.Kind != kind {
			continue
		}
		matches = append(matches, match)
		if len(matches) == topK {
			break
		}
	}
	return matches, rows.Err()
}

// DeleteByPath removes all chunks for a path, for reindexing.
func (s *Store) DeleteByPath(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM vec_documents WHERE rowid IN (SELECT id FROM documents WHERE path = ?)`,
		path,
	); err != nil {
		return fmt.Errorf("delete embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return tx.Commit()
}

// Stats summarizes the index contents.
type Stats struct {
	Documents int
	Paths     int
}

// Stats reports document and distinct path counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COUNT(DISTINCT path) FROM documents`,
	)
	if err := row.Scan(&stats.Documents, &stats.Paths); err != nil {
		return Stats{}, fmt.Errorf("index stats: %w", err)
	}
	return stats, nil
}
