// Package history persists conversations in a DuckDB file so past runs
// can be listed, reloaded, and searched.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"squire/internal/llm"
)

// schemaDDL holds the history schema definition.
//
//go:embed schema.sql
var schemaDDL string

// Conversation is one stored conversation header.
type Conversation struct {
	ID         string
	Title      string
	Model      string
	StartedAt  time.Time
	LastActive time.Time
	Messages   int
}

// Invocation records one tool execution inside a run.
type Invocation struct {
	Tool      string
	Arguments string
	Success   bool
	Output    string
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history: path is empty")
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun appends one agent run to a conversation, creating the
// conversation header on first use. Messages keep their transcript
// order; tool invocations are recorded alongside.
func (s *Store) SaveRun(ctx context.Context, conversationID, title, model string, messages []llm.Message, invocations []Invocation) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.New("history: conversation id is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO conversations (conversation_id, title, model)
		 VALUES (?, ?, ?)
		 ON CONFLICT (conversation_id) DO NOTHING`,
		conversationID,
		Title(title),
		model,
	); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	var last sql.NullInt64
	if err := tx.QueryRowContext(
		ctx,
		`SELECT MAX(seq) FROM messages WHERE conversation_id = ?`,
		conversationID,
	).Scan(&last); err != nil {
		return fmt.Errorf("read message sequence: %w", err)
	}
	seq := int(last.Int64)
	for _, message := range messages {
		seq++
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO messages (conversation_id, seq, role, content) VALUES (?, ?, ?, ?)`,
			conversationID,
			seq,
			message.Role,
			message.Content,
		); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	for _, invocation := range invocations {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO tool_invocations (conversation_id, tool_name, arguments, success, output)
			 VALUES (?, ?, ?, ?, ?)`,
			conversationID,
			invocation.Tool,
			invocation.Arguments,
			invocation.Success,
			invocation.Output,
		); err != nil {
			return fmt.Errorf("insert tool invocation: %w", err)
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE conversations SET last_active = now() WHERE conversation_id = ?`,
		conversationID,
	); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Title derives a conversation title from its first user input: one
// line, whitespace flattened, clipped.
func Title(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return "(untitled)"
	}
	const limit = 60
	if len(flat) <= limit {
		return flat
	}
	return flat[:limit-3] + "..."
}
