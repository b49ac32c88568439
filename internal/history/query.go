package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"squire/internal/llm"
)

// ErrNotFound reports a conversation id with no stored record.
var ErrNotFound = errors.New("history: conversation not found")

// SearchHit is one message matching a history search.
type SearchHit struct {
	ConversationID string
	Title          string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// Recent lists conversations ordered by most recent activity.
func (s *Store) Recent(ctx context.Context, limit int) ([]Conversation, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT c.conversation_id, c.title, c.model, c.started_at, c.last_active, COUNT(m.message_id)
		 FROM conversations c
		 LEFT JOIN messages m ON m.conversation_id = c.conversation_id
		 GROUP BY c.conversation_id, c.title, c.model, c.started_at, c.last_active
		 ORDER BY c.last_active DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var conversation Conversation
		if err := rows.Scan(
			&conversation.ID,
			&conversation.Title,
			&conversation.Model,
			&conversation.StartedAt,
			&conversation.LastActive,
			&conversation.Messages,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}

// Load returns one conversation header and its messages in transcript
// order.
func (s *Store) Load(ctx context.Context, conversationID string) (Conversation, []llm.Message, error) {
	var conversation Conversation
	err := s.db.QueryRowContext(
		ctx,
		`SELECT conversation_id, title, model, started_at, last_active
		 FROM conversations WHERE conversation_id = ?`,
		conversationID,
	).Scan(
		&conversation.ID,
		&conversation.Title,
		&conversation.Model,
		&conversation.StartedAt,
		&conversation.LastActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, nil, ErrNotFound
	}
	if err != nil {
		return Conversation{}, nil, fmt.Errorf("load conversation: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return Conversation{}, nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var messages []llm.Message
	for rows.Next() {
		var message llm.Message
		if err := rows.Scan(&message.Role, &message.Content); err != nil {
			return Conversation{}, nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return Conversation{}, nil, fmt.Errorf("load messages: %w", err)
	}
	conversation.Messages = len(messages)
	return conversation, messages, nil
}

// Search finds messages whose content contains the query,
// case-insensitive, most recent first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("history: search query is empty")
	}
	if limit < 1 {
		limit = 20
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT m.conversation_id, c.title, m.role, m.content, m.created_at
		 FROM messages m
		 JOIN conversations c ON c.conversation_id = m.conversation_id
		 WHERE lower(m.content) LIKE ? ESCAPE '\'
		 ORDER BY m.created_at DESC, m.seq DESC
		 LIMIT ?`,
		pattern,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.ConversationID, &hit.Title, &hit.Role, &hit.Content, &hit.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return hits, nil
}

// escapeLike escapes LIKE wildcards in a user query.
func escapeLike(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(text)
}
