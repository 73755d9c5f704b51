// Package chatlog persists chat conversations to a SQLite database so they
// can be reloaded as context or exported as markdown.
package chatlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

//go:embed schema.sql
var schema string

// Message is one chat message in a conversation.
type Message struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// Conversation is a saved chat with its message count.
type Conversation struct {
	ID           string
	Name         string
	Model        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Store persists conversations to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("chatlog: open: %w", err)
	}

	// WAL for concurrent reads while a chat is streaming.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("chatlog: set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("chatlog: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("chatlog: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a conversation under a name, replacing any previous messages
// saved under the same name.
func (s *Store) Save(ctx context.Context, name, model string, messages []Message) (string, error) {
	if name == "" {
		return "", errors.InvalidParams("conversation name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("chatlog: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM conversations WHERE name = ?`, name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO conversations (id, name, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			id, name, model, now, now)
		if err != nil {
			return "", fmt.Errorf("chatlog: insert conversation: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("chatlog: lookup conversation: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE conversations SET model = ?, updated_at = ? WHERE id = ?`, model, now, id); err != nil {
			return "", fmt.Errorf("chatlog: update conversation: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
			return "", fmt.Errorf("chatlog: clear messages: %w", err)
		}
	}

	for _, msg := range messages {
		createdAt := msg.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
			id, msg.Role, msg.Content, createdAt); err != nil {
			return "", fmt.Errorf("chatlog: insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("chatlog: commit: %w", err)
	}
	return id, nil
}

// List returns all saved conversations, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.model, c.created_at, c.updated_at, COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("chatlog: list: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.Name, &c.Model, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
			return nil, fmt.Errorf("chatlog: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Load returns a conversation and its messages in order.
func (s *Store) Load(ctx context.Context, name string) (*Conversation, []Message, error) {
	var c Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, model, created_at, updated_at FROM conversations WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Model, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, errors.ChatNotFound(name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("chatlog: load: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY id`, c.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("chatlog: load messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("chatlog: scan message: %w", err)
		}
		messages = append(messages, m)
	}
	c.MessageCount = len(messages)
	return &c, messages, rows.Err()
}

// Delete removes a saved conversation and its messages.
func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("chatlog: delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("chatlog: delete: %w", err)
	}
	if affected == 0 {
		return errors.ChatNotFound(name)
	}
	return nil
}

// ExportMarkdown renders messages in the transcript format used by chat
// exports: an emoji prefix, the capitalized role in bold, then the content.
func ExportMarkdown(messages []Message) string {
	var b strings.Builder
	for _, msg := range messages {
		prefix := "🤖"
		if msg.Role == "user" {
			prefix = "🧑"
		}
		fmt.Fprintf(&b, "%s **%s**: %s\n\n", prefix, capitalize(msg.Role), msg.Content)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
