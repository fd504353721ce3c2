package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/parlorchat/parlor/backend/internal/model/chat"
)

// SQLiteStore persists message logs in a SQLite database. The AUTOINCREMENT
// primary key provides the per-session total order, so messages created in
// the same clock tick still list in insertion order.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path, ensuring the
// parent directory exists, and applies the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db directory %s: %v", chat.ErrStorage, dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open db at %s: %v", chat.ErrStorage, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping db at %s: %v", chat.ErrStorage, path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages(session_id, seq);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", chat.ErrStorage, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append inserts a message row for the session.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, role, content string) (chat.Message, error) {
	if err := validateAppend(sessionID, role, content); err != nil {
		return chat.Message{}, err
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID, message.SessionID, message.Role, message.Content, message.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return chat.Message{}, fmt.Errorf("%w: insert message: %v", chat.ErrStorage, err)
	}

	return message, nil
}

// ListBySession returns the session's messages ordered by insertion sequence.
func (s *SQLiteStore) ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query messages: %v", chat.ErrStorage, err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 16)
	for rows.Next() {
		var m chat.Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan message: %v", chat.ErrStorage, err)
		}
		m.CreatedAt = time.UnixMicro(createdAt).UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate messages: %v", chat.ErrStorage, err)
	}

	return messages, nil
}
