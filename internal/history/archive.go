// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a searchable archive of finalized chat messages.
//
// The archive is an append-mostly SQLite database with an FTS5 index
// over message content. It exists so old conversations stay findable
// after their sessions scroll out of the session store's retention cap.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rei-tui/internal/model"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL UNIQUE,
    session_id TEXT NOT NULL,
    session_name TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    model_id TEXT,
    created_at INTEGER NOT NULL  -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);

-- Full-text search over message content
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content,
    content='messages',
    content_rowid='id',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    DELETE FROM messages_fts WHERE rowid = old.id;
END;
`

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is the message history database.
type Archive struct {
	mu sync.RWMutex
	db *sql.DB
}

// Hit is a single search result.
type Hit struct {
	MessageID   string
	SessionID   string
	SessionName string
	Role        model.Role
	Content     string
	ModelID     string
	CreatedAt   time.Time
}

// DefaultPath returns the archive location under the config directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rei", "history.db"), nil
}

// Open opens (or creates) the archive at the given path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close releases the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// RECORDING
// =============================================================================

// Record archives the session's finalized messages. Already-archived
// messages are skipped, so recording after every sync is cheap.
func (a *Archive) Record(sess *model.ChatSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO messages
			(message_id, session_id, session_name, role, content, model_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, msg := range sess.Messages {
		if msg.IsStreaming || msg.IsEmpty() {
			continue
		}
		_, err := stmt.Exec(
			msg.ID,
			sess.ID,
			sess.Name,
			msg.Role.String(),
			msg.Content,
			msg.ModelID,
			msg.Timestamp.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to archive message: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes every archived message of a session.
func (a *Archive) DeleteSession(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.db.Exec("DELETE FROM messages WHERE session_id = ?", sessionID)
	return err
}

// =============================================================================
// QUERIES
// =============================================================================

// Search runs a full-text query over archived content, newest first.
func (a *Archive) Search(query string, limit int) ([]Hit, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	rows, err := a.db.Query(`
		SELECT m.message_id, m.session_id, m.session_name, m.role, m.content, m.model_id, m.created_at
		FROM messages_fts fts
		JOIN messages m ON m.id = fts.rowid
		WHERE messages_fts MATCH ?
		ORDER BY m.created_at DESC
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// Recent returns the most recently archived messages.
func (a *Archive) Recent(limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 50
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	rows, err := a.db.Query(`
		SELECT message_id, session_id, session_name, role, content, model_id, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHits(rows)
}

// Count returns the number of archived messages.
func (a *Archive) Count() (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var n int
	err := a.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	var hits []Hit
	for rows.Next() {
		var h Hit
		var role, modelID string
		var createdAt int64
		if err := rows.Scan(&h.MessageID, &h.SessionID, &h.SessionName, &role, &h.Content, &modelID, &createdAt); err != nil {
			continue
		}
		h.Role = model.Role(role)
		h.ModelID = modelID
		h.CreatedAt = time.Unix(createdAt, 0)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// =============================================================================
// QUERY BUILDING
// =============================================================================

// buildFTSQuery sanitizes user input into an FTS5 query. Single terms
// get prefix matching; multi-word input matches all terms.
func buildFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	query = sanitizeFTSQuery(query)

	if !strings.ContainsAny(query, " \"*") {
		return query + "*"
	}
	return query
}

// sanitizeFTSQuery escapes FTS5 special characters to prevent injection.
func sanitizeFTSQuery(query string) string {
	specialChars := []string{"\"", "*", "(", ")", "{", "}", "[", "]", ":", "^", "-", "~"}
	for _, char := range specialChars {
		query = strings.ReplaceAll(query, char, "\\"+char)
	}
	return query
}
