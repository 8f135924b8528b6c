// Package history keeps a local log of posting outcomes in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	success INTEGER NOT NULL,
	post_id TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	content_kind TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
`

// Record is one platform outcome for one post request.
type Record struct {
	ID          string
	Platform    string
	Success     bool
	PostID      string
	Error       string
	ContentKind string
	CreatedAt   time.Time
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add persists one outcome. A missing ID or timestamp is filled in.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, platform, success, post_id, error, content_kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Platform, rec.Success, rec.PostID, rec.Error, rec.ContentKind, rec.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert post record: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, success, post_id, error, content_kind, created_at
		FROM posts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Platform, &rec.Success, &rec.PostID,
			&rec.Error, &rec.ContentKind, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return records, nil
}

// Counts returns the total and successful record counts.
func (s *Store) Counts(ctx context.Context) (total, succeeded int64, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(success), 0) FROM posts").Scan(&total, &succeeded)
	if err != nil {
		return 0, 0, fmt.Errorf("count posts: %w", err)
	}
	return total, succeeded, nil
}
