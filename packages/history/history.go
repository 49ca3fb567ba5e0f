package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded request.
type Entry struct {
	ID         string
	Method     string
	URL        string
	Status     int
	DurationMs int64
	CreatedAt  time.Time
}

// Store persists entries in a SQLite database file.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);
`

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one entry and returns it with its generated ID and
// timestamp filled in.
func (s *Store) Record(method, url string, status int, duration time.Duration) (*Entry, error) {
	entry := &Entry{
		ID:         uuid.NewString(),
		Method:     method,
		URL:        url,
		Status:     status,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, method, url, status, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Method, entry.URL, entry.Status, entry.DurationMs, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record history entry: %w", err)
	}

	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, url, status, duration_ms, created_at FROM history ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Get returns one entry by ID.
func (s *Store) Get(id string) (*Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	var e Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, method, url, status, duration_ms, created_at FROM history WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.DurationMs, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("history entry %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}

	return &e, nil
}

// Clear deletes all entries.
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
