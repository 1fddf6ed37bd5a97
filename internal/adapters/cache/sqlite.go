package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore persists documents in a single SQLite table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at dsn and ensures the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(ErrStore, "open database", goerr.V("dsn", dsn), goerr.V("cause", err.Error()))
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if dsn != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(ErrStore, "enable WAL", goerr.V("cause", err.Error()))
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(ErrStore, "create schema", goerr.V("cause", err.Error()))
	}
	return s, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM documents WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "get", goerr.V("key", key))
	}
	if err != nil {
		return nil, goerr.Wrap(ErrStore, "get", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return json.RawMessage(value), nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return goerr.Wrap(ErrStore, "value is not valid JSON", goerr.V("key", key))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return goerr.Wrap(ErrStore, "put", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return nil
}

// UpdatedAt implements Store.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var stamp string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM documents WHERE key = ?", key).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, goerr.Wrap(ErrNotFound, "updated_at", goerr.V("key", key))
	}
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrStore, "updated_at", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrStore, "parse updated_at", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return t, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
