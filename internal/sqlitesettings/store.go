// Package sqlitesettings provides a durable implementation of the
// settings.Store interface backed by a single-file SQLite database.
//
// The schema is one key/value table. This keeps the store's contract
// honest: callers only ever replay by prefix or save one record, so no
// richer schema is warranted.
package sqlitesettings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/settings"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// Store persists records in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// settings table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load replays all records under prefix in ascending key order.
func (s *Store) Load(ctx context.Context, prefix string, fn settings.LoadFunc) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE key LIKE ? || '/%' ORDER BY key`, prefix)
	if err != nil {
		return fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	logger := ctxlog.FromContext(ctx)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan settings row: %w", err)
		}
		if err := fn(strings.TrimPrefix(key, prefix+"/"), value); err != nil {
			logger.Warn("Stored record rejected during replay.", "key", key, "error", err)
		}
	}

	return rows.Err()
}

// SaveOne stores one record, replacing any previous value. The write is
// committed before SaveOne returns.
func (s *Store) SaveOne(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("save setting %q: %w", key, err)
	}
	return nil
}
