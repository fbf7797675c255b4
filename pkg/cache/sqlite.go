package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS artifacts (
	key        TEXT PRIMARY KEY,
	stage      TEXT NOT NULL,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

//SQLiteStore keeps artifacts as rows of a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

//OpenSQLite opens (creating if needed) the artifact database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating artifact dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating artifacts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

//Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

//Get reads the artifact for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM artifacts WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", key, err)
	}
	return payload, nil
}

//Put inserts or replaces the artifact for key.
func (s *SQLiteStore) Put(ctx context.Context, key, stage string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (key, stage, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET stage = excluded.stage, payload = excluded.payload, updated_at = excluded.updated_at`,
		key, stage, payload, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("writing artifact %s: %w", key, err)
	}
	return nil
}

//Delete removes the artifact for key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting artifact %s: %w", key, err)
	}
	return nil
}

var _ BlobStore = (*SQLiteStore)(nil)
