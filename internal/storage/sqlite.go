// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS index_cache (
		fingerprint TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		record_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_index_cache_created_at ON index_cache(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// GetBlob returns the cached blob for a fingerprint. A miss is not an error.
func (s *SQLiteStore) GetBlob(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM index_cache WHERE fingerprint = ?`, fingerprint,
	).Scan(&blob)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// PutBlob stores or replaces the blob for a fingerprint.
func (s *SQLiteStore) PutBlob(ctx context.Context, fingerprint string, blob []byte, recordCount int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO index_cache (fingerprint, blob, record_count, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
		   blob = excluded.blob,
		   record_count = excluded.record_count,
		   created_at = excluded.created_at`,
		fingerprint, blob, recordCount, time.Now(),
	)
	return err
}

// Entries lists cached blobs, newest first.
func (s *SQLiteStore) Entries(ctx context.Context) ([]CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fingerprint, record_count, length(blob), created_at
		 FROM index_cache ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		if err := rows.Scan(&e.Fingerprint, &e.RecordCount, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the keep newest entries.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return fmt.Errorf("prune: keep must be non-negative, got %d", keep)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM index_cache WHERE fingerprint NOT IN (
		   SELECT fingerprint FROM index_cache ORDER BY created_at DESC LIMIT ?
		 )`, keep,
	)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
