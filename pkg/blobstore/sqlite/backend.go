// Package sqlite provides a SQLite blob store backend. A single database
// file holds every offloaded payload, which keeps local and edge
// deployments to one artifact.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gezibash/arc-offload/internal/storage"
	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

const (
	KeyPath        = "path"
	KeyJournalMode = "journal_mode"
	KeyBusyTimeout = "busy_timeout"
	KeyCacheSize   = "cache_size"
)

func init() {
	blobstore.Register(blobstore.BackendSQLite, factory, Defaults)
}

// Defaults returns the default configuration for the SQLite backend.
func Defaults() map[string]string {
	return map[string]string{
		KeyPath:        "~/.arc-offload/blobs.db",
		KeyJournalMode: "wal",
		KeyBusyTimeout: "5000",
		KeyCacheSize:   "-64000",
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
    bucket      TEXT NOT NULL,
    key         TEXT NOT NULL,
    data        BLOB NOT NULL,
    created_at  INTEGER NOT NULL,
    PRIMARY KEY (bucket, key)
);
`

func factory(_ context.Context, config map[string]string) (blobstore.Store, error) {
	path := storage.GetString(config, KeyPath, "")
	if path == "" {
		return nil, storage.NewConfigError("sqlite", KeyPath, "cannot be empty")
	}
	path = storage.ExpandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, storage.NewConfigErrorWithCause("sqlite", KeyPath, "failed to create directory", err)
	}

	journalMode := storage.GetString(config, KeyJournalMode, "wal")
	busyTimeout := storage.GetString(config, KeyBusyTimeout, "5000")
	cacheSize := storage.GetString(config, KeyCacheSize, "-64000")

	dsn := fmt.Sprintf("file:%s?_journal_mode=%s&_busy_timeout=%s&_cache_size=%s",
		path, journalMode, busyTimeout, cacheSize)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storage.NewConfigErrorWithCause("sqlite", KeyPath, "failed to open database", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storage.NewConfigErrorWithCause("sqlite", KeyPath, "failed to initialize schema", err)
	}

	slog.Info("sqlite blob store initialized", "path", path, "journal_mode", journalMode)
	return &Store{db: db}, nil
}

// Store keeps offloaded payloads as rows in a blobs table.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// Put upserts data under bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	if s.closed.Load() {
		return bloburi.URI{}, blobstore.ErrClosed
	}
	if bucket == "" {
		return bloburi.URI{}, errors.New("sqlite: bucket required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (bucket, key, data, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (bucket, key) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		bucket, key, data, time.Now().UnixNano())
	if err != nil {
		return bloburi.URI{}, fmt.Errorf("sqlite put: %w", err)
	}

	return bloburi.URI{Scheme: blobstore.BackendSQLite, Bucket: bucket, Key: key}, nil
}

// Get returns the row addressed by u.
func (s *Store) Get(ctx context.Context, u bloburi.URI) ([]byte, error) {
	if s.closed.Load() {
		return nil, blobstore.ErrClosed
	}
	if u.Scheme != blobstore.BackendSQLite {
		return nil, fmt.Errorf("sqlite: cannot resolve %q URI", u.Scheme)
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM blobs WHERE bucket = ? AND key = ?`,
		u.Bucket, u.Key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, u)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	return data, nil
}

// Close closes the database. Safe to call twice.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
