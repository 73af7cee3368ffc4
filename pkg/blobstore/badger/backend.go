// Package badger provides a BadgerDB blob store backend for single-node
// deployments where payload writer and reader share a filesystem.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/gezibash/arc-offload/internal/storage"
	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

const keyPrefix = "blob/"

func init() {
	blobstore.Register(blobstore.BackendBadger, factory, defaults)
}

func defaults() map[string]string {
	return map[string]string{
		"sync_writes":         "false",
		"value_log_file_size": "256",
		"mem_table_size":      "64",
		"in_memory":           "false",
	}
}

func factory(_ context.Context, config map[string]string) (blobstore.Store, error) {
	path := storage.GetString(config, "path", "")
	inMemory, err := storage.GetBool(config, "in_memory", false)
	if err != nil {
		return nil, err
	}

	if path == "" && !inMemory {
		return nil, storage.NewConfigError("badger", "path", "required (unless in_memory=true)")
	}

	if path != "" {
		path = storage.ExpandPath(path)
	}

	syncWrites, err := storage.GetBool(config, "sync_writes", false)
	if err != nil {
		return nil, err
	}

	vlogSize, err := storage.GetInt64(config, "value_log_file_size", 256)
	if err != nil {
		return nil, err
	}

	memTableSize, err := storage.GetInt64(config, "mem_table_size", 64)
	if err != nil {
		return nil, err
	}

	opts := badgerdb.DefaultOptions(path)
	opts.SyncWrites = syncWrites
	opts.ValueLogFileSize = vlogSize * 1024 * 1024 // MB to bytes
	opts.MemTableSize = memTableSize * 1024 * 1024
	opts.Logger = nil // Suppress badger's internal logging

	if inMemory {
		opts = opts.WithInMemory(true)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}

	return &Store{db: db}, nil
}

// Store keeps offloaded payloads in a BadgerDB key-value database.
type Store struct {
	db     *badgerdb.DB
	closed atomic.Bool
}

func (s *Store) checkClosed() error {
	if s.closed.Load() {
		return blobstore.ErrClosed
	}
	return nil
}

func objectKey(bucket, key string) []byte {
	return []byte(keyPrefix + bucket + "/" + key)
}

// Put stores data under bucket/key.
func (s *Store) Put(_ context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	if err := s.checkClosed(); err != nil {
		return bloburi.URI{}, err
	}
	if bucket == "" {
		return bloburi.URI{}, errors.New("badger: bucket required")
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(objectKey(bucket, key), data)
	})
	if err != nil {
		return bloburi.URI{}, fmt.Errorf("badger: put: %w", err)
	}

	return bloburi.URI{Scheme: blobstore.BackendBadger, Bucket: bucket, Key: key}, nil
}

// Get retrieves the object addressed by u.
func (s *Store) Get(_ context.Context, u bloburi.URI) ([]byte, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	if u.Scheme != blobstore.BackendBadger {
		return nil, fmt.Errorf("badger: cannot resolve %q URI", u.Scheme)
	}

	var val []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(objectKey(u.Bucket, u.Key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, u)
		}
		return nil, fmt.Errorf("badger: get: %w", err)
	}

	return val, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}
	return s.db.Close()
}
