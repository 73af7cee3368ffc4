// Package blobstore defines the storage contract used to offload oversized
// message payloads: writers put raw bytes under a bucket and key and receive
// the blob URI addressing them, readers resolve such URIs back to bytes.
//
// Concrete backends register themselves by name; binaries select one through
// the registry with a flat string configuration map.
package blobstore

import (
	"context"
	"errors"

	"github.com/gezibash/arc-offload/pkg/bloburi"
)

// Putter stores objects. Implementations perform no retries; a failed Put
// surfaces to the caller as-is.
type Putter interface {
	// Put writes data under bucket/key and returns the URI addressing it.
	Put(ctx context.Context, bucket, key string, data []byte) (bloburi.URI, error)
}

// Getter resolves blob URIs. A consumer that only reads backed payloads
// needs nothing beyond this.
type Getter interface {
	// Get returns the bytes stored at u. Returns ErrNotFound if no object
	// exists there.
	Get(ctx context.Context, u bloburi.URI) ([]byte, error)
}

// Store is a full read-write blob storage client.
type Store interface {
	Putter
	Getter

	// Close releases any resources held by the backend.
	Close() error
}

// Common errors.
var (
	ErrNotFound = errors.New("object not found")
	ErrClosed   = errors.New("store is closed")
)

// Backend names.
const (
	BackendS3     = "s3"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)
