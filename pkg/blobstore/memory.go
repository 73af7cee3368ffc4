package blobstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gezibash/arc-offload/pkg/bloburi"
)

func init() {
	Register(BackendMemory, func(_ context.Context, _ map[string]string) (Store, error) {
		return NewMemoryStore(), nil
	}, nil)
}

// MemoryStore keeps objects in process memory. It backs tests and acts as
// a stand-in where durability does not matter.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[objectKey][]byte
}

type objectKey struct {
	bucket string
	key    string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[objectKey][]byte)}
}

// Put stores a copy of data under bucket/key.
func (m *MemoryStore) Put(_ context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	if bucket == "" {
		return bloburi.URI{}, errors.New("memory: bucket required")
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.objects[objectKey{bucket: bucket, key: key}] = cp
	m.mu.Unlock()

	return bloburi.URI{Scheme: BackendMemory, Bucket: bucket, Key: key}, nil
}

// Get returns a copy of the object addressed by u.
func (m *MemoryStore) Get(_ context.Context, u bloburi.URI) ([]byte, error) {
	if u.Scheme != BackendMemory {
		return nil, fmt.Errorf("memory: cannot resolve %q URI", u.Scheme)
	}

	m.mu.RLock()
	data, ok := m.objects[objectKey{bucket: u.Bucket, key: u.Key}]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
