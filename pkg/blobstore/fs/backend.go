// Package fs provides a filesystem blob store backend.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gezibash/arc-offload/internal/storage"
	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

func init() {
	blobstore.Register(blobstore.BackendFile, factory, defaults)
}

func defaults() map[string]string {
	return map[string]string{
		"dir_permissions":  "0700",
		"file_permissions": "0600",
	}
}

func factory(_ context.Context, config map[string]string) (blobstore.Store, error) {
	path := storage.GetString(config, "path", "")
	if path == "" {
		return nil, storage.NewConfigError("file", "path", "required")
	}
	path = storage.ExpandPath(path)

	dirPerm, err := storage.GetFileMode(config, "dir_permissions", 0700)
	if err != nil {
		return nil, err
	}

	filePerm, err := storage.GetFileMode(config, "file_permissions", 0600)
	if err != nil {
		return nil, err
	}

	return New(path, dirPerm, filePerm)
}

// Store lays objects out as root/bucket/key files. Keys may contain
// slashes; the directories they imply are created on demand.
type Store struct {
	root     string
	dirPerm  fs.FileMode
	filePerm fs.FileMode
	closed   atomic.Bool
}

// New creates a filesystem store rooted at the given directory.
func New(root string, dirPerm, filePerm fs.FileMode) (*Store, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("fs: create store dir: %w", err)
	}
	return &Store{
		root:     root,
		dirPerm:  dirPerm,
		filePerm: filePerm,
	}, nil
}

func (s *Store) checkClosed() error {
	if s.closed.Load() {
		return blobstore.ErrClosed
	}
	return nil
}

// objectPath validates bucket and key and maps them under the root.
// Anything that would escape the root is rejected.
func (s *Store) objectPath(bucket, key string) (string, error) {
	if bucket == "" || strings.Contains(bucket, "/") || !filepath.IsLocal(bucket) {
		return "", fmt.Errorf("fs: invalid bucket %q", bucket)
	}
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("fs: invalid key %q", key)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(key)), nil
}

// Put writes data to root/bucket/key and returns the object's URI.
func (s *Store) Put(_ context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	if err := s.checkClosed(); err != nil {
		return bloburi.URI{}, err
	}

	path, err := s.objectPath(bucket, key)
	if err != nil {
		return bloburi.URI{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), s.dirPerm); err != nil {
		return bloburi.URI{}, fmt.Errorf("fs: create dir: %w", err)
	}

	// Write atomically via temp file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, s.filePerm); err != nil {
		return bloburi.URI{}, fmt.Errorf("fs: write temp: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return bloburi.URI{}, fmt.Errorf("fs: rename: %w", err)
	}

	return bloburi.URI{Scheme: blobstore.BackendFile, Bucket: bucket, Key: key}, nil
}

// Get reads the object addressed by u.
func (s *Store) Get(_ context.Context, u bloburi.URI) ([]byte, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	if u.Scheme != blobstore.BackendFile {
		return nil, fmt.Errorf("fs: cannot resolve %q URI", u.Scheme)
	}

	path, err := s.objectPath(u.Bucket, u.Key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, u)
		}
		return nil, fmt.Errorf("fs: read object: %w", err)
	}

	return data, nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.closed.Swap(true)
	return nil
}
