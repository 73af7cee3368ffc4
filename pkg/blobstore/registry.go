package blobstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gezibash/arc-offload/internal/storage"
)

// Factory creates a Store from a flat configuration map.
type Factory func(ctx context.Context, config map[string]string) (Store, error)

// DefaultsFunc returns the default configuration for a backend.
type DefaultsFunc func() map[string]string

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
	defaults   = make(map[string]DefaultsFunc)
)

// Register makes a backend available under the given name. Backends call
// this from init; importing a backend package is what enables it.
//
// Register panics if name is empty, factory is nil, or name is already
// taken.
func Register(name string, factory Factory, defaultsFn DefaultsFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if name == "" {
		panic("blobstore: Register called with empty name")
	}
	if factory == nil {
		panic("blobstore: Register called with nil factory for " + name)
	}
	if _, dup := registry[name]; dup {
		panic("blobstore: Register called twice for " + name)
	}
	registry[name] = factory
	if defaultsFn != nil {
		defaults[name] = defaultsFn
	}
}

// New creates a store using the named backend. The provided config is
// merged over the backend's defaults; caller values win.
func New(ctx context.Context, backend string, config map[string]string) (Store, error) {
	registryMu.RLock()
	factory, ok := registry[backend]
	defaultsFn := defaults[backend]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("blobstore: unknown backend %q (registered: %v)", backend, ListBackends())
	}

	merged := config
	if defaultsFn != nil {
		merged = storage.MergeConfig(defaultsFn(), config)
	}
	return factory(ctx, merged)
}

// ListBackends returns the names of all registered backends, sorted.
func ListBackends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a backend with the given name exists.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[name]
	return ok
}

// GetDefaults returns a copy of the default configuration for the named
// backend, or nil if the backend is unknown or has no defaults.
func GetDefaults(name string) map[string]string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defaultsFn, ok := defaults[name]
	if !ok {
		return nil
	}
	cfg := defaultsFn()
	out := make(map[string]string, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}
