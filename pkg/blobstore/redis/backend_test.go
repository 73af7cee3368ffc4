package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gezibash/arc-offload/internal/storage"
	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

func TestFactoryMissingAddr(t *testing.T) {
	_, err := factory(context.Background(), map[string]string{"addr": ""})
	if err == nil {
		t.Fatal("expected error for empty addr")
	}
	var cfgErr *storage.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error type = %T, want *storage.ConfigError", err)
	}
}

func TestFactoryBadConfig(t *testing.T) {
	cases := []map[string]string{
		{KeyAddr: "localhost:6379", KeyDB: "not-a-number"},
		{KeyAddr: "localhost:6379", KeyDB: "-1"},
		{KeyAddr: "localhost:6379", KeyDialTimeout: "soonish"},
		{KeyAddr: "localhost:6379", KeyTTL: "-5s"},
	}
	for _, cfg := range cases {
		if _, err := factory(context.Background(), cfg); err == nil {
			t.Errorf("factory(%v) succeeded, want config error", cfg)
		}
	}
}

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	store, err := blobstore.New(context.Background(), blobstore.BackendRedis, map[string]string{
		KeyAddr:      addr,
		KeyDB:        "15",
		KeyKeyPrefix: fmt.Sprintf("offload-test-%d:", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("New(redis) failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store.(*Store)
}

func TestIntegrationPutGet(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	data := []byte("integration test data")
	u, err := store.Put(ctx, "payloads", "orders/values/id-1", data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if u.Scheme != blobstore.BackendRedis || u.Bucket != "payloads" || u.Key != "orders/values/id-1" {
		t.Errorf("unexpected URI %+v", u)
	}

	got, err := store.Get(ctx, u)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get returned %q, want %q", got, data)
	}
}

func TestIntegrationGetMissing(t *testing.T) {
	store := newIntegrationStore(t)

	u := bloburi.URI{Scheme: blobstore.BackendRedis, Bucket: "payloads", Key: "missing"}
	_, err := store.Get(context.Background(), u)
	if !errors.Is(err, blobstore.ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}
}

func TestIntegrationCloseGuard(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := store.Put(ctx, "payloads", "k", []byte("x")); !errors.Is(err, blobstore.ErrClosed) {
		t.Errorf("Put after close: got %v, want ErrClosed", err)
	}
}

func TestForeignScheme(t *testing.T) {
	store := NewWithClient(nil, "offload:", 0)

	u := bloburi.URI{Scheme: "s3", Bucket: "payloads", Key: "x"}
	if _, err := store.Get(context.Background(), u); err == nil {
		t.Error("expected error for s3 URI against redis store")
	}
}
