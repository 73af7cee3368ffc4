package badger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := blobstore.New(context.Background(), blobstore.BackendBadger, map[string]string{
		"in_memory": "true",
	})
	if err != nil {
		t.Fatalf("New(badger) failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store.(*Store)
}

func TestPutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := []byte("hello badger")
	u, err := store.Put(ctx, "payloads", "orders/values/id-1", data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if u.Scheme != blobstore.BackendBadger || u.Bucket != "payloads" || u.Key != "orders/values/id-1" {
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

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := blobstore.New(ctx, blobstore.BackendBadger, map[string]string{"path": dir})
	if err != nil {
		t.Fatalf("New(badger) failed: %v", err)
	}
	u, err := store.Put(ctx, "payloads", "k", []byte("durable"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := blobstore.New(ctx, blobstore.BackendBadger, map[string]string{"path": dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, u)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("Get returned %q, want %q", got, "durable")
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	u := bloburi.URI{Scheme: blobstore.BackendBadger, Bucket: "payloads", Key: "missing"}
	_, err := store.Get(context.Background(), u)
	if !errors.Is(err, blobstore.ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}
}

func TestForeignScheme(t *testing.T) {
	store := newTestStore(t)

	u := bloburi.URI{Scheme: "redis", Bucket: "payloads", Key: "x"}
	if _, err := store.Get(context.Background(), u); err == nil {
		t.Error("expected error for redis URI against badger store")
	}
}

func TestCloseGuard(t *testing.T) {
	store := newTestStore(t)
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
	u := bloburi.URI{Scheme: blobstore.BackendBadger, Bucket: "payloads", Key: "k"}
	if _, err := store.Get(ctx, u); !errors.Is(err, blobstore.ErrClosed) {
		t.Errorf("Get after close: got %v, want ErrClosed", err)
	}
}

func TestFactoryRequiresPath(t *testing.T) {
	_, err := blobstore.New(context.Background(), blobstore.BackendBadger, nil)
	if err == nil {
		t.Fatal("expected error without path or in_memory")
	}
}
