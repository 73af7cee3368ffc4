package message

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
	"github.com/gezibash/arc-offload/pkg/payload"
)

// recordingGetter serves objects from a map keyed by URI string.
type recordingGetter struct {
	mu      sync.Mutex
	objects map[string][]byte
	calls   int
}

func (g *recordingGetter) Get(_ context.Context, u bloburi.URI) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	data, ok := g.objects[u.String()]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return data, nil
}

func TestRetrieveInline(t *testing.T) {
	getter := &recordingGetter{}
	retriever := NewRetriever(getter, RetrieverConfig{})

	wire := append([]byte{0}, []byte("test")...)
	got, err := retriever.RetrieveBytes(context.Background(), false, nil, wire)
	if err != nil {
		t.Fatalf("RetrieveBytes failed: %v", err)
	}
	if string(got) != "test" {
		t.Errorf("got %q, want %q", got, "test")
	}
	if getter.calls != 0 {
		t.Errorf("Get called %d times for inline payload", getter.calls)
	}
}

func TestRetrieveNilPassesThrough(t *testing.T) {
	getter := &recordingGetter{}
	retriever := NewRetriever(getter, RetrieverConfig{})

	got, err := retriever.RetrieveBytes(context.Background(), false, nil, nil)
	if err != nil {
		t.Fatalf("RetrieveBytes failed: %v", err)
	}
	if got != nil {
		t.Errorf("nil wire produced %v", got)
	}
	if getter.calls != 0 {
		t.Error("nil wire reached storage")
	}
}

func TestRetrieveBacked(t *testing.T) {
	stored := []byte("the original payload")
	getter := &recordingGetter{objects: map[string][]byte{
		"s3://bucket/base/orders/values/id-1": stored,
	}}
	retriever := NewRetriever(getter, RetrieverConfig{})

	wire := append([]byte{1}, []byte("s3://bucket/base/orders/values/id-1")...)
	got, err := retriever.RetrieveBytes(context.Background(), false, nil, wire)
	if err != nil {
		t.Fatalf("RetrieveBytes failed: %v", err)
	}
	if !bytes.Equal(got, stored) {
		t.Errorf("got %q, want %q", got, stored)
	}
	if getter.calls != 1 {
		t.Errorf("Get called %d times, want 1", getter.calls)
	}
}

func TestRetrieveHeaderInlineAliasesWire(t *testing.T) {
	retriever := NewRetriever(&recordingGetter{}, RetrieverConfig{UseHeaders: true})

	var attrs payload.Attributes
	attrs.Add(payload.HeaderName(false), []byte{0})

	wire := []byte("raw payload bytes")
	got, err := retriever.RetrieveBytes(context.Background(), false, &attrs, wire)
	if err != nil {
		t.Fatalf("RetrieveBytes failed: %v", err)
	}
	if len(got) != len(wire) || &got[0] != &wire[0] {
		t.Error("header variant must hand back the wire bytes untouched")
	}
}

func TestRetrieveHeaderBacked(t *testing.T) {
	stored := []byte("offloaded")
	getter := &recordingGetter{objects: map[string][]byte{
		"s3://bucket/orders/keys/id-2": stored,
	}}
	retriever := NewRetriever(getter, RetrieverConfig{UseHeaders: true})

	var attrs payload.Attributes
	attrs.Add(payload.HeaderName(true), []byte{1})

	got, err := retriever.RetrieveBytes(context.Background(), true, &attrs, []byte("s3://bucket/orders/keys/id-2"))
	if err != nil {
		t.Fatalf("RetrieveBytes failed: %v", err)
	}
	if !bytes.Equal(got, stored) {
		t.Errorf("got %q, want %q", got, stored)
	}
}

func TestRetrieveHeaderMissingMarker(t *testing.T) {
	retriever := NewRetriever(&recordingGetter{}, RetrieverConfig{UseHeaders: true})

	var attrs payload.Attributes
	_, err := retriever.RetrieveBytes(context.Background(), false, &attrs, []byte("data"))
	if !errors.Is(err, payload.ErrMissingAttribute) {
		t.Errorf("got %v, want ErrMissingAttribute", err)
	}

	// A marker for the other field role does not count.
	attrs.Add(payload.HeaderName(true), []byte{0})
	_, err = retriever.RetrieveBytes(context.Background(), false, &attrs, []byte("data"))
	if !errors.Is(err, payload.ErrMissingAttribute) {
		t.Errorf("got %v, want ErrMissingAttribute for wrong-role marker", err)
	}
}

func TestRetrieveCorruptFlag(t *testing.T) {
	retriever := NewRetriever(&recordingGetter{}, RetrieverConfig{})

	_, err := retriever.RetrieveBytes(context.Background(), false, nil, []byte{2, 'x'})
	if !errors.Is(err, payload.ErrInvalidFlag) {
		t.Errorf("got %v, want ErrInvalidFlag", err)
	}
}

func TestRetrieveMalformedURI(t *testing.T) {
	retriever := NewRetriever(&recordingGetter{}, RetrieverConfig{})

	wire := append([]byte{1}, []byte("not a uri")...)
	_, err := retriever.RetrieveBytes(context.Background(), false, nil, wire)
	if !errors.Is(err, bloburi.ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestRetrieveFetchError(t *testing.T) {
	getter := &recordingGetter{} // empty: every fetch misses
	retriever := NewRetriever(getter, RetrieverConfig{})

	wire := append([]byte{1}, []byte("s3://bucket/gone")...)
	_, err := retriever.RetrieveBytes(context.Background(), false, nil, wire)
	if !errors.Is(err, blobstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRetrieveNilStore(t *testing.T) {
	retriever := NewRetriever(nil, RetrieverConfig{})
	ctx := context.Background()

	// Inline traffic needs no store.
	got, err := retriever.RetrieveBytes(ctx, false, nil, append([]byte{0}, 'h', 'i'))
	if err != nil || string(got) != "hi" {
		t.Fatalf("inline retrieve = %q, %v", got, err)
	}

	// Backed traffic fails with a clear error rather than a panic.
	_, err = retriever.RetrieveBytes(ctx, false, nil, append([]byte{1}, []byte("s3://bucket/k")...))
	if err == nil {
		t.Error("backed payload with nil store accepted")
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	payloads := map[string][]byte{
		"small": []byte("tiny"),
		"empty": {},
		"large": bytes.Repeat([]byte("x"), 2048),
	}

	for _, useHeaders := range []bool{false, true} {
		store := blobstore.NewMemoryStore()
		storer, err := NewStorer(store, StorerConfig{
			MaxByteSize: 512,
			BasePath:    "memory://payloads/round-trip",
			UseHeaders:  useHeaders,
		})
		if err != nil {
			t.Fatalf("NewStorer failed: %v", err)
		}
		retriever := NewRetriever(store, RetrieverConfig{UseHeaders: useHeaders})

		for name, data := range payloads {
			for _, isKey := range []bool{false, true} {
				var attrs payload.Attributes
				wire, err := storer.StoreBytes(ctx, "orders", isKey, &attrs, data)
				if err != nil {
					t.Fatalf("headers=%v %s isKey=%v: store: %v", useHeaders, name, isKey, err)
				}
				got, err := retriever.RetrieveBytes(ctx, isKey, &attrs, wire)
				if err != nil {
					t.Fatalf("headers=%v %s isKey=%v: retrieve: %v", useHeaders, name, isKey, err)
				}
				if !bytes.Equal(got, data) {
					t.Errorf("headers=%v %s isKey=%v: got %d bytes, want %d", useHeaders, name, isKey, len(got), len(data))
				}
			}
		}
	}
}
