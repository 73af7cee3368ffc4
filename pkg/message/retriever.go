package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
	"github.com/gezibash/arc-offload/pkg/payload"
)

// RetrieverConfig configures the consuming side.
type RetrieverConfig struct {
	// UseHeaders must match the producing side's wire variant.
	UseHeaders bool
}

// Retriever resolves wire payloads back to original bytes. Immutable after
// construction and safe for concurrent use.
type Retriever struct {
	store    blobstore.Getter
	protocol payload.Protocol
}

// NewRetriever builds a Retriever reading through store. A consumer that
// only ever sees inline payloads may pass a nil store; resolving a backed
// payload then fails with a clear error instead of fetching.
func NewRetriever(store blobstore.Getter, cfg RetrieverConfig) *Retriever {
	return &Retriever{
		store:    store,
		protocol: payload.ProtocolFor(cfg.UseHeaders),
	}
}

// RetrieveBytes turns one wire payload back into the original bytes. A nil
// payload stays nil. Non-backed payloads are returned as carried; backed
// ones are fetched from blob storage by the URI they carry. Corrupt markers
// and malformed URIs are fatal: returning the raw wire bytes instead would
// hand the application garbage that looks like data.
func (r *Retriever) RetrieveBytes(ctx context.Context, isKey bool, attrs *payload.Attributes, data []byte) ([]byte, error) {
	if data == nil {
		return nil, nil
	}

	p, err := r.protocol.Deserialize(data, attrs, isKey)
	if err != nil {
		return nil, err
	}
	if !p.Backed {
		return p.Data, nil
	}

	u, err := bloburi.Parse(string(p.Data))
	if err != nil {
		return nil, fmt.Errorf("message: parse payload uri: %w", err)
	}
	if r.store == nil {
		return nil, errors.New("message: backed payload but no blob store configured")
	}

	fetched, err := r.store.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("message: resolve %s: %w", u, err)
	}

	slog.DebugContext(ctx, "payload resolved",
		"is_key", isKey, "uri", u.String(), "size_bytes", len(fetched))

	return fetched, nil
}
