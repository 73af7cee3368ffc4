// Package message implements the two ends of payload offloading. A Storer
// sits on the producing side: payloads above a size threshold go to blob
// storage and travel as URI references, the rest travel inline. A Retriever
// sits on the consuming side and resolves whatever arrives back to the
// original bytes.
//
// Both ends must agree on the wire variant (byte flag or header attribute);
// there is no detection or fallback between the two.
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
	"github.com/gezibash/arc-offload/pkg/payload"
)

// StorerConfig configures the producing side.
type StorerConfig struct {
	// MaxByteSize is the largest payload size that stays inline. Anything
	// strictly larger is offloaded.
	MaxByteSize int

	// BasePath addresses where offloaded payloads go, e.g.
	// "s3://bucket/prefix". The scheme selects the backend at wiring time;
	// the Storer itself only uses bucket and key prefix.
	BasePath string

	// UseHeaders selects the header-attribute wire variant instead of the
	// byte-flag one.
	UseHeaders bool

	// GenerateID overrides blob id generation. Defaults to uuid.NewString.
	// Ids must be unique per call; they are never derived from content.
	GenerateID func() string
}

// Storer decides per payload whether to offload, and serializes the result.
// Immutable after construction and safe for concurrent use.
type Storer struct {
	store    blobstore.Putter
	protocol payload.Protocol
	max      int
	bucket   string
	baseKey  string
	genID    func() string
}

// NewStorer validates cfg and builds a Storer writing through store.
func NewStorer(store blobstore.Putter, cfg StorerConfig) (*Storer, error) {
	if store == nil {
		return nil, errors.New("message: blob store required")
	}
	if cfg.MaxByteSize < 0 {
		return nil, fmt.Errorf("message: negative max byte size %d", cfg.MaxByteSize)
	}

	base, err := bloburi.Parse(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("message: parse base path: %w", err)
	}

	genID := cfg.GenerateID
	if genID == nil {
		genID = uuid.NewString
	}

	return &Storer{
		store:    store,
		protocol: payload.ProtocolFor(cfg.UseHeaders),
		max:      cfg.MaxByteSize,
		bucket:   base.Bucket,
		baseKey:  strings.TrimSuffix(base.Key, "/"),
		genID:    genID,
	}, nil
}

// StoreBytes prepares one payload for the wire. A nil payload stays nil
// (broker tombstones pass through untouched). Payloads up to the threshold
// are serialized inline; larger ones are written to blob storage under a
// fresh key and serialized as the returned URI.
func (s *Storer) StoreBytes(ctx context.Context, topic string, isKey bool, attrs *payload.Attributes, data []byte) ([]byte, error) {
	if data == nil {
		return nil, nil
	}

	if len(data) <= s.max {
		return s.protocol.Serialize(payload.OfBytes(data), attrs, isKey)
	}

	if topic == "" {
		return nil, errors.New("message: topic required to offload")
	}

	u, err := s.store.Put(ctx, s.bucket, s.objectKey(topic, isKey), data)
	if err != nil {
		return nil, fmt.Errorf("message: offload payload: %w", err)
	}

	slog.DebugContext(ctx, "payload offloaded",
		"topic", topic, "is_key", isKey, "uri", u.String(), "size_bytes", len(data))

	return s.protocol.Serialize(payload.OfURI(u), attrs, isKey)
}

// objectKey lays out blob keys as base/topic/keys|values/id so one bucket
// serves many topics and both field roles without collisions.
func (s *Storer) objectKey(topic string, isKey bool) string {
	role := "values"
	if isKey {
		role = "keys"
	}
	if s.baseKey == "" {
		return topic + "/" + role + "/" + s.genID()
	}
	return s.baseKey + "/" + topic + "/" + role + "/" + s.genID()
}
