// Package redis provides a Redis blob store backend.
//
// Redis suits offloaded payloads with a bounded lifetime: an optional TTL
// expires objects together with the messages that reference them.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gezibash/arc-offload/internal/storage"
	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

const (
	KeyAddr         = "addr"
	KeyPassword     = "password"
	KeyDB           = "db"
	KeyDialTimeout  = "dial_timeout"
	KeyReadTimeout  = "read_timeout"
	KeyWriteTimeout = "write_timeout"
	KeyKeyPrefix    = "key_prefix"
	KeyTTL          = "ttl"
)

func init() {
	blobstore.Register(blobstore.BackendRedis, factory, Defaults)
}

// Defaults returns the default configuration for the Redis backend.
func Defaults() map[string]string {
	return map[string]string{
		KeyAddr:         "localhost:6379",
		KeyPassword:     "",
		KeyDB:           "0",
		KeyDialTimeout:  "5s",
		KeyReadTimeout:  "3s",
		KeyWriteTimeout: "3s",
		KeyKeyPrefix:    "offload:",
		KeyTTL:          "0",
	}
}

func factory(_ context.Context, config map[string]string) (blobstore.Store, error) {
	addr := storage.GetString(config, KeyAddr, "")
	if addr == "" {
		return nil, storage.NewConfigError("redis", KeyAddr, "cannot be empty")
	}

	db, err := storage.GetInt(config, KeyDB, 0)
	if err != nil {
		return nil, storage.NewConfigErrorWithValue("redis", KeyDB, config[KeyDB], err.Error())
	}
	if db < 0 {
		return nil, storage.NewConfigErrorWithValue("redis", KeyDB, config[KeyDB], "must be non-negative")
	}

	dialTimeout, err := storage.GetDuration(config, KeyDialTimeout, 5*time.Second)
	if err != nil {
		return nil, storage.NewConfigErrorWithValue("redis", KeyDialTimeout, config[KeyDialTimeout], err.Error())
	}

	readTimeout, err := storage.GetDuration(config, KeyReadTimeout, 3*time.Second)
	if err != nil {
		return nil, storage.NewConfigErrorWithValue("redis", KeyReadTimeout, config[KeyReadTimeout], err.Error())
	}

	writeTimeout, err := storage.GetDuration(config, KeyWriteTimeout, 3*time.Second)
	if err != nil {
		return nil, storage.NewConfigErrorWithValue("redis", KeyWriteTimeout, config[KeyWriteTimeout], err.Error())
	}

	ttl, err := storage.GetDuration(config, KeyTTL, 0)
	if err != nil {
		return nil, storage.NewConfigErrorWithValue("redis", KeyTTL, config[KeyTTL], err.Error())
	}
	if ttl < 0 {
		return nil, storage.NewConfigErrorWithValue("redis", KeyTTL, config[KeyTTL], "must be non-negative")
	}

	password := storage.GetString(config, KeyPassword, "")
	keyPrefix := storage.GetString(config, KeyKeyPrefix, "offload:")

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, storage.NewConfigErrorWithCause("redis", KeyAddr, "failed to connect", err)
	}

	slog.Info("redis blob store initialized", "addr", addr, "db", db, "key_prefix", keyPrefix, "ttl", ttl)

	return NewWithClient(client, keyPrefix, ttl), nil
}

// Store keeps offloaded payloads as Redis string values under
// prefix + bucket + "/" + key. A non-zero TTL lets objects expire on
// their own; zero keeps them until deleted externally.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	closed atomic.Bool
}

// NewWithClient creates a store around an existing Redis client.
func NewWithClient(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) objectKey(bucket, key string) string {
	return s.prefix + bucket + "/" + key
}

// Put stores data under bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	if s.closed.Load() {
		return bloburi.URI{}, blobstore.ErrClosed
	}
	if bucket == "" {
		return bloburi.URI{}, errors.New("redis: bucket required")
	}

	if err := s.client.Set(ctx, s.objectKey(bucket, key), data, s.ttl).Err(); err != nil {
		return bloburi.URI{}, fmt.Errorf("redis put: %w", err)
	}

	return bloburi.URI{Scheme: blobstore.BackendRedis, Bucket: bucket, Key: key}, nil
}

// Get returns the value stored at u.
func (s *Store) Get(ctx context.Context, u bloburi.URI) ([]byte, error) {
	if s.closed.Load() {
		return nil, blobstore.ErrClosed
	}
	if u.Scheme != blobstore.BackendRedis {
		return nil, fmt.Errorf("redis: cannot resolve %q URI", u.Scheme)
	}

	data, err := s.client.Get(ctx, s.objectKey(u.Bucket, u.Key)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, u)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Close closes the underlying client. Safe to call twice.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}
