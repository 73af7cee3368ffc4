// Package s3 provides an S3 blob store backend.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gezibash/arc-offload/internal/storage"
	"github.com/gezibash/arc-offload/pkg/bloburi"
	"github.com/gezibash/arc-offload/pkg/blobstore"
)

func init() {
	blobstore.Register(blobstore.BackendS3, factory, defaults)
}

func defaults() map[string]string {
	return map[string]string{
		"region":           "us-east-1",
		"prefix":           "",
		"force_path_style": "false",
	}
}

func factory(ctx context.Context, config map[string]string) (blobstore.Store, error) {
	region := storage.GetString(config, "region", "us-east-1")
	endpoint := storage.GetString(config, "endpoint", "")
	prefix := storage.GetString(config, "prefix", "")
	accessKey := storage.GetString(config, "access_key_id", "")
	secretKey := storage.GetString(config, "secret_access_key", "")

	forcePathStyle, err := storage.GetBool(config, "force_path_style", false)
	if err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(region))

	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if forcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Store{
		client: s3.NewFromConfig(cfg, s3Opts...),
		prefix: prefix,
	}, nil
}

// Store keeps offloaded payloads as S3 objects. The bucket comes from each
// call rather than from configuration, so one client serves every base path.
//
// An optional key prefix applies on Put only. Returned URIs carry the full
// object key, so readers resolve them without knowing the writer's prefix.
type Store struct {
	client *s3.Client
	prefix string
	closed atomic.Bool
}

func (s *Store) checkClosed() error {
	if s.closed.Load() {
		return blobstore.ErrClosed
	}
	return nil
}

// Put uploads data as bucket/key and returns the object's URI.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	if err := s.checkClosed(); err != nil {
		return bloburi.URI{}, err
	}
	if bucket == "" {
		return bloburi.URI{}, errors.New("s3: bucket required")
	}

	objectKey := s.prefix + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return bloburi.URI{}, fmt.Errorf("s3: put object: %w", err)
	}

	return bloburi.URI{Scheme: blobstore.BackendS3, Bucket: bucket, Key: objectKey}, nil
}

// Get downloads the object addressed by u.
func (s *Store) Get(ctx context.Context, u bloburi.URI) ([]byte, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	if u.Scheme != blobstore.BackendS3 {
		return nil, fmt.Errorf("s3: cannot resolve %q URI", u.Scheme)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(u.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, u)
		}
		return nil, fmt.Errorf("s3: get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read body: %w", err)
	}

	return data, nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.closed.Swap(true)
	return nil
}

// isNotFound checks if an error indicates a missing object.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	// Also check for HTTP 404 in the response metadata
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
