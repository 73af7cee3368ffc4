// Package bloburi addresses single objects in bucket-based blob storage.
package bloburi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed indicates a string that does not parse as a blob URI.
var ErrMalformed = errors.New("malformed blob URI")

// URI identifies one stored object as scheme://bucket/key.
// The zero value is not a valid URI.
type URI struct {
	Scheme string
	Bucket string
	Key    string
}

// Parse converts "scheme://bucket/key" into a URI. The key may be empty
// and may itself contain slashes; scheme and bucket may not be empty.
func Parse(s string) (URI, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return URI{}, fmt.Errorf("%w: missing scheme separator in %q", ErrMalformed, s)
	}
	if scheme == "" {
		return URI{}, fmt.Errorf("%w: empty scheme in %q", ErrMalformed, s)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return URI{}, fmt.Errorf("%w: empty bucket in %q", ErrMalformed, s)
	}

	return URI{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// String formats the URI as "scheme://bucket/key".
// Parse(u.String()) returns u unchanged for any valid u.
func (u URI) String() string {
	return u.Scheme + "://" + u.Bucket + "/" + u.Key
}
