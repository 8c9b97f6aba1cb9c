// Package storage abstracts the object-storage backend behind a single
// interface so the media lifecycle manager never knows which backend holds
// the bytes. One implementation (S3) is provided; swapping the backend means
// swapping one constructor in main.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the contract the media layer relies on: put bytes under a
// key, delete a key with confirmation, and produce a time-bounded read URL.
type ObjectStore interface {
	// Upload stores the body under key with the given content type.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	// Delete removes the object. A nil return confirms removal.
	Delete(ctx context.Context, key string) error
	// SignedURL returns a temporary URL granting read access for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
