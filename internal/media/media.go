// Package media manages the lifecycle of product images: allocation of
// opaque storage keys on upload, revocation on delete or replacement, and
// per-request presigned read URLs. A revoke failure must surface before any
// dependent store mutation begins, because the object store does not
// participate in the database's transaction protocol.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"time"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/storage"
)

// signedURLTTL is the validity window of read URLs.
const signedURLTTL = time.Hour

// keyBytes of randomness per key; 16 bytes hex-encoded makes collisions
// negligible.
const keyBytes = 16

// File is one uploaded binary ready for allocation.
type File struct {
	Body        io.Reader
	ContentType string
}

// Manager ties image references to the product lifecycle.
type Manager struct {
	store storage.ObjectStore
}

// NewManager returns a Manager backed by the given object store.
func NewManager(store storage.ObjectStore) *Manager {
	return &Manager{store: store}
}

// Allocate stores each file under a freshly generated opaque key and returns
// the keys in upload order. The keys are what gets persisted on the product
// record; the originals' filenames are discarded entirely.
func (m *Manager) Allocate(ctx context.Context, files []File) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key, err := randomKey()
		if err != nil {
			return nil, err
		}
		if err := m.store.Upload(ctx, key, f.Body, f.ContentType); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Revoke deletes every referenced binary. Any unconfirmed deletion aborts
// with a 500 so the caller never starts a store mutation that would
// reference half-deleted media.
func (m *Manager) Revoke(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil {
			return apperr.Internal("Image cannot be deleted")
		}
	}
	return nil
}

// ResolveForRead produces a temporary access URL for a stored reference.
// URLs are recomputed per request and never persisted.
func (m *Manager) ResolveForRead(ctx context.Context, key string) (string, error) {
	return m.store.SignedURL(ctx, key, signedURLTTL)
}

func randomKey() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
