package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioshop/audioshop-api/internal/apperr"
)

// fakeStore records operations and can be told to fail. Signed URLs carry a
// per-call counter the way real presigned URLs carry a fresh signature.
type fakeStore struct {
	uploads   map[string]string // key -> body
	deleted   []string
	signed    int
	uploadErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string]string{}}
}

func (f *fakeStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, _ := io.ReadAll(body)
	f.uploads[key] = string(b)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.signed++
	return fmt.Sprintf("https://signed.example/%s?sig=%d", key, f.signed), nil
}

func TestAllocateGeneratesOpaqueKeys(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	keys, err := m.Allocate(context.Background(), []File{
		{Body: strings.NewReader("first"), ContentType: "image/png"},
		{Body: strings.NewReader("second"), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)

	assert.NotEqual(t, keys[0], keys[1])
	for _, key := range keys {
		assert.Len(t, key, 32, "16 random bytes hex-encoded")
	}
	assert.Equal(t, "first", store.uploads[keys[0]])
	assert.Equal(t, "second", store.uploads[keys[1]])
}

func TestAllocateStopsOnUploadError(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("bucket unavailable")
	m := NewManager(store)

	_, err := m.Allocate(context.Background(), []File{{Body: strings.NewReader("x")}})
	assert.Error(t, err)
}

func TestRevokeDeletesEveryKey(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	require.NoError(t, m.Revoke(context.Background(), []string{"a", "b", "c"}))
	assert.Equal(t, []string{"a", "b", "c"}, store.deleted)
}

func TestRevokeFailureSurfacesAsInternal(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("access denied")
	m := NewManager(store)

	err := m.Revoke(context.Background(), []string{"a"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Status)
	assert.Equal(t, "Image cannot be deleted", appErr.Message)
}

func TestResolveForReadSignsPerCall(t *testing.T) {
	m := NewManager(newFakeStore())

	first, err := m.ResolveForRead(context.Background(), "deadbeef")
	require.NoError(t, err)
	second, err := m.ResolveForRead(context.Background(), "deadbeef")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "https://signed.example/deadbeef"))
	assert.NotEqual(t, first, second, "every resolve produces a fresh URL")
}
