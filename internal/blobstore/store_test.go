package blobstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dashboard/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	backend, err := NewFSBackend(root)
	require.NoError(t, err)
	t.Cleanup(backend.Close)
	return New(backend), root
}

func TestPutGetRoundTrip(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()
	content := []byte("quarterly budget spreadsheet")

	ref, err := store.Put(ctx, content)
	require.NoError(t, err)
	assert.True(t, ValidRef(ref))
	assert.Equal(t, Ref(content), ref)
	assert.FileExists(t, filepath.Join(root, ref[:2], ref+".zst"))

	got, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestPutIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Put(ctx, []byte("same bytes"))
	require.NoError(t, err)
	second, err := store.Put(ctx, []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetUnknownRef(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), Ref([]byte("never stored")))
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = store.Get(context.Background(), "../../etc/passwd")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestGetDetectsCorruption(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("original"))
	require.NoError(t, err)

	backend, err := NewFSBackend(root)
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, backend.Put(ctx, ref, []byte("tampered")))

	_, err = store.Get(ctx, ref)
	assert.True(t, errors.Is(err, apperror.ErrInfrastructure))
}
