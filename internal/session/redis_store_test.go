package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestSaveAndConsume(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	id := authz.Identity{Username: "kush", DisplayName: "Kush Jani"}

	require.NoError(t, store.Save(ctx, "refresh-abc", id, time.Hour))

	got, err := store.Consume(ctx, "refresh-abc")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = store.Consume(ctx, "refresh-abc")
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}

func TestConcurrentConsumeHasOneWinner(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "contested", authz.Identity{Username: "dhruv"}, time.Hour))

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Consume(ctx, "contested")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
	}
	assert.Equal(t, 1, wins)
}

func TestTokenIsNotStoredInClear(t *testing.T) {
	store, s := setupTestRedis(t)
	require.NoError(t, store.Save(context.Background(), "refresh-abc", authz.Identity{Username: "kush"}, time.Hour))

	for _, key := range s.Keys() {
		assert.True(t, strings.HasPrefix(key, "refresh:"))
		assert.NotContains(t, key, "refresh-abc")
	}
}

func TestConsumeExpired(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", authz.Identity{Username: "dhruv"}, time.Second))
	s.FastForward(2 * time.Second)

	_, err := store.Consume(ctx, "short")
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}

func TestRevoke(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone", authz.Identity{Username: "dhruv"}, time.Hour))
	require.NoError(t, store.Revoke(ctx, "gone"))

	_, err := store.Consume(ctx, "gone")
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))

	assert.NoError(t, store.Revoke(ctx, "never-existed"))
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "::not a url")
	assert.Error(t, err)
}
