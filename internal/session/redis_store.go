// Package session stores refresh sessions in Redis. Only a BLAKE3 digest of
// each refresh token is used as the key, so a Redis dump does not leak tokens.
package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"
)

// Store is the refresh-session contract the user service depends on.
type Store interface {
	Save(ctx context.Context, token string, id authz.Identity, ttl time.Duration) error
	// Consume returns the session's identity and deletes it in one step, so a
	// refresh token can be redeemed at most once.
	Consume(ctx context.Context, token string) (authz.Identity, error)
	Revoke(ctx context.Context, token string) error
}

type sessionData struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedisStore implements Store on Redis with per-key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore parses redisURL and pings the server.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "refresh:"}
}

func (s *RedisStore) key(token string) string {
	sum := blake3.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

func (s *RedisStore) Save(ctx context.Context, token string, id authz.Identity, ttl time.Duration) error {
	data, err := json.Marshal(sessionData{
		Username:    id.Username,
		DisplayName: id.DisplayName,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(token), data, ttl).Err(); err != nil {
		return apperror.Infrastructure(err, "failed to save refresh session")
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, token string) (authz.Identity, error) {
	raw, err := s.client.GetDel(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return authz.Identity{}, apperror.Unauthenticated("refresh token not found or expired")
	}
	if err != nil {
		return authz.Identity{}, apperror.Infrastructure(err, "failed to look up refresh session")
	}

	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return authz.Identity{}, apperror.Infrastructure(err, "corrupt refresh session")
	}
	return authz.Identity{Username: data.Username, DisplayName: data.DisplayName}, nil
}

// Revoke deletes the session. Revoking an unknown token is not an error.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return apperror.Infrastructure(err, "failed to revoke refresh session")
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
