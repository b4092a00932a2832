package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	redisx "github.com/eventra/eventra/internal/redis"
)

// SessionStore keeps opaque login tokens in Redis with a TTL. The value is
// the user id the token was issued for.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create issues a fresh token for userID and stores it.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	token := newToken()

	if err := s.rdb.Set(ctx, redisx.KeySession(token), userID, s.ttl).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Get resolves a token to the user id it was issued for. The second return
// value is false for unknown or expired tokens.
func (s *SessionStore) Get(ctx context.Context, token string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, redisx.KeySession(token)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return v, true, nil
}

// Delete revokes a token. Revoking an unknown token is a no-op.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, redisx.KeySession(token)).Err()
}

func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
