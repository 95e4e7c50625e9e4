package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no refresh token is stored for the account.
// Absence is authoritative: a token missing here is revoked even if its
// signature still verifies.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when Redis cannot be reached.
var ErrUnavailable = errors.New("session store unavailable")

// Store keeps at most one encrypted refresh token per account in Redis.
// Put overwrites silently; the overwrite is the revocation mechanism for
// the previous token.
type Store struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

// NewStore creates a session Store. ttl should be at least the refresh-token
// lifetime so a present entry implies a potentially valid token.
func NewStore(rdb redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{redis: rdb, ttl: ttl}
}

func (s *Store) key(userID string) string {
	return userID + "_refToken"
}

func (s *Store) Put(ctx context.Context, userID, encryptedToken string) error {
	if err := s.redis.Set(ctx, s.key(userID), encryptedToken, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.redis.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
