package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures so callers can
// separate them from a plain miss.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultPrefix = "gh:sess:"

// RedisStore is a Redis-backed [Store]. Records are stored as JSON blobs
// without a Redis TTL: expiration is evaluated by the strategy against
// CreatedAt, so a duration change takes effect for existing sessions too.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a store writing under prefix, or under "gh:sess:"
// when prefix is empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Put persists rec keyed by its session id.
func (s *RedisStore) Put(ctx context.Context, rec Record) error {
	if rec.SessionID == "" || rec.UserID == "" {
		return errors.New("session: record missing session_id or user_id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshaling record: %w", err)
	}

	if err := s.client.Set(ctx, s.key(rec.SessionID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get loads the record for sessionID, (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	if sessionID == "" {
		return nil, nil
	}

	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("session: unmarshaling record: %w", err)
	}
	return &rec, nil
}

// Delete removes the record for sessionID. Deleting an unknown id succeeds.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
