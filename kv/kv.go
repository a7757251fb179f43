// Package kv is the ephemeral JSON cache that holds in-flight authorization and login state.
// Entries expire on their own; nothing here is durable.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the ephemeral cache contract. Get and Take report found=false for a missing
// or expired key.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Take(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RedisStore keeps JSON values under prefixed redis keys.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	return s.decode(raw, err, dst)
}

// Take reads and deletes key in one step, so a value can be consumed at most once.
func (s *RedisStore) Take(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.GetDel(ctx, s.prefix+key).Bytes()
	return s.decode(raw, err, dst)
}

func (s *RedisStore) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("kv: set: %w", err)
	}
	return nil
}

func (s *RedisStore) decode(raw []byte, err error, dst any) (bool, error) {
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv: get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("kv: decode: %w", err)
	}
	return true, nil
}
