// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores each record under a TTL'd Redis key. Every save refreshes
// the TTL, so active sessions never expire mid-use.
type RedisSlot struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Slot = (*RedisSlot)(nil)

// NewRedisSlot creates a [RedisSlot]. A zero ttl stores keys without expiry.
func NewRedisSlot(client redis.UniversalClient, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

// Load implements [Slot].
func (s *RedisSlot) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return data, nil
}

// Save implements [Slot].
func (s *RedisSlot) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// Delete implements [Slot].
func (s *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_session_del_failed: %w", err)
	}
	return nil
}
