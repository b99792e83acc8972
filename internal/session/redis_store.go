package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "booking:sess:"

// RedisStore mantém uma hash por visitante, com TTL renovado a cada escrita.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Bag(sessionID string) Bag {
	return &redisBag{
		client: s.client,
		key:    keyPrefix + sessionID,
		ttl:    s.ttl,
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type redisBag struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (b *redisBag) Get(ctx context.Context, field string, dst any) (bool, error) {
	raw, err := b.client.HGet(ctx, b.key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: hget %s: %w", field, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("session: decode %s: %w", field, err)
	}
	return true, nil
}

func (b *redisBag) Set(ctx context.Context, field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", field, err)
	}

	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, b.key, field, raw)
	if b.ttl > 0 {
		pipe.Expire(ctx, b.key, b.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: hset %s: %w", field, err)
	}
	return nil
}

func (b *redisBag) Pop(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := b.client.HDel(ctx, b.key, fields...).Err(); err != nil {
		return fmt.Errorf("session: hdel: %w", err)
	}
	return nil
}
