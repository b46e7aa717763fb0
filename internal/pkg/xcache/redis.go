package xcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lib_store "github.com/eko/gocache/lib/v4/store"
	redis "github.com/redis/go-redis/v9"
)

// redisStore adapts a go-redis client to the gocache store interface,
// marshalling values as JSON.
type redisStore[T any] struct {
	client  redis.UniversalClient
	options *lib_store.Options
}

func newRedisStore[T any](client redis.UniversalClient, options ...Option) *redisStore[T] {
	return &redisStore[T]{
		client:  client,
		options: lib_store.ApplyOptions(options...),
	}
}

func redisKey(key any) (string, error) {
	s, ok := key.(string)
	if !ok {
		return "", fmt.Errorf("xcache: expected string key, got %T", key)
	}

	return s, nil
}

func (s *redisStore[T]) Get(ctx context.Context, key any) (any, error) {
	k, err := redisKey(key)
	if err != nil {
		return nil, lib_store.NotFoundWithCause(err)
	}

	raw, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return nil, lib_store.NotFoundWithCause(err)
	}

	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *redisStore[T]) GetWithTTL(ctx context.Context, key any) (any, time.Duration, error) {
	k, err := redisKey(key)
	if err != nil {
		return nil, 0, lib_store.NotFoundWithCause(err)
	}

	value, err := s.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	ttl, err := s.client.TTL(ctx, k).Result()
	if err != nil {
		return nil, 0, err
	}

	return value, ttl, nil
}

func (s *redisStore[T]) Set(ctx context.Context, key any, value any, options ...Option) error {
	k, err := redisKey(key)
	if err != nil {
		return err
	}

	opts := lib_store.ApplyOptionsWithDefault(s.options, options...)

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, k, raw, opts.Expiration).Err()
}

func (s *redisStore[T]) Delete(ctx context.Context, key any) error {
	k, err := redisKey(key)
	if err != nil {
		return err
	}

	return s.client.Del(ctx, k).Err()
}

func (s *redisStore[T]) Invalidate(ctx context.Context, options ...lib_store.InvalidateOption) error {
	// Tag invalidation is not used here.
	return nil
}

func (s *redisStore[T]) Clear(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *redisStore[T]) GetType() string {
	return "redis"
}
