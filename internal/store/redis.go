package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisResource keeps the document in a single string key.
type RedisResource struct {
	rdb *redis.Client
	key string
}

func NewRedisResource(rdb *redis.Client, key string) *RedisResource {
	return &RedisResource{rdb: rdb, key: key}
}

func (r *RedisResource) Read(ctx context.Context) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis key %q: %w", r.key, ErrMissing)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RedisResource) Write(ctx context.Context, body []byte) error {
	return r.rdb.Set(ctx, r.key, body, 0).Err()
}

func (r *RedisResource) String() string { return "redis:" + r.key }

func (r *RedisResource) Close() error { return r.rdb.Close() }
