package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	backendRedis  = "redis"
	redisScanSize = 100
)

// RedisStore keeps values as plain Redis strings.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client. The caller keeps ownership of it.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreWithAddr connects to a Redis server at addr.
func NewRedisStoreWithAddr(addr string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: client}
}

// NewRedisStoreWithURL connects using a redis:// or rediss:// URL.
func NewRedisStoreWithURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, newStoreError(backendRedis, ErrCauseUnavailable, fmt.Errorf("parse redis url: %w", err))
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Ping verifies the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return newStoreError(backendRedis, ErrCauseUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, newStoreError(backendRedis, ErrCauseReadFailure, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return newStoreError(backendRedis, ErrCauseWriteFailure, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return newStoreError(backendRedis, ErrCauseWriteFailure, err)
	}
	return nil
}

// DeletePrefix walks the keyspace with SCAN so large databases are not
// blocked the way KEYS would block them.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", redisScanSize).Iterator()
	batch := make([]string, 0, redisScanSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisScanSize {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return newStoreError(backendRedis, ErrCauseWriteFailure, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return newStoreError(backendRedis, ErrCauseReadFailure, err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return newStoreError(backendRedis, ErrCauseWriteFailure, err)
		}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
