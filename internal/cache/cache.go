// Package cache offers a small byte-value cache used for geocode and
// place-search results. The default backend is an in-process bounded LRU
// with expiry; a Redis backend is available when multiple replicas should
// share lookups.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Store is a get/set cache keyed by strings. Implementations must be safe
// for concurrent use. A miss is reported through the bool, not an error;
// errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LRUStore is a bounded in-process cache with per-entry TTL.
type LRUStore struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRUStore creates an LRU cache holding at most size entries, each
// expiring after ttl. A ttl of zero disables expiry.
func NewLRUStore(size int, ttl time.Duration) *LRUStore {
	if size <= 0 {
		size = 1024
	}
	return &LRUStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

func (s *LRUStore) Set(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, value)
	return nil
}

// RedisStore backs the cache with a shared Redis instance.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps an existing Redis client. All keys are namespaced
// under prefix to keep the instance shareable.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}
