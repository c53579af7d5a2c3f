package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
)

// RedisLocalStore is the durable local tier: plain string keys in Redis with
// no TTL, surviving service restarts. It is the write-through cache under
// the remote document store and the home of backup snapshots.
type RedisLocalStore struct {
	client *redis.Client
}

func NewRedisLocalStore(client *redis.Client) *RedisLocalStore {
	return &RedisLocalStore{client: client}
}

var _ portfolio.LocalStore = (*RedisLocalStore)(nil)

func (s *RedisLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisLocalStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisLocalStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisLocalStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// MemoryLocalStore is the ephemeral tier: a process-scoped map that vanishes
// with the service, the analog of per-session storage. Plain admin sessions
// live here so a restart logs them out.
type MemoryLocalStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryLocalStore() *MemoryLocalStore {
	return &MemoryLocalStore{values: make(map[string]string)}
}

var _ portfolio.LocalStore = (*MemoryLocalStore)(nil)

func (s *MemoryLocalStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, found := s.values[key]
	return value, found, nil
}

func (s *MemoryLocalStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryLocalStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryLocalStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for k := range s.values {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
