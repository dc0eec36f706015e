package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/go-redis/redis/v8"
)

// RedisStore implements the Store interface using one Redis hash keyed by
// uniqueId.
type RedisStore struct {
	client *redis.Client
	hash   string
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client, hash string) *RedisStore {
	return &RedisStore{client: client, hash: hash}
}

// Ping checks connectivity so a bad address is reported at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Put(ctx context.Context, c domain.Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.HSet(ctx, s.hash, string(c.UniqueID), data).Err()
}

func (s *RedisStore) Get(ctx context.Context, key domain.SessionKey) (domain.Credentials, error) {
	data, err := s.client.HGet(ctx, s.hash, string(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.Credentials{}, ErrNotFound
		}
		return domain.Credentials{}, err
	}
	var c domain.Credentials
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return domain.Credentials{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return c, nil
}

func (s *RedisStore) List(ctx context.Context) ([]domain.Credentials, error) {
	all, err := s.client.HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, err
	}
	records := make(map[domain.SessionKey]domain.Credentials, len(all))
	for id, data := range all {
		var c domain.Credentials
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
		}
		records[c.UniqueID] = c
	}
	return sortedRecords(records), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
