package idempotency

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mercatto/mercatto-payments/config"
)

// keyTTL bounds how long processed events are remembered. Providers stop
// redelivering well within a week.
const keyTTL = 7 * 24 * time.Hour

const keyPrefix = "webhook:processed:"

// RedisStore is an EventStore backed by Redis, safe across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using the provided configuration.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// MarkProcessed uses SETNX so that exactly one concurrent delivery wins.
func (s *RedisStore) MarkProcessed(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+key, 1, keyTTL).Result()
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
