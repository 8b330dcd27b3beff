package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stayfinder/internal/config"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "attempts:"

// RedisAttemptStore keeps attempt counters as expiring Redis integers.
type RedisAttemptStore struct {
	client *redis.Client
}

// NewRedisClient builds a Redis client from the redis section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func (r *RedisAttemptStore) Attempts(ctx context.Context, key string) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	count, err := r.client.Get(ctx, attemptKeyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempts from redis: %w", err)
	}
	return count, nil
}

// RecordAttempt increments the counter; the window starts at the first attempt.
func (r *RedisAttemptStore) RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	fullKey := attemptKeyPrefix + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set attempts expiry: %w", err)
		}
	}
	return int(count), nil
}

func (r *RedisAttemptStore) ResetAttempts(ctx context.Context, key string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, attemptKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis client when present.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
