package repository

import (
	"context"
	"testing"
	"time"

	"stayfinder/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, policy.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, policy.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, policy.NextDelay(2))
	assert.Equal(t, 800*time.Millisecond, policy.NextDelay(4))
	assert.Equal(t, time.Second, policy.NextDelay(10))

	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
	assert.Equal(t, 2*time.Second, RetryPolicy{}.NextDelay(2))
}

func TestPingWithRetry(t *testing.T) {
	fast := RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("Up", func(t *testing.T) {
		s, err := miniredis.Run()
		require.NoError(t, err)
		defer s.Close()

		client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
		defer Close(client)
		assert.NoError(t, PingWithRetry(context.Background(), client, fast))
	})

	t.Run("Down", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer down.Close()
		assert.Error(t, PingWithRetry(context.Background(), down, fast))
	})

	t.Run("Cancelled", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer down.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour}
		assert.Error(t, PingWithRetry(ctx, down, slow))
	})
}
