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

func TestRedisAttemptStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer Close(client)

	repo := NewRedisAttemptStore(client)
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("EmptyKey", func(t *testing.T) {
		count, err := repo.Attempts(ctx, "login:nobody@example.com")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("RecordAndExpire", func(t *testing.T) {
		key := "login:guest@stayfinder.com"
		for i := 1; i <= 3; i++ {
			count, err := repo.RecordAttempt(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, count)
		}

		count, err := repo.Attempts(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Equal(t, time.Minute, s.TTL(attemptKeyPrefix+key))

		s.FastForward(2 * time.Minute)
		count, err = repo.Attempts(ctx, key)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Reset", func(t *testing.T) {
		key := "login:host@stayfinder.com"
		_, err := repo.RecordAttempt(ctx, key, time.Minute)
		require.NoError(t, err)

		require.NoError(t, repo.ResetAttempts(ctx, key))
		assert.False(t, s.Exists(attemptKeyPrefix+key))
	})

	t.Run("ServerDown", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer down.Close()
		broken := NewRedisAttemptStore(down)

		_, err := broken.RecordAttempt(ctx, "k", time.Minute)
		assert.Error(t, err)
		_, err = broken.Attempts(ctx, "k")
		assert.Error(t, err)
		assert.Error(t, broken.ResetAttempts(ctx, "k"))
		assert.Error(t, Ping(ctx, down))
	})

	t.Run("NilClient", func(t *testing.T) {
		nilRepo := NewRedisAttemptStore(nil)
		_, err := nilRepo.Attempts(ctx, "k")
		assert.Error(t, err)
		assert.NoError(t, Close(nil))
	})
}
