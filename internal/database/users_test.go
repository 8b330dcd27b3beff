package database

import (
	"context"
	"testing"

	"stayfinder/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         "Sarah Johnson",
		Email:        "host@stayfinder.com",
		PasswordHash: "hash",
		IsHost:       true,
	}
	require.NoError(t, db.CreateUser(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("GetByID", func(t *testing.T) {
		got, err := db.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sarah Johnson", got.Name)
		assert.True(t, got.IsHost)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("GetByEmailIgnoresCase", func(t *testing.T) {
		got, err := db.GetUserByEmail(ctx, "HOST@StayFinder.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		dup := &models.User{ID: uuid.NewString(), Name: "Other", Email: "Host@stayfinder.com", PasswordHash: "x"}
		err := db.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := db.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
