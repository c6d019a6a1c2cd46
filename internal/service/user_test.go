package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
)

func TestUserService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewUserService(store.Users, []string{"root"}, discardLogger())

	alice := &model.User{Username: "alice", Email: "alice@example.com", GitHubID: "1"}
	require.NoError(t, store.Users.Create(ctx, alice))
	root := &model.User{Username: "root", Email: model.EmailPlaceholder, GitHubID: "2"}
	require.NoError(t, store.Users.Create(ctx, root))

	t.Run("list", func(t *testing.T) {
		users, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []UserSummary{
			{UserID: alice.ID, Username: "alice"},
			{UserID: root.ID, Username: "root"},
		}, users)
	})

	t.Run("get has empty applied list", func(t *testing.T) {
		got, err := svc.Get(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.NotNil(t, got.Applied)
		assert.Empty(t, got.Applied)

		_, err = svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := svc.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, UserContact{ID: alice.ID, Username: "alice", Email: "alice@example.com"}, *got)

		_, err = svc.GetByUsername(ctx, "bob")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("admin", func(t *testing.T) {
		ok, err := svc.IsAdmin(ctx, root.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.IsAdmin(ctx, alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.IsAdmin(ctx, "deleted-user")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
