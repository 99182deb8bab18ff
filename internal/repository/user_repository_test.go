package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/repository"
	"task-planner/internal/testutil"
)

func TestUpsertFromTelegram(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	created, err := users.UpsertFromTelegram(ctx, 1001, "Ann", "Lee", "ann")
	require.NoError(t, err)
	require.NotNil(t, created.TelegramID)
	assert.Equal(t, int64(1001), *created.TelegramID)
	assert.Equal(t, "UTC", created.Timezone)

	updated, err := users.UpsertFromTelegram(ctx, 1001, "Anna", "Lee", "anna")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	found, err := users.FindByTelegramID(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "Anna", found.FirstName)
	assert.Equal(t, "anna", found.Username)

	_, err = users.FindByTelegramID(ctx, 2002)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdatePreferences(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	user := testutil.MustCreateUser(t, db)

	_, err := users.UpdatePreferences(ctx, user.ID, "Europe/Moscow", "", map[string]any{"digest": true})
	require.NoError(t, err)

	got, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", got.Timezone)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, true, got.Preferences["digest"])

	exists, err := users.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = users.UpdatePreferences(ctx, 424242, "UTC", "", nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
