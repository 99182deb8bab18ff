package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/model"
	"task-planner/internal/repository"
	"task-planner/internal/testutil"
)

func TestCloneDefaults_SkipsKindsWithRows(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	vocab := repository.NewVocabularyRepository(db)
	user := testutil.MustCreateUser(t, db)

	require.NoError(t, vocab.Create(ctx, &model.VocabularyItem{
		UserID: user.ID, Kind: model.KindType, Name: "Chore", IsActive: true,
	}))

	created, err := vocab.CloneDefaults(ctx, user.ID, model.Kinds)
	require.NoError(t, err)
	assert.Equal(t, 5, created[model.KindStatus])
	assert.NotContains(t, created, model.KindType)

	again, err := vocab.CloneDefaults(ctx, user.ID, model.Kinds)
	require.NoError(t, err)
	assert.Empty(t, again)

	counts, err := vocab.CountByKind(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.KindType])
	assert.Equal(t, int64(8), counts[model.KindDuration])
}

func TestListActive_OrderAndVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	vocab := repository.NewVocabularyRepository(db)
	user := testutil.MustCreateUser(t, db)

	for _, item := range []model.VocabularyItem{
		{Name: "Third", Order: 3, IsActive: true},
		{Name: "First", Order: 1, IsActive: true},
		{Name: "Hidden", Order: 2, IsActive: false},
	} {
		item.UserID = user.ID
		item.Kind = model.KindPriority
		require.NoError(t, vocab.Create(ctx, &item))
	}

	items, err := vocab.ListActive(ctx, user.ID, model.KindPriority)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Name)
	assert.Equal(t, "Third", items[1].Name)
}

func TestSetDefault_UnknownItem(t *testing.T) {
	db := testutil.NewDB(t)
	vocab := repository.NewVocabularyRepository(db)
	user := testutil.MustCreateUser(t, db)

	err := vocab.SetDefault(context.Background(), user.ID, model.KindStatus, 424242)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_DefaultAndDuplicateInOneTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	vocab := repository.NewVocabularyRepository(db)
	user := testutil.MustCreateUser(t, db)

	first := &model.VocabularyItem{UserID: user.ID, Kind: model.KindPriority, Name: "Now", IsActive: true, IsDefault: true}
	require.NoError(t, vocab.Create(ctx, first))
	second := &model.VocabularyItem{UserID: user.ID, Kind: model.KindPriority, Name: "Later", IsActive: true, IsDefault: true}
	require.NoError(t, vocab.Create(ctx, second))

	items, err := vocab.ListActive(ctx, user.ID, model.KindPriority)
	require.NoError(t, err)
	defaults := map[string]bool{}
	for _, item := range items {
		defaults[item.Name] = item.IsDefault
	}
	assert.Equal(t, map[string]bool{"Now": false, "Later": true}, defaults)

	dup := &model.VocabularyItem{UserID: user.ID, Kind: model.KindPriority, Name: "Now", IsActive: true, IsDefault: true}
	assert.ErrorIs(t, vocab.Create(ctx, dup), repository.ErrDuplicate)

	items, err = vocab.ListActive(ctx, user.ID, model.KindPriority)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, item.Name == "Later", item.IsDefault, item.Name)
	}

	// same name under another kind is fine
	require.NoError(t, vocab.Create(ctx, &model.VocabularyItem{UserID: user.ID, Kind: model.KindType, Name: "Now", IsActive: true}))
}
