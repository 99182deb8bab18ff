package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/model"
	"task-planner/internal/repository"
	"task-planner/internal/testutil"
)

func TestTaskRepository_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	tasks := repository.NewTaskRepository(db)
	vocab := repository.NewVocabularyRepository(db)
	owner := testutil.MustCreateUser(t, db)
	stranger := testutil.MustCreateUser(t, db)

	_, err := vocab.CloneDefaults(ctx, owner.ID, model.Kinds)
	require.NoError(t, err)
	statuses, err := vocab.ListActive(ctx, owner.ID, model.KindStatus)
	require.NoError(t, err)
	pending := statuses[0]

	done := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	open := &model.Task{UserID: owner.ID, Title: "open", StatusID: &pending.ID}
	closed := &model.Task{UserID: owner.ID, Title: "closed", CompletedAt: &done}
	require.NoError(t, tasks.Create(ctx, open))
	require.NoError(t, tasks.Create(ctx, closed))

	found, err := tasks.FindByID(ctx, owner.ID, open.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Status, "references are preloaded")
	assert.Equal(t, "pending", found.Status.Code)

	_, err = tasks.FindByID(ctx, stranger.ID, open.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	notDone := false
	list, err := tasks.List(ctx, owner.ID, repository.TaskCriteria{IsCompleted: &notDone})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "open", list[0].Title)
	assert.Nil(t, list[0].Status, "no preload unless asked")

	list, err = tasks.List(ctx, owner.ID, repository.TaskCriteria{StatusID: &pending.ID, WithRefs: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Status)

	// clearing the id must win over the still-loaded association
	found.StatusID = nil
	require.NoError(t, tasks.Save(ctx, found))
	reloaded, err := tasks.FindByID(ctx, owner.ID, open.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.StatusID)
	assert.Nil(t, reloaded.Status)

	stillThere, err := vocab.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.Name, stillThere.Name)

	deleted, err := tasks.Delete(ctx, stranger.ID, open.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	deleted, err = tasks.Delete(ctx, owner.ID, open.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestTaskRepository_SaveDoesNotResurrect(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	tasks := repository.NewTaskRepository(db)
	owner := testutil.MustCreateUser(t, db)

	task := &model.Task{UserID: owner.ID, Title: "racy"}
	require.NoError(t, tasks.Create(ctx, task))
	loaded, err := tasks.FindByID(ctx, owner.ID, task.ID)
	require.NoError(t, err)

	deleted, err := tasks.Delete(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	loaded.Title = "edited"
	assert.ErrorIs(t, tasks.Save(ctx, loaded), repository.ErrNotFound)

	list, err := tasks.List(ctx, owner.ID, repository.TaskCriteria{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
