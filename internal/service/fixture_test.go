package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-planner/internal/model"
	"task-planner/internal/repository"
	"task-planner/internal/service"
	"task-planner/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	vocab    *repository.VocabularyRepository
	settings *service.SettingsService
	query    *service.QueryService
	tasks    *service.TaskService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:    db,
		users: repository.NewUserRepository(db),
		vocab: repository.NewVocabularyRepository(db),
		now:   time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}
	taskRepo := repository.NewTaskRepository(db)
	f.settings = service.NewSettingsService(f.users, f.vocab, nil)
	f.query = service.NewQueryService(taskRepo, f.settings, nil)
	f.tasks = service.NewTaskService(f.users, taskRepo, f.settings, nil).
		WithClock(func() time.Time { return f.now })
	return f
}

// provisionedUser creates a user that already owns a copy of the defaults.
func (f *fixture) provisionedUser(t *testing.T) *model.User {
	t.Helper()
	user := testutil.MustCreateUser(t, f.db)
	_, err := f.settings.Provision(context.Background(), user.ID)
	require.NoError(t, err)
	return user
}

// item looks up one of the user's vocabulary items by name.
func (f *fixture) item(t *testing.T, userID uint, kind model.Kind, name string) model.VocabularyItem {
	t.Helper()
	items, err := f.settings.GetVocabulary(context.Background(), userID, kind)
	require.NoError(t, err)
	for _, item := range items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("no %s item named %q", kind, name)
	return model.VocabularyItem{}
}

func (f *fixture) createTask(t *testing.T, userID uint, input service.TaskInput) *service.TaskView {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), userID, input)
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}

func assertSameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}
