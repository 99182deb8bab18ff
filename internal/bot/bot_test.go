package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"task-planner/internal/model"
	"task-planner/internal/repository"
	"task-planner/internal/service"
	"task-planner/internal/testutil"
)

func TestEnsureUser_WizardDurationCreatesTask(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	settings := service.NewSettingsService(users, repository.NewVocabularyRepository(db), nil)
	taskService := service.NewTaskService(users, tasks, settings, nil)
	b := &Bot{users: users, settings: settings, tasks: taskService, log: zap.NewNop()}

	// someone else already owns rows, so default and user ids diverge
	first, err := b.ensureUser(ctx, &tgbotapi.User{ID: 1001, FirstName: "Ann"})
	require.NoError(t, err)
	newcomer, err := b.ensureUser(ctx, &tgbotapi.User{ID: 1002, FirstName: "Bo"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, newcomer.ID)

	// the duration step builds its choices from the user's vocabulary
	durations, err := settings.GetVocabulary(ctx, newcomer.ID, model.KindDuration)
	require.NoError(t, err)
	choices := make(map[string]uint, len(durations))
	for _, d := range durations {
		assert.Equal(t, newcomer.ID, d.UserID, "choices are the user's own rows")
		choices[strings.ToLower(d.Name)] = d.ID
	}
	week, ok := choices["1 week"]
	require.True(t, ok)

	task, err := taskService.CreateTask(ctx, newcomer.ID, service.TaskInput{Title: "From chat", DurationID: &week})
	require.NoError(t, err)
	require.NotNil(t, task.Duration)
	assert.Equal(t, week, task.Duration.ID)
	assert.NotNil(t, task.Deadline)

	again, err := b.ensureUser(ctx, &tgbotapi.User{ID: 1002, FirstName: "Bo"})
	require.NoError(t, err)
	assert.Equal(t, newcomer.ID, again.ID)
	counts, err := repository.NewVocabularyRepository(db).CountByKind(ctx, newcomer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, counts[model.KindDuration], "repeat calls do not provision twice")
}
