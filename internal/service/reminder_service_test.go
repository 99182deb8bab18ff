package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/service"
)

func TestDailySummary_ListsOpenTasksByDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)
	reminders := service.NewReminderService(f.query)

	soon := f.now.Add(24 * time.Hour)
	late := f.now.Add(-24 * time.Hour)
	f.createTask(t, user.ID, service.TaskInput{Title: "Soon <b>", Deadline: &soon})
	f.createTask(t, user.ID, service.TaskInput{Title: "Overdue", Deadline: &late})
	done := f.createTask(t, user.ID, service.TaskInput{Title: "Closed"})
	_, err := f.tasks.CompleteTask(ctx, user.ID, done.ID)
	require.NoError(t, err)

	text, err := reminders.DailySummary(ctx, *user, f.now)
	require.NoError(t, err)

	assert.Contains(t, text, "Ежедневный отчёт")
	assert.Contains(t, text, "Soon &lt;b&gt;")
	assert.NotContains(t, text, "Closed")
	assert.Less(t, strings.Index(text, "Overdue"), strings.Index(text, "Soon"))
	assert.Contains(t, text, "просрочено")
}

func TestDailySummary_NoTasks(t *testing.T) {
	f := newFixture(t)
	user := f.provisionedUser(t)

	text, err := service.NewReminderService(f.query).DailySummary(context.Background(), *user, f.now)
	require.NoError(t, err)
	assert.Contains(t, text, "нет открытых задач")
}

