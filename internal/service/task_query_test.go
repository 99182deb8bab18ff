package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/model"
	"task-planner/internal/service"
)

func titles(page *service.TaskPage) []string {
	out := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		out = append(out, item.Title)
	}
	return out
}

func firstPage(size int) service.PageRequest {
	return service.PageRequest{Page: 1, Size: size}
}

func TestQuery_DeadlineRangeCoversWholeDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)

	deadlines := map[string]time.Time{
		"day before":  time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC),
		"midnight":    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		"noon":        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		"last second": time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC),
		"day after":   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	for title, deadline := range deadlines {
		deadline := deadline
		f.createTask(t, user.ID, service.TaskInput{Title: title, Deadline: &deadline})
	}
	f.createTask(t, user.ID, service.TaskInput{Title: "no deadline"})

	day, err := service.ParseDate("2025-03-01", time.UTC)
	require.NoError(t, err)
	page, err := f.query.Query(ctx, user.ID, service.TaskQuery{
		Filter: service.TaskFilter{DeadlineFrom: &day, DeadlineTo: &day},
		Sort:   service.TaskSort{Field: service.SortDeadline},
		Page:   firstPage(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"midnight", "noon", "last second"}, titles(page))
	assert.Equal(t, 3, page.Total)
}

func TestQuery_SearchMatchesTitleOrDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)

	f.createTask(t, user.ID, service.TaskInput{Title: "Report"})
	f.createTask(t, user.ID, service.TaskInput{Title: "Friday chores", Description: "send the weekly report to Anna"})
	f.createTask(t, user.ID, service.TaskInput{Title: "Gym"})

	page, err := f.query.Query(ctx, user.ID, service.TaskQuery{Search: "  REPORT ", Page: firstPage(10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Report", "Friday chores"}, titles(page))

	count, err := f.query.Count(ctx, user.ID, service.TaskFilter{}, "report")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQuery_PageBeyondEndClampsToLastPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		f.createTask(t, user.ID, service.TaskInput{Title: title})
	}

	last, err := f.query.Query(ctx, user.ID, service.TaskQuery{Page: service.PageRequest{Page: 2, Size: 3}})
	require.NoError(t, err)
	beyond, err := f.query.Query(ctx, user.ID, service.TaskQuery{Page: service.PageRequest{Page: 99, Size: 3}})
	require.NoError(t, err)

	assert.Equal(t, []string{"d", "e"}, titles(last))
	assert.Equal(t, titles(last), titles(beyond))
	assert.Equal(t, 5, beyond.Total)
	assert.Equal(t, 2, beyond.Page)
	assert.Equal(t, 2, beyond.Pages)
}

func TestQuery_EmptyResult(t *testing.T) {
	f := newFixture(t)
	user := f.provisionedUser(t)

	page, err := f.query.Query(context.Background(), user.ID, service.TaskQuery{Page: firstPage(3)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
	assert.Equal(t, 1, page.Page)
}

func TestQuery_InvalidRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)

	for _, p := range []service.PageRequest{{Page: 0, Size: 3}, {Page: 1, Size: 0}, {Page: -1, Size: -1}} {
		_, err := f.query.Query(ctx, user.ID, service.TaskQuery{Page: p})
		assert.ErrorIs(t, err, service.ErrInvalidPageRequest)
	}

	_, err := f.query.Query(ctx, user.ID, service.TaskQuery{Sort: service.TaskSort{Field: "bogus"}, Page: firstPage(3)})
	assert.ErrorIs(t, err, service.ErrInvalidSortField)

	_, err = service.ParseSort("deadline", "sideways")
	assert.ErrorIs(t, err, service.ErrInvalidSortField)

	sort, err := service.ParseSort(" Priority ", "DESC")
	require.NoError(t, err)
	assert.Equal(t, service.TaskSort{Field: service.SortPriority, Desc: true}, sort)
}

func TestQuery_PrioritySortPutsMissingLast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)

	for _, name := range []string{"Low", "Urgent", "", "High"} {
		title := name
		input := service.TaskInput{Title: "task " + name}
		if name == "" {
			title = "none"
			input.Title = "task none"
		} else {
			id := f.item(t, user.ID, model.KindPriority, name).ID
			input.PriorityID = &id
		}
		task := f.createTask(t, user.ID, input)
		if title == "none" {
			_, err := f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{PriorityID: service.SetNull[uint]()})
			require.NoError(t, err)
		}
	}

	asc, err := f.query.Query(ctx, user.ID, service.TaskQuery{Sort: service.TaskSort{Field: service.SortPriority}, Page: firstPage(10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"task Urgent", "task High", "task Low", "task none"}, titles(asc))

	desc, err := f.query.Query(ctx, user.ID, service.TaskQuery{Sort: service.TaskSort{Field: service.SortPriority, Desc: true}, Page: firstPage(10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"task Low", "task High", "task Urgent", "task none"}, titles(desc))
}

func TestQuery_SortTiesKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	user := f.provisionedUser(t)
	for _, title := range []string{"same", "Same", "other", "SAME"} {
		f.createTask(t, user.ID, service.TaskInput{Title: title})
	}

	page, err := f.query.Query(context.Background(), user.ID, service.TaskQuery{
		Sort: service.TaskSort{Field: service.SortTitle},
		Page: firstPage(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "same", "Same", "SAME"}, titles(page))
}

func TestQuery_FiltersAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.provisionedUser(t)
	bob := f.provisionedUser(t)

	review := f.item(t, alice.ID, model.KindStatus, "Review")
	meeting := f.item(t, alice.ID, model.KindType, "Meeting")
	f.createTask(t, alice.ID, service.TaskInput{Title: "review meeting", StatusID: &review.ID, TypeID: &meeting.ID})
	f.createTask(t, alice.ID, service.TaskInput{Title: "review solo", StatusID: &review.ID})
	done := f.createTask(t, alice.ID, service.TaskInput{Title: "finished"})
	_, err := f.tasks.CompleteTask(ctx, alice.ID, done.ID)
	require.NoError(t, err)
	f.createTask(t, bob.ID, service.TaskInput{Title: "bob's review"})

	page, err := f.query.Query(ctx, alice.ID, service.TaskQuery{
		Filter: service.TaskFilter{StatusID: &review.ID},
		Page:   firstPage(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"review meeting", "review solo"}, titles(page))

	page, err = f.query.Query(ctx, alice.ID, service.TaskQuery{
		Filter: service.TaskFilter{StatusID: &review.ID, TypeID: &meeting.ID},
		Page:   firstPage(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"review meeting"}, titles(page))

	page, err = f.query.Query(ctx, alice.ID, service.TaskQuery{
		Filter: service.TaskFilter{IsCompleted: ptr(true)},
		Page:   firstPage(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"finished"}, titles(page))

	count, err := f.query.Count(ctx, alice.ID, service.TaskFilter{IsCompleted: ptr(false)}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	page, err = f.query.Query(ctx, bob.ID, service.TaskQuery{Page: firstPage(10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob's review"}, titles(page))

	_, err = f.query.Query(ctx, bob.ID, service.TaskQuery{
		Filter: service.TaskFilter{StatusID: &review.ID},
		Page:   firstPage(10),
	})
	assert.ErrorIs(t, err, service.ErrForbiddenReference)
}

func TestQuery_SortEveryFieldBothDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.provisionedUser(t)
	start := f.now
	day := func(d int) *time.Time {
		v := time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)
		return &v
	}

	rows := []struct {
		title     string
		deadline  *time.Time
		priority  string
		status    string
		completed *time.Time
	}{
		{"b", day(20), "High", "In progress", day(12)},
		{"a", day(15), "Urgent", "Pending", day(11)},
		{"none", nil, "", "", nil},
	}
	for i, row := range rows {
		f.now = start.Add(time.Duration(i) * time.Hour)
		input := service.TaskInput{Title: row.title, Deadline: row.deadline}
		if row.priority != "" {
			id := f.item(t, user.ID, model.KindPriority, row.priority).ID
			input.PriorityID = &id
		}
		if row.status != "" {
			id := f.item(t, user.ID, model.KindStatus, row.status).ID
			input.StatusID = &id
		}
		task := f.createTask(t, user.ID, input)

		patch := service.TaskPatch{}
		if row.priority == "" {
			patch.PriorityID = service.SetNull[uint]()
		}
		if row.status == "" {
			patch.StatusID = service.SetNull[uint]()
		}
		if row.completed != nil {
			patch.CompletedAt = service.SetTo(*row.completed)
		}
		_, err := f.tasks.UpdateTask(ctx, user.ID, task.ID, patch)
		require.NoError(t, err)
	}

	tests := []struct {
		field service.SortField
		asc   []string
		desc  []string
	}{
		{service.SortNone, []string{"b", "a", "none"}, []string{"b", "a", "none"}},
		{service.SortTitle, []string{"a", "b", "none"}, []string{"none", "b", "a"}},
		{service.SortDeadline, []string{"a", "b", "none"}, []string{"b", "a", "none"}},
		{service.SortPriority, []string{"a", "b", "none"}, []string{"b", "a", "none"}},
		{service.SortStatus, []string{"a", "b", "none"}, []string{"b", "a", "none"}},
		{service.SortCreatedAt, []string{"b", "a", "none"}, []string{"none", "a", "b"}},
		{service.SortCompletedAt, []string{"a", "b", "none"}, []string{"b", "a", "none"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			asc, err := f.query.Query(ctx, user.ID, service.TaskQuery{Sort: service.TaskSort{Field: tt.field}, Page: firstPage(10)})
			require.NoError(t, err)
			assert.Equal(t, tt.asc, titles(asc), "asc")

			desc, err := f.query.Query(ctx, user.ID, service.TaskQuery{Sort: service.TaskSort{Field: tt.field, Desc: true}, Page: firstPage(10)})
			require.NoError(t, err)
			assert.Equal(t, tt.desc, titles(desc), "desc")
		})
	}
}

func TestQuery_SortFieldIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	user := f.provisionedUser(t)
	for _, title := range []string{"zeta", "alpha", "Mid"} {
		f.createTask(t, user.ID, service.TaskInput{Title: title})
	}

	page, err := f.query.Query(context.Background(), user.ID, service.TaskQuery{
		Sort: service.TaskSort{Field: "Title", Desc: true},
		Page: firstPage(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "Mid", "alpha"}, titles(page))

	_, err = f.query.Query(context.Background(), user.ID, service.TaskQuery{
		Sort: service.TaskSort{Field: "Colour"},
		Page: firstPage(10),
	})
	assert.ErrorIs(t, err, service.ErrInvalidSortField)
}
