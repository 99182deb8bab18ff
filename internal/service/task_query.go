package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// TaskFilter holds the optional, AND-combined task filters.
// Deadline bounds are calendar days: From starts at 00:00:00 of its date and
// To ends at 23:59:59.999999 of its date, both in the bound's own location.
type TaskFilter struct {
	StatusID     *uint
	PriorityID   *uint
	TypeID       *uint
	DurationID   *uint
	IsCompleted  *bool
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
}

// IsZero reports whether no filter is set.
func (f TaskFilter) IsZero() bool {
	return f.StatusID == nil && f.PriorityID == nil && f.TypeID == nil && f.DurationID == nil &&
		f.IsCompleted == nil && f.DeadlineFrom == nil && f.DeadlineTo == nil
}

// SortField names a sortable task attribute.
type SortField string

const (
	SortNone        SortField = ""
	SortTitle       SortField = "title"
	SortDeadline    SortField = "deadline"
	SortPriority    SortField = "priority"
	SortStatus      SortField = "status"
	SortCreatedAt   SortField = "created_at"
	SortCompletedAt SortField = "completed_at"
)

// TaskSort orders query results. The zero value keeps primary key order.
type TaskSort struct {
	Field SortField
	Desc  bool
}

// ParseSort validates a field name and an asc/desc direction (default asc).
func ParseSort(field, direction string) (TaskSort, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	switch f {
	case SortNone, SortTitle, SortDeadline, SortPriority, SortStatus, SortCreatedAt, SortCompletedAt:
	default:
		return TaskSort{}, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
		return TaskSort{Field: f}, nil
	case "desc":
		return TaskSort{Field: f, Desc: true}, nil
	default:
		return TaskSort{}, fmt.Errorf("%w: direction %q", ErrInvalidSortField, direction)
	}
}

// PageRequest is a 1-based page with a caller-chosen size.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) validate() error {
	if p.Page <= 0 || p.Size <= 0 {
		return fmt.Errorf("%w: page=%d size=%d", ErrInvalidPageRequest, p.Page, p.Size)
	}
	return nil
}

// TaskQuery bundles everything Query accepts.
type TaskQuery struct {
	Filter TaskFilter
	Sort   TaskSort
	Search string
	Page   PageRequest
}

// VocabularyRef is the projection of a referenced vocabulary item.
type VocabularyRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Color   string `json:"color,omitempty"`
	Order   int    `json:"order"`
	IsFinal bool   `json:"is_final,omitempty"`
}

// TaskView is the task as returned to callers.
type TaskView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      *VocabularyRef `json:"status,omitempty"`
	Priority    *VocabularyRef `json:"priority,omitempty"`
	Duration    *VocabularyRef `json:"duration,omitempty"`
	Type        *VocabularyRef `json:"type,omitempty"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	IsCompleted bool           `json:"is_completed"`
}

// TaskPage is one page of query results. Page is the page actually returned,
// which is the last page when the request ran past the end.
type TaskPage struct {
	Items []TaskView `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Size  int        `json:"size"`
}

// QueryService filters, searches, sorts and paginates a user's tasks.
type QueryService struct {
	tasks    TaskStore
	settings *SettingsService
	log      *zap.Logger
}

func NewQueryService(tasks TaskStore, settings *SettingsService, log *zap.Logger) *QueryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryService{tasks: tasks, settings: settings, log: log.Named("query")}
}

// Query returns one page of the user's tasks. Filters are applied first, then
// the search, then the sort; Total counts the filtered and searched set.
func (s *QueryService) Query(ctx context.Context, userID uint, q TaskQuery) (*TaskPage, error) {
	if err := q.Page.validate(); err != nil {
		return nil, err
	}
	order, err := ParseSort(string(q.Sort.Field), "")
	if err != nil {
		return nil, err
	}
	order.Desc = q.Sort.Desc

	tasks, err := s.load(ctx, userID, q.Filter, q.Search, true)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks, order)

	total := len(tasks)
	page := &TaskPage{Items: []TaskView{}, Total: total, Page: 1, Size: q.Page.Size}
	if total == 0 {
		return page, nil
	}
	page.Pages = (total + q.Page.Size - 1) / q.Page.Size
	page.Page = q.Page.Page
	if page.Page > page.Pages {
		page.Page = page.Pages
	}
	start := (page.Page - 1) * q.Page.Size
	end := start + q.Page.Size
	if end > total {
		end = total
	}
	for _, task := range tasks[start:end] {
		page.Items = append(page.Items, NewTaskView(task))
	}

	s.log.Debug("task query",
		zap.Uint("user_id", userID),
		zap.Int("total", total),
		zap.Int("page", page.Page),
		zap.String("sort", string(order.Field)))
	return page, nil
}

// Count applies the same filters and search as Query without building views.
func (s *QueryService) Count(ctx context.Context, userID uint, filter TaskFilter, search string) (int, error) {
	tasks, err := s.load(ctx, userID, filter, search, false)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

func (s *QueryService) load(ctx context.Context, userID uint, f TaskFilter, search string, withRefs bool) ([]model.Task, error) {
	refs := []struct {
		id   *uint
		kind model.Kind
	}{
		{f.StatusID, model.KindStatus},
		{f.PriorityID, model.KindPriority},
		{f.TypeID, model.KindType},
		{f.DurationID, model.KindDuration},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := s.settings.BelongsTo(ctx, userID, *ref.id, ref.kind)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s %d", ErrForbiddenReference, ref.kind, *ref.id)
		}
	}

	tasks, err := s.tasks.List(ctx, userID, repository.TaskCriteria{
		StatusID:    f.StatusID,
		PriorityID:  f.PriorityID,
		TypeID:      f.TypeID,
		DurationID:  f.DurationID,
		IsCompleted: f.IsCompleted,
		WithRefs:    withRefs,
	})
	if err != nil {
		return nil, err
	}

	from, to := dayBounds(f.DeadlineFrom, f.DeadlineTo)
	term := strings.ToLower(strings.TrimSpace(search))
	matched := tasks[:0]
	for _, task := range tasks {
		if !inDeadlineRange(task, from, to) {
			continue
		}
		if term != "" && !matchesSearch(task, term) {
			continue
		}
		matched = append(matched, task)
	}
	return matched, nil
}

func dayBounds(from, to *time.Time) (*time.Time, *time.Time) {
	var start, end *time.Time
	if from != nil {
		y, m, d := from.Date()
		t := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
		start = &t
	}
	if to != nil {
		y, m, d := to.Date()
		t := time.Date(y, m, d, 23, 59, 59, 999999000, to.Location())
		end = &t
	}
	return start, end
}

func inDeadlineRange(task model.Task, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if task.Deadline == nil {
		return false
	}
	if from != nil && task.Deadline.Before(*from) {
		return false
	}
	if to != nil && task.Deadline.After(*to) {
		return false
	}
	return true
}

func matchesSearch(task model.Task, term string) bool {
	return strings.Contains(strings.ToLower(task.Title), term) ||
		strings.Contains(strings.ToLower(task.Description), term)
}

// sortTasks orders tasks in place. Tasks missing the sort key (no deadline,
// priority, status or completion) go last in both directions; ties keep the
// incoming primary key order.
func sortTasks(tasks []model.Task, s TaskSort) {
	if s.Field == SortNone {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		aMissing, bMissing := missingKey(a, s.Field), missingKey(b, s.Field)
		switch {
		case aMissing && bMissing:
			return false
		case aMissing:
			return false
		case bMissing:
			return true
		}
		c := compareKey(a, b, s.Field)
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

func missingKey(t model.Task, field SortField) bool {
	switch field {
	case SortDeadline:
		return t.Deadline == nil
	case SortPriority:
		return t.Priority == nil
	case SortStatus:
		return t.Status == nil
	case SortCompletedAt:
		return t.CompletedAt == nil
	default:
		return false
	}
}

// compareKey assumes neither task is missing the key. Priority and status
// compare by display order, so the lowest order number (the most urgent
// priority) comes first in ascending mode.
func compareKey(a, b model.Task, field SortField) int {
	switch field {
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortDeadline:
		return a.Deadline.Compare(*b.Deadline)
	case SortPriority:
		return compareInt(a.Priority.Order, b.Priority.Order)
	case SortStatus:
		return compareInt(a.Status.Order, b.Status.Order)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortCompletedAt:
		return a.CompletedAt.Compare(*b.CompletedAt)
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NewTaskView projects a task and its loaded references.
func NewTaskView(t model.Task) TaskView {
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      newRef(t.Status),
		Priority:    newRef(t.Priority),
		Duration:    newRef(t.Duration),
		Type:        newRef(t.Type),
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
		IsCompleted: t.IsCompleted(),
	}
}

func newRef(item *model.VocabularyItem) *VocabularyRef {
	if item == nil {
		return nil
	}
	return &VocabularyRef{
		ID:      item.ID,
		Name:    item.Name,
		Code:    item.Code,
		Color:   item.Color,
		Order:   item.Order,
		IsFinal: item.IsFinal,
	}
}
