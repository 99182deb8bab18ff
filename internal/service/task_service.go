package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// DefaultTaskTitle replaces an empty title.
const DefaultTaskTitle = "Untitled task"

// TaskInput represents data required to create a task. Omitted status,
// priority and type are filled from the user's default items.
type TaskInput struct {
	Title       string
	Description string
	StatusID    *uint
	PriorityID  *uint
	TypeID      *uint
	DurationID  *uint
	Deadline    *time.Time
}

// Optional distinguishes "not supplied" from "supplied as null" in a patch.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a supplied, non-null Optional.
func SetTo[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// SetNull returns a supplied Optional that clears the field.
func SetNull[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// TaskPatch is a partial update; only supplied fields are written.
type TaskPatch struct {
	Title       *string
	Description *string
	StatusID    Optional[uint]
	PriorityID  Optional[uint]
	TypeID      Optional[uint]
	DurationID  Optional[uint]
	Deadline    Optional[time.Time]
	CompletedAt Optional[time.Time]
}

// TaskService wraps task-related business logic.
type TaskService struct {
	users    UserStore
	tasks    TaskStore
	settings *SettingsService
	log      *zap.Logger
	now      func() time.Time
}

func NewTaskService(users UserStore, tasks TaskStore, settings *SettingsService, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{
		users:    users,
		tasks:    tasks,
		settings: settings,
		log:      log.Named("tasks"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// CreateTask stores a new task for the user. Vocabulary references must be
// owned by the user. Without an explicit deadline, a duration yields one
// anchored at creation time. A final status marks the task completed.
func (s *TaskService) CreateTask(ctx context.Context, userID uint, input TaskInput) (*TaskView, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	// Defaults must be real rows of the user before tasks can point at them.
	provisioned, err := s.settings.Provision(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, err := s.refOrDefault(ctx, userID, input.StatusID, model.KindStatus, provisioned)
	if err != nil {
		return nil, err
	}
	priority, err := s.refOrDefault(ctx, userID, input.PriorityID, model.KindPriority, provisioned)
	if err != nil {
		return nil, err
	}
	taskType, err := s.refOrDefault(ctx, userID, input.TypeID, model.KindType, provisioned)
	if err != nil {
		return nil, err
	}
	var duration *model.VocabularyItem
	if input.DurationID != nil {
		if duration, err = s.ref(ctx, userID, *input.DurationID, model.KindDuration, provisioned); err != nil {
			return nil, err
		}
	}

	now := s.now()
	task := model.Task{
		UserID:      userID,
		Title:       normalizeTitle(input.Title),
		Description: strings.TrimSpace(input.Description),
		StatusID:    itemID(status),
		PriorityID:  itemID(priority),
		TypeID:      itemID(taskType),
		DurationID:  itemID(duration),
		CreatedAt:   now,
	}

	switch {
	case input.Deadline != nil:
		deadline := *input.Deadline
		task.Deadline = &deadline
	case duration != nil:
		deadline, err := ResolveItem(*duration, now)
		if err != nil {
			return nil, err
		}
		task.Deadline = &deadline
	}

	if status != nil && status.IsFinal {
		completedAt := now
		task.CompletedAt = &completedAt
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	s.log.Info("task created", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return s.reload(ctx, userID, task.ID)
}

// UpdateTask applies patch to an owned task. Changing the status sets or
// clears completed_at unless the patch carries completed_at itself. Changing
// the duration recomputes the deadline from now unless the patch carries a
// deadline itself.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, patch TaskPatch) (*TaskView, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if patch.Title != nil {
		task.Title = normalizeTitle(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.PriorityID.Set {
		if task.PriorityID, err = s.ownedRef(ctx, userID, patch.PriorityID.Value, model.KindPriority); err != nil {
			return nil, err
		}
	}
	if patch.TypeID.Set {
		if task.TypeID, err = s.ownedRef(ctx, userID, patch.TypeID.Value, model.KindType); err != nil {
			return nil, err
		}
	}

	if patch.StatusID.Set {
		wasFinal := task.Status != nil && task.Status.IsFinal
		var status *model.VocabularyItem
		if patch.StatusID.Value != nil {
			if status, err = s.settings.Item(ctx, userID, *patch.StatusID.Value, model.KindStatus); err != nil {
				return nil, err
			}
		}
		task.StatusID = itemID(status)
		if !patch.CompletedAt.Set {
			switch {
			case status != nil && status.IsFinal:
				if task.CompletedAt == nil {
					completedAt := now
					task.CompletedAt = &completedAt
				}
			case wasFinal:
				task.CompletedAt = nil
			}
		}
	}
	if patch.CompletedAt.Set {
		task.CompletedAt = copyTime(patch.CompletedAt.Value)
	}

	if patch.DurationID.Set {
		var duration *model.VocabularyItem
		if patch.DurationID.Value != nil {
			if duration, err = s.settings.Item(ctx, userID, *patch.DurationID.Value, model.KindDuration); err != nil {
				return nil, err
			}
		}
		task.DurationID = itemID(duration)
		if duration != nil && !patch.Deadline.Set {
			deadline, err := ResolveItem(*duration, now)
			if err != nil {
				return nil, err
			}
			task.Deadline = &deadline
		}
	}
	if patch.Deadline.Set {
		task.Deadline = copyTime(patch.Deadline.Value)
	}

	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info("task updated", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return s.reload(ctx, userID, task.ID)
}

// GetTask returns an owned task.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint) (*TaskView, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	view := NewTaskView(*task)
	return &view, nil
}

// CompleteTask marks a task as done and moves it to the user's "completed"
// status when one exists.
func (s *TaskService) CompleteTask(ctx context.Context, userID, taskID uint) (*TaskView, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.CompletedAt == nil {
		completedAt := s.now()
		task.CompletedAt = &completedAt
	}
	if task.Status == nil || !task.Status.IsFinal {
		status, err := s.settings.StatusByCode(ctx, userID, "completed")
		if err != nil {
			return nil, err
		}
		if status != nil && status.IsFinal {
			task.StatusID = itemID(status)
		}
	}
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info("task completed", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return s.reload(ctx, userID, task.ID)
}

// ReopenTask clears completion and, if the task sits in a final status, moves
// it back to the user's default status.
func (s *TaskService) ReopenTask(ctx context.Context, userID, taskID uint) (*TaskView, error) {
	task, err := s.find(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.CompletedAt = nil
	if task.Status != nil && task.Status.IsFinal {
		status, err := s.settings.DefaultItem(ctx, userID, model.KindStatus)
		if err != nil {
			return nil, err
		}
		if status != nil && status.IsFinal {
			status = nil
		}
		task.StatusID = itemID(status)
	}
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info("task reopened", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return s.reload(ctx, userID, task.ID)
}

// DeleteTask removes an owned task. Missing or foreign tasks report false.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) (bool, error) {
	deleted, err := s.tasks.Delete(ctx, userID, taskID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("task deleted", zap.Uint("task_id", taskID), zap.Uint("user_id", userID))
	}
	return deleted, nil
}

func (s *TaskService) save(ctx context.Context, task *model.Task) error {
	if err := s.tasks.Save(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: task %d", ErrNotFound, task.ID)
		}
		return err
	}
	return nil
}

func (s *TaskService) find(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) reload(ctx context.Context, userID, taskID uint) (*TaskView, error) {
	return s.GetTask(ctx, userID, taskID)
}

func (s *TaskService) refOrDefault(ctx context.Context, userID uint, id *uint, kind model.Kind, provisioned map[model.Kind]int) (*model.VocabularyItem, error) {
	if id != nil {
		return s.ref(ctx, userID, *id, kind, provisioned)
	}
	return s.settings.DefaultItem(ctx, userID, kind)
}

// ref resolves an owned item. For a kind provisioned by this very call the
// caller could only have seen the fallback defaults, so a default id is
// accepted and mapped onto the user's new copy.
func (s *TaskService) ref(ctx context.Context, userID, id uint, kind model.Kind, provisioned map[model.Kind]int) (*model.VocabularyItem, error) {
	item, err := s.settings.Item(ctx, userID, id, kind)
	if err == nil || provisioned[kind] == 0 || !errors.Is(err, ErrForbiddenReference) {
		return item, err
	}
	if adopted, aerr := s.settings.AdoptedDefault(ctx, userID, id, kind); aerr == nil {
		return adopted, nil
	}
	return nil, err
}

func (s *TaskService) ownedRef(ctx context.Context, userID uint, id *uint, kind model.Kind) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	item, err := s.settings.Item(ctx, userID, *id, kind)
	if err != nil {
		return nil, err
	}
	return &item.ID, nil
}

func itemID(item *model.VocabularyItem) *uint {
	if item == nil {
		return nil
	}
	id := item.ID
	return &id
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTaskTitle
	}
	return title
}
