package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-planner/internal/model"
)

// TaskCriteria narrows the rows loaded for a user. Nil fields are not applied.
type TaskCriteria struct {
	StatusID    *uint
	PriorityID  *uint
	TypeID      *uint
	DurationID  *uint
	IsCompleted *bool
	// WithRefs preloads the referenced vocabulary items.
	WithRefs bool
}

func (c TaskCriteria) scope(db *gorm.DB) *gorm.DB {
	if c.StatusID != nil {
		db = db.Where("status_id = ?", *c.StatusID)
	}
	if c.PriorityID != nil {
		db = db.Where("priority_id = ?", *c.PriorityID)
	}
	if c.TypeID != nil {
		db = db.Where("type_id = ?", *c.TypeID)
	}
	if c.DurationID != nil {
		db = db.Where("duration_id = ?", *c.DurationID)
	}
	if c.IsCompleted != nil {
		if *c.IsCompleted {
			db = db.Where("completed_at IS NOT NULL")
		} else {
			db = db.Where("completed_at IS NULL")
		}
	}
	if c.WithRefs {
		db = preloadRefs(db)
	}
	return db
}

func preloadRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Status").Preload("Priority").Preload("Duration").Preload("Type")
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// List loads the user's tasks matching criteria in primary key order.
func (r *TaskRepository) List(ctx context.Context, userID uint, criteria TaskCriteria) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Scopes(criteria.scope).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FindByID returns the task only if it is owned by userID.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := preloadRefs(r.db.WithContext(ctx)).
		Where("user_id = ? AND id = ?", userID, taskID).
		First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// Save writes every column of the task, including cleared (nil) references.
// A task deleted since it was read is reported as ErrNotFound, never re-inserted.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if task.ID == 0 {
		return ErrNotFound
	}
	row := *task
	row.Status, row.Priority, row.Duration, row.Type = nil, nil, nil, nil
	res := r.db.WithContext(ctx).
		Model(&row).
		Where("user_id = ?", row.UserID).
		Select("*").
		Omit(clause.Associations).
		Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("save task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	task.UpdatedAt = row.UpdatedAt
	return nil
}

// Delete removes a task for the given user. It reports whether a row was removed.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
