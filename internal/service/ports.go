package service

import (
	"context"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// UserStore is the user lookup the engine needs.
type UserStore interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// VocabularyStore persists per-user vocabulary and reads the global defaults.
type VocabularyStore interface {
	ListActive(ctx context.Context, userID uint, kind model.Kind) ([]model.VocabularyItem, error)
	ListDefaults(ctx context.Context, kind model.Kind) ([]model.DefaultVocabularyItem, error)
	FindDefaultByID(ctx context.Context, id uint) (*model.DefaultVocabularyItem, error)
	CountByKind(ctx context.Context, userID uint) (map[model.Kind]int64, error)
	CloneDefaults(ctx context.Context, userID uint, kinds []model.Kind) (map[model.Kind]int, error)
	FindByID(ctx context.Context, id uint) (*model.VocabularyItem, error)
	Create(ctx context.Context, item *model.VocabularyItem) error
	Save(ctx context.Context, item *model.VocabularyItem) error
	Delete(ctx context.Context, userID, id uint) (bool, error)
	SetDefault(ctx context.Context, userID uint, kind model.Kind, id uint) error
}

// TaskStore persists tasks. FindByID must scope by owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, userID uint, criteria repository.TaskCriteria) ([]model.Task, error)
	FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, taskID uint) (bool, error)
}

var (
	_ UserStore       = (*repository.UserRepository)(nil)
	_ VocabularyStore = (*repository.VocabularyRepository)(nil)
	_ TaskStore       = (*repository.TaskRepository)(nil)
)
