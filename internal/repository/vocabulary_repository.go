package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-planner/internal/model"
)

// taskColumn maps a vocabulary kind to the task column referencing it.
var taskColumn = map[model.Kind]string{
	model.KindStatus:   "status_id",
	model.KindPriority: "priority_id",
	model.KindDuration: "duration_id",
	model.KindType:     "type_id",
}

// VocabularyRepository manages per-user vocabulary rows and the global defaults.
type VocabularyRepository struct {
	db *gorm.DB
}

func NewVocabularyRepository(db *gorm.DB) *VocabularyRepository {
	return &VocabularyRepository{db: db}
}

// ListActive returns the user's active items of one kind in display order.
func (r *VocabularyRepository) ListActive(ctx context.Context, userID uint, kind model.Kind) ([]model.VocabularyItem, error) {
	var items []model.VocabularyItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND is_active = ?", userID, kind, true).
		Order("sort_order ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s items: %w", kind, err)
	}
	return items, nil
}

// ListDefaults returns the active global defaults of one kind in display order.
func (r *VocabularyRepository) ListDefaults(ctx context.Context, kind model.Kind) ([]model.DefaultVocabularyItem, error) {
	var items []model.DefaultVocabularyItem
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND is_active = ?", kind, true).
		Order("sort_order ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list default %s items: %w", kind, err)
	}
	return items, nil
}

// FindDefaultByID returns a global default row by id.
func (r *VocabularyRepository) FindDefaultByID(ctx context.Context, id uint) (*model.DefaultVocabularyItem, error) {
	var item model.DefaultVocabularyItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// CountByKind counts every row (active or not) the user owns, per kind.
func (r *VocabularyRepository) CountByKind(ctx context.Context, userID uint) (map[model.Kind]int64, error) {
	return countByKind(r.db.WithContext(ctx), userID)
}

func countByKind(db *gorm.DB, userID uint) (map[model.Kind]int64, error) {
	var rows []struct {
		Kind  model.Kind
		Total int64
	}
	if err := db.Model(&model.VocabularyItem{}).
		Select("kind, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count vocabulary: %w", err)
	}
	counts := make(map[model.Kind]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Total
	}
	return counts, nil
}

// CloneDefaults copies every active default of the given kinds into the user's
// vocabulary. Inside the transaction each kind is checked again and skipped if
// the user already owns rows of it; the (user, kind, name) unique index plus
// ON CONFLICT DO NOTHING absorbs a concurrent provisioner that wins the race.
func (r *VocabularyRepository) CloneDefaults(ctx context.Context, userID uint, kinds []model.Kind) (map[model.Kind]int, error) {
	created := make(map[model.Kind]int)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counts, err := countByKind(tx, userID)
		if err != nil {
			return err
		}
		for _, kind := range kinds {
			if counts[kind] > 0 {
				continue
			}
			var defaults []model.DefaultVocabularyItem
			if err := tx.Where("kind = ? AND is_active = ?", kind, true).
				Order("sort_order ASC, id ASC").
				Find(&defaults).Error; err != nil {
				return fmt.Errorf("list default %s items: %w", kind, err)
			}
			if len(defaults) == 0 {
				continue
			}
			items := make([]model.VocabularyItem, 0, len(defaults))
			for _, d := range defaults {
				items = append(items, d.ForUser(userID))
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}, {Name: "name"}},
				DoNothing: true,
			}).Create(&items)
			if res.Error != nil {
				return fmt.Errorf("clone %s defaults: %w", kind, res.Error)
			}
			created[kind] = int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByID returns any vocabulary row by id regardless of owner.
func (r *VocabularyRepository) FindByID(ctx context.Context, id uint) (*model.VocabularyItem, error) {
	var item model.VocabularyItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// Create inserts item. An item flagged IsDefault becomes the only default of
// its kind in the same transaction. A name already used by the user for that
// kind yields ErrDuplicate.
func (r *VocabularyRepository) Create(ctx context.Context, item *model.VocabularyItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, item); err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("create %s item: %w", item.Kind, duplicate(err))
		}
		if item.IsDefault {
			return setDefault(tx, item.UserID, item.Kind, item.ID)
		}
		return nil
	})
}

func (r *VocabularyRepository) Save(ctx context.Context, item *model.VocabularyItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, item); err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("save %s item: %w", item.Kind, duplicate(err))
		}
		return nil
	})
}

func checkNameFree(tx *gorm.DB, item *model.VocabularyItem) error {
	var n int64
	if err := tx.Model(&model.VocabularyItem{}).
		Where("user_id = ? AND kind = ? AND name = ? AND id <> ?", item.UserID, item.Kind, item.Name, item.ID).
		Count(&n).Error; err != nil {
		return fmt.Errorf("check %s name: %w", item.Kind, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s %q", ErrDuplicate, item.Kind, item.Name)
	}
	return nil
}

// Delete removes an owned item and nulls every task reference to it in the same
// transaction. Returns false if the item does not exist or belongs to someone else.
func (r *VocabularyRepository) Delete(ctx context.Context, userID, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.VocabularyItem
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("find item: %w", err)
		}
		column, ok := taskColumn[item.Kind]
		if !ok {
			return fmt.Errorf("item %d has unknown kind %q", item.ID, item.Kind)
		}
		if err := tx.Model(&model.Task{}).
			Where("user_id = ? AND "+column+" = ?", userID, item.ID).
			Update(column, nil).Error; err != nil {
			return fmt.Errorf("detach tasks: %w", err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// SetDefault flags one item as the default of its kind and clears the flag on
// every other item of that kind for the user.
func (r *VocabularyRepository) SetDefault(ctx context.Context, userID uint, kind model.Kind, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setDefault(tx, userID, kind, id)
	})
}

func setDefault(tx *gorm.DB, userID uint, kind model.Kind, id uint) error {
	if err := tx.Model(&model.VocabularyItem{}).
		Where("user_id = ? AND kind = ? AND id <> ?", userID, kind, id).
		Update("is_default", false).Error; err != nil {
		return fmt.Errorf("clear defaults: %w", err)
	}
	res := tx.Model(&model.VocabularyItem{}).
		Where("user_id = ? AND kind = ? AND id = ?", userID, kind, id).
		Update("is_default", true)
	if res.Error != nil {
		return fmt.Errorf("set default: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
