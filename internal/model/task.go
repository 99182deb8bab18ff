package model

import "time"

// Task represents a single item in the planner.
type Task struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      uint  `gorm:"index"`
	StatusID    *uint `gorm:"index"`
	PriorityID  *uint `gorm:"index"`
	DurationID  *uint `gorm:"index"`
	TypeID      *uint `gorm:"index"`
	Title       string
	Description string
	Deadline    *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Status   *VocabularyItem `gorm:"foreignKey:StatusID;constraint:OnDelete:SET NULL"`
	Priority *VocabularyItem `gorm:"foreignKey:PriorityID;constraint:OnDelete:SET NULL"`
	Duration *VocabularyItem `gorm:"foreignKey:DurationID;constraint:OnDelete:SET NULL"`
	Type     *VocabularyItem `gorm:"foreignKey:TypeID;constraint:OnDelete:SET NULL"`
}

// IsCompleted reports whether the task carries a completion timestamp.
func (t Task) IsCompleted() bool {
	return t.CompletedAt != nil
}
