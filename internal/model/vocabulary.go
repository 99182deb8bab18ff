package model

import (
	"fmt"
	"strings"
)

// Kind names one of the four vocabularies a task can be classified by.
type Kind string

const (
	KindStatus   Kind = "status"
	KindPriority Kind = "priority"
	KindDuration Kind = "duration"
	KindType     Kind = "type"
)

// Kinds lists every vocabulary kind in provisioning order.
var Kinds = []Kind{KindStatus, KindPriority, KindDuration, KindType}

// ParseKind accepts singular or plural names ("statuses", "task_types").
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "status", "statuses":
		return KindStatus, nil
	case "priority", "priorities":
		return KindPriority, nil
	case "duration", "durations":
		return KindDuration, nil
	case "type", "types", "task_type", "task_types":
		return KindType, nil
	default:
		return "", fmt.Errorf("unknown vocabulary kind %q", raw)
	}
}

// DurationUnit is the calendar unit a Duration item counts in.
type DurationUnit string

const (
	UnitDays   DurationUnit = "days"
	UnitWeeks  DurationUnit = "weeks"
	UnitMonths DurationUnit = "months"
	UnitYears  DurationUnit = "years"
)

// VocabularyItem is a user-owned status, priority, duration or task type.
// Code and IsFinal only matter for statuses, Unit and Value only for durations.
type VocabularyItem struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;uniqueIndex:idx_vocab_user_kind_name"`
	Kind      Kind   `gorm:"size:16;index;uniqueIndex:idx_vocab_user_kind_name"`
	Name      string `gorm:"uniqueIndex:idx_vocab_user_kind_name"`
	Code      string
	Color     string
	Order     int          `gorm:"column:sort_order"`
	IsDefault bool         `gorm:"default:false"`
	IsActive  bool         `gorm:"not null"`
	IsFinal   bool         `gorm:"default:false"`
	Unit      DurationUnit `gorm:"size:16"`
	Value     int
}

// DefaultVocabularyItem is the global template provisioned into every user's vocabulary.
type DefaultVocabularyItem struct {
	ID        uint   `gorm:"primaryKey"`
	Kind      Kind   `gorm:"size:16;uniqueIndex:idx_default_vocab_kind_name"`
	Name      string `gorm:"uniqueIndex:idx_default_vocab_kind_name"`
	Code      string
	Color     string
	Order     int          `gorm:"column:sort_order"`
	IsDefault bool         `gorm:"default:false"`
	IsActive  bool         `gorm:"not null"`
	IsFinal   bool         `gorm:"default:false"`
	Unit      DurationUnit `gorm:"size:16"`
	Value     int
}

// ForUser clones the default into a row owned by userID. The ID is left unset.
func (d DefaultVocabularyItem) ForUser(userID uint) VocabularyItem {
	return VocabularyItem{
		UserID:    userID,
		Kind:      d.Kind,
		Name:      d.Name,
		Code:      d.Code,
		Color:     d.Color,
		Order:     d.Order,
		IsDefault: d.IsDefault,
		IsActive:  d.IsActive,
		IsFinal:   d.IsFinal,
		Unit:      d.Unit,
		Value:     d.Value,
	}
}

// View exposes the default as a read-only item. UserID stays zero and ID is the default's own id.
func (d DefaultVocabularyItem) View() VocabularyItem {
	item := d.ForUser(0)
	item.ID = d.ID
	return item
}

// ParseDurationUnit normalizes singular, plural and short unit names.
func ParseDurationUnit(raw string) (DurationUnit, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "d", "day", "days":
		return UnitDays, true
	case "w", "week", "weeks":
		return UnitWeeks, true
	case "m", "month", "months":
		return UnitMonths, true
	case "y", "year", "years":
		return UnitYears, true
	default:
		return "", false
	}
}
