package repository

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-planner/internal/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type seedItem struct {
	Name    string             `yaml:"name"`
	Code    string             `yaml:"code"`
	Color   string             `yaml:"color"`
	Order   int                `yaml:"order"`
	Default bool               `yaml:"default"`
	Final   bool               `yaml:"final"`
	Unit    model.DurationUnit `yaml:"unit"`
	Value   int                `yaml:"value"`
}

// LoadDefaults parses a vocabulary seed document keyed by kind. Keys may be
// singular or plural ("status", "task_types").
func LoadDefaults(raw []byte) ([]model.DefaultVocabularyItem, error) {
	var doc map[string][]seedItem
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}
	byKind := make(map[model.Kind][]seedItem, len(doc))
	for key, entries := range doc {
		kind, err := model.ParseKind(key)
		if err != nil {
			return nil, fmt.Errorf("parse defaults: %w", err)
		}
		byKind[kind] = append(byKind[kind], entries...)
	}

	var items []model.DefaultVocabularyItem
	for _, kind := range model.Kinds {
		for _, s := range byKind[kind] {
			if s.Name == "" {
				return nil, fmt.Errorf("parse defaults: %s item without name", kind)
			}
			if kind == model.KindDuration {
				// Seed files predate strict units; anything unrecognized counts in days.
				unit, ok := model.ParseDurationUnit(string(s.Unit))
				if !ok {
					unit = model.UnitDays
				}
				s.Unit = unit
			}
			items = append(items, model.DefaultVocabularyItem{
				Kind:      kind,
				Name:      s.Name,
				Code:      s.Code,
				Color:     s.Color,
				Order:     s.Order,
				IsDefault: s.Default,
				IsActive:  true,
				IsFinal:   s.Final,
				Unit:      s.Unit,
				Value:     s.Value,
			})
		}
	}
	return items, nil
}

// SeedDefaults inserts the embedded global vocabulary. Rows already present
// (by kind and name) are left untouched, so it is safe to run on every boot.
func SeedDefaults(ctx context.Context, db *gorm.DB) (int64, error) {
	items, err := LoadDefaults(defaultsYAML)
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "kind"}, {Name: "name"}}, DoNothing: true}).
		Create(&items)
	if res.Error != nil {
		return 0, fmt.Errorf("seed defaults: %w", res.Error)
	}
	return res.RowsAffected, nil
}
