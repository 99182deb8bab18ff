package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// Settings is a user's effective vocabulary of every kind.
type Settings struct {
	Statuses   []model.VocabularyItem `json:"statuses"`
	Priorities []model.VocabularyItem `json:"priorities"`
	Durations  []model.VocabularyItem `json:"durations"`
	Types      []model.VocabularyItem `json:"types"`
}

// ItemPatch carries the editable fields of a vocabulary item. Nil fields are left untouched.
type ItemPatch struct {
	Name     *string
	Code     *string
	Color    *string
	Order    *int
	IsActive *bool
	IsFinal  *bool
	Unit     *string
	Value    *int
}

// SettingsService resolves a user's vocabulary with fallback to the global defaults.
type SettingsService struct {
	users UserStore
	vocab VocabularyStore
	log   *zap.Logger
}

func NewSettingsService(users UserStore, vocab VocabularyStore, log *zap.Logger) *SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsService{users: users, vocab: vocab, log: log.Named("settings")}
}

// GetVocabulary returns the user's active items of kind in display order. When
// the user owns none it returns the global defaults without writing anything.
// An unknown user yields an empty list.
func (s *SettingsService) GetVocabulary(ctx context.Context, userID uint, kind model.Kind) ([]model.VocabularyItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.VocabularyItem{}, nil
	}
	return s.vocabulary(ctx, userID, kind)
}

func (s *SettingsService) vocabulary(ctx context.Context, userID uint, kind model.Kind) ([]model.VocabularyItem, error) {
	items, err := s.vocab.ListActive(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	defaults, err := s.vocab.ListDefaults(ctx, kind)
	if err != nil {
		return nil, err
	}
	view := make([]model.VocabularyItem, 0, len(defaults))
	for _, d := range defaults {
		view = append(view, d.View())
	}
	s.log.Debug("using default vocabulary", zap.Uint("user_id", userID), zap.String("kind", string(kind)))
	return view, nil
}

// GetSettings returns every kind at once.
func (s *SettingsService) GetSettings(ctx context.Context, userID uint) (*Settings, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings := &Settings{
		Statuses:   []model.VocabularyItem{},
		Priorities: []model.VocabularyItem{},
		Durations:  []model.VocabularyItem{},
		Types:      []model.VocabularyItem{},
	}
	if !ok {
		return settings, nil
	}
	for _, kind := range model.Kinds {
		items, err := s.vocabulary(ctx, userID, kind)
		if err != nil {
			return nil, err
		}
		switch kind {
		case model.KindStatus:
			settings.Statuses = items
		case model.KindPriority:
			settings.Priorities = items
		case model.KindDuration:
			settings.Durations = items
		case model.KindType:
			settings.Types = items
		}
	}
	return settings, nil
}

// Provision clones the global defaults into the user's own rows for every kind
// the user has no rows of. Kinds with any row, active or not, are skipped
// entirely. It returns how many rows were created per kind; a second call
// creates nothing.
func (s *SettingsService) Provision(ctx context.Context, userID uint) (map[model.Kind]int, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[model.Kind]int{}, nil
	}

	counts, err := s.vocab.CountByKind(ctx, userID)
	if err != nil {
		return nil, err
	}
	var missing []model.Kind
	for _, kind := range model.Kinds {
		if counts[kind] == 0 {
			missing = append(missing, kind)
		}
	}
	if len(missing) == 0 {
		s.log.Debug("user already has settings", zap.Uint("user_id", userID))
		return map[model.Kind]int{}, nil
	}

	created, err := s.vocab.CloneDefaults(ctx, userID, missing)
	if err != nil {
		return nil, fmt.Errorf("provision user %d: %w", userID, err)
	}
	s.log.Info("provisioned settings", zap.Uint("user_id", userID), zap.Any("created", created))
	return created, nil
}

// BelongsTo reports whether itemID is a vocabulary item of kind owned by userID.
func (s *SettingsService) BelongsTo(ctx context.Context, userID, itemID uint, kind model.Kind) (bool, error) {
	item, err := s.vocab.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return item.UserID == userID && item.Kind == kind, nil
}

// Item returns an owned item of kind or ErrForbiddenReference.
func (s *SettingsService) Item(ctx context.Context, userID, itemID uint, kind model.Kind) (*model.VocabularyItem, error) {
	item, err := s.vocab.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %d", ErrForbiddenReference, kind, itemID)
		}
		return nil, err
	}
	if item.UserID != userID || item.Kind != kind {
		return nil, fmt.Errorf("%w: %s %d", ErrForbiddenReference, kind, itemID)
	}
	return item, nil
}

// AdoptedDefault maps the id of a global default, as listed by the read-only
// fallback, onto the user's own copy of it made by Provision.
func (s *SettingsService) AdoptedDefault(ctx context.Context, userID, defaultID uint, kind model.Kind) (*model.VocabularyItem, error) {
	def, err := s.vocab.FindDefaultByID(ctx, defaultID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %d", ErrForbiddenReference, kind, defaultID)
		}
		return nil, err
	}
	if def.Kind != kind {
		return nil, fmt.Errorf("%w: %s %d", ErrForbiddenReference, kind, defaultID)
	}
	items, err := s.vocab.ListActive(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Name == def.Name {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s %d", ErrForbiddenReference, kind, defaultID)
}

// DefaultItem returns the user's own item flagged as default for kind, or nil.
// SetDefault keeps the flag unique; older data with several defaults resolves
// to the first one in display order.
func (s *SettingsService) DefaultItem(ctx context.Context, userID uint, kind model.Kind) (*model.VocabularyItem, error) {
	items, err := s.vocab.ListActive(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].IsDefault {
			return &items[i], nil
		}
	}
	return nil, nil
}

// StatusByCode returns the user's active status with the given machine code, or nil.
func (s *SettingsService) StatusByCode(ctx context.Context, userID uint, code string) (*model.VocabularyItem, error) {
	items, err := s.vocab.ListActive(ctx, userID, model.KindStatus)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Code == code {
			return &items[i], nil
		}
	}
	return nil, nil
}

// AddItem creates a new item in the user's vocabulary.
func (s *SettingsService) AddItem(ctx context.Context, userID uint, item model.VocabularyItem) (*model.VocabularyItem, error) {
	if err := checkKind(item.Kind); err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if err := normalizeDuration(&item); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item.ID = 0
	item.UserID = userID
	item.IsActive = true
	if item.Kind != model.KindStatus {
		item.IsFinal = false
	}
	if err := s.vocab.Create(ctx, &item); err != nil {
		return nil, duplicateItem(err)
	}
	s.log.Info("vocabulary item added", zap.Uint("user_id", userID), zap.String("kind", string(item.Kind)), zap.Uint("item_id", item.ID))
	return &item, nil
}

// UpdateItem applies patch to an owned item.
func (s *SettingsService) UpdateItem(ctx context.Context, userID, itemID uint, patch ItemPatch) (*model.VocabularyItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidItem)
		}
		item.Name = name
	}
	if patch.Code != nil {
		item.Code = *patch.Code
	}
	if patch.Color != nil {
		item.Color = *patch.Color
	}
	if patch.Order != nil {
		item.Order = *patch.Order
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}
	if patch.IsFinal != nil && item.Kind == model.KindStatus {
		item.IsFinal = *patch.IsFinal
	}
	if patch.Unit != nil {
		item.Unit = model.DurationUnit(*patch.Unit)
	}
	if patch.Value != nil {
		item.Value = *patch.Value
	}
	if err := normalizeDuration(item); err != nil {
		return nil, err
	}
	if err := s.vocab.Save(ctx, item); err != nil {
		return nil, duplicateItem(err)
	}
	return item, nil
}

// DeleteItem removes an owned item; tasks referencing it lose the reference.
func (s *SettingsService) DeleteItem(ctx context.Context, userID, itemID uint) (bool, error) {
	deleted, err := s.vocab.Delete(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("vocabulary item deleted", zap.Uint("user_id", userID), zap.Uint("item_id", itemID))
	}
	return deleted, nil
}

// SetDefault makes itemID the only default of its kind for the user.
func (s *SettingsService) SetDefault(ctx context.Context, userID, itemID uint) (*model.VocabularyItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.vocab.SetDefault(ctx, userID, item.Kind, item.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	item.IsDefault = true
	return item, nil
}

func (s *SettingsService) ownedItem(ctx context.Context, userID, itemID uint) (*model.VocabularyItem, error) {
	item, err := s.vocab.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *SettingsService) requireUser(ctx context.Context, userID uint) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func checkKind(kind model.Kind) error {
	for _, k := range model.Kinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func normalizeDuration(item *model.VocabularyItem) error {
	if item.Kind != model.KindDuration {
		item.Unit = ""
		item.Value = 0
		return nil
	}
	unit, ok := model.ParseDurationUnit(string(item.Unit))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDurationUnit, item.Unit)
	}
	if item.Value < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDuration, item.Value)
	}
	item.Unit = unit
	return nil
}

func duplicateItem(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrDuplicateItem, err)
	}
	return err
}
