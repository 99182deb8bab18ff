package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/model"
	"task-planner/internal/service"
)

func TestResolveDeadline(t *testing.T) {
	tests := []struct {
		name   string
		unit   model.DurationUnit
		value  int
		anchor time.Time
		want   time.Time
	}{
		{"days", model.UnitDays, 3, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)},
		{"weeks", model.UnitWeeks, 1, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), time.Date(2025, 3, 17, 9, 30, 0, 0, time.UTC)},
		{"zero", model.UnitDays, 0, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)},
		{"month clamps to february", model.UnitMonths, 1, time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC)},
		{"month clamps to leap day", model.UnitMonths, 1, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)},
		{"months across year end", model.UnitMonths, 13, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"year from leap day", model.UnitYears, 1, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)},
		{"short unit alias", model.DurationUnit("w"), 2, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"singular unit", model.DurationUnit("Month"), 6, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ResolveDeadline(tt.unit, tt.value, tt.anchor)
			require.NoError(t, err)
			assertSameTime(t, tt.want, got)
		})
	}
}

func TestResolveDeadline_Errors(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := service.ResolveDeadline("fortnights", 1, anchor)
	assert.ErrorIs(t, err, service.ErrInvalidDurationUnit)

	_, err = service.ResolveDeadline(model.UnitDays, -1, anchor)
	assert.ErrorIs(t, err, service.ErrNegativeDuration)

	_, err = service.ResolveItem(model.VocabularyItem{Kind: model.KindPriority, Unit: model.UnitDays, Value: 1}, anchor)
	assert.ErrorIs(t, err, service.ErrInvalidDurationUnit)
}

func TestResolveDeadline_NeverBeforeAnchorAndAlwaysValidDate(t *testing.T) {
	units := []model.DurationUnit{model.UnitDays, model.UnitWeeks, model.UnitMonths, model.UnitYears}
	start := time.Date(2023, 12, 1, 13, 45, 0, 0, time.UTC)
	for day := 0; day < 120; day += 3 {
		anchor := start.AddDate(0, 0, day)
		for _, unit := range units {
			for value := 0; value <= 25; value++ {
				got, err := service.ResolveDeadline(unit, value, anchor)
				require.NoError(t, err)
				assert.False(t, got.Before(anchor), "%d %s from %s gave %s", value, unit, anchor, got)
				if unit == model.UnitMonths || unit == model.UnitYears {
					// a rolled-over date (Feb 30 -> Mar 2) would move the day forward
					assert.LessOrEqual(t, got.Day(), anchor.Day(), "%d %s from %s gave %s", value, unit, anchor, got)
					assert.Equal(t, anchor.Hour(), got.Hour())
				}
			}
		}
	}
}

func TestResolveItem(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	item := model.VocabularyItem{Kind: model.KindDuration, Name: "1 week", Unit: model.UnitWeeks, Value: 1}

	got, err := service.ResolveItem(item, anchor)
	require.NoError(t, err)
	assertSameTime(t, anchor.Add(7*24*time.Hour), got)
}

func TestParseDeadline(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)

	got, err := service.ParseDeadline("2025-04-01T08:00:00Z", now, time.UTC)
	require.NoError(t, err)
	assertSameTime(t, time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC), got)

	got, err = service.ParseDeadline("2025-04-01 18:15", now, time.UTC)
	require.NoError(t, err)
	assertSameTime(t, time.Date(2025, 4, 1, 18, 15, 0, 0, time.UTC), got)

	got, err = service.ParseDeadline("2025-04-01", now, time.UTC)
	require.NoError(t, err)
	// bare date takes the current time of day
	assertSameTime(t, time.Date(2025, 4, 1, 14, 5, 0, 0, time.UTC), got)

	_, err = service.ParseDeadline("next tuesday", now, time.UTC)
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

func TestParseDate(t *testing.T) {
	got, err := service.ParseDate(" 2025-03-01 ", time.UTC)
	require.NoError(t, err)
	assertSameTime(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = service.ParseDate("01.03.2025", time.UTC)
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}
