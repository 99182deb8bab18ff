package service

import (
	"fmt"
	"strings"
	"time"

	"task-planner/internal/model"
)

// ResolveDeadline adds value units to anchor. Days and weeks are fixed-length
// (24h per day); months and years follow the calendar and clamp to the last
// day of the target month, so Jan 31 + 1 month is the last day of February.
// A zero anchor means now.
func ResolveDeadline(unit model.DurationUnit, value int, anchor time.Time) (time.Time, error) {
	if anchor.IsZero() {
		anchor = time.Now()
	}
	canonical, ok := model.ParseDurationUnit(string(unit))
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDurationUnit, unit)
	}
	if value < 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrNegativeDuration, value)
	}
	switch canonical {
	case model.UnitDays:
		return anchor.Add(time.Duration(value) * 24 * time.Hour), nil
	case model.UnitWeeks:
		return anchor.Add(time.Duration(value) * 7 * 24 * time.Hour), nil
	case model.UnitMonths:
		return addMonths(anchor, value), nil
	case model.UnitYears:
		return addMonths(anchor, value*12), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDurationUnit, unit)
	}
}

// ResolveItem resolves a Duration vocabulary item against anchor.
func ResolveItem(item model.VocabularyItem, anchor time.Time) (time.Time, error) {
	if item.Kind != model.KindDuration {
		return time.Time{}, fmt.Errorf("%w: item %d is a %s", ErrInvalidDurationUnit, item.ID, item.Kind)
	}
	return ResolveDeadline(item.Unit, item.Value, anchor)
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(target.Month(), target.Year()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}

// AnchorOnDate places the calendar date of date at the time-of-day of now.
func AnchorOnDate(date, now time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), date.Location())
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDeadline parses an ISO-8601 timestamp in loc. A bare date (2006-01-02)
// is combined with the time-of-day of now.
func ParseDeadline(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	date, err := ParseDate(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return AnchorOnDate(date, now.In(loc)), nil
}

// ParseDate parses a calendar date (2006-01-02) at midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}
