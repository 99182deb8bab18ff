package model

import "time"

// User is the owner of every task and vocabulary row.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	TelegramID  *int64 `gorm:"uniqueIndex"`
	FirstName   string
	LastName    string
	Username    string
	Timezone    string         `gorm:"default:UTC"`
	Language    string         `gorm:"default:en"`
	Preferences map[string]any `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location returns the user's timezone, falling back to UTC for unknown names.
func (u User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
