package models

import "time"

// DailyXP stores per-user per-calendar-day rate-limit counters. Created
// lazily on the first qualifying action of the day, incremented additively
// afterwards, never deleted (kept for audit / rate-limit history).
type DailyXP struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	UserID string `gorm:"not null;uniqueIndex:idx_daily_xp_user_date,priority:1" json:"user_id"`
	Date   string `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_xp_user_date,priority:2" json:"date"` // YYYY-MM-DD

	TotalXP         int64 `gorm:"not null;default:0" json:"total_xp"`
	ReflectionCount int   `gorm:"not null;default:0" json:"reflection_count"`
	SetbackCount    int   `gorm:"not null;default:0" json:"setback_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (DailyXP) TableName() string {
	return "user_daily_xp"
}
