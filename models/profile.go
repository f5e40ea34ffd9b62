package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile tracks gamified progression for each user (denormalized for performance).
// TotalXP/CurrentLevel are written only by the award ledger; CurrentStreak/LastPostDate
// only by the streak tracker. UI services read, never write.
type Profile struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"` // links to profile service

	// Core progression
	TotalXP      int64 `json:"total_xp" gorm:"default:0"`
	CurrentLevel int   `json:"current_level" gorm:"default:1"`

	// Streak state. LastPostDate is a calendar day (YYYY-MM-DD), nil until
	// the first qualifying action. Stored as a plain string so it reads back
	// exactly as written — date-typed columns round-trip in timestamp form,
	// which would break the same-day check and the streak CAS predicate.
	CurrentStreak int     `json:"current_streak" gorm:"default:0"`
	LastPostDate  *string `json:"last_post_date,omitempty" gorm:"type:varchar(10)"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
