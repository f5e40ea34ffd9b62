package models

import "time"

// UserType distinguishes the two account kinds; founders and investors carry
// very different daily XP budgets.
type UserType string

const (
	UserTypeFounder  UserType = "founder"
	UserTypeInvestor UserType = "investor"
)

// UserMirror is a read-only local copy of the profile service's user records,
// kept fresh by the user mirror sync worker. The engine only needs the user
// kind for daily-cap selection; everything else about a user lives upstream.
type UserMirror struct {
	UserID   string   `gorm:"primaryKey" json:"user_id"` // upstream profile id
	Username string   `json:"username"`
	UserType UserType `gorm:"type:varchar(16);not null;default:'founder'" json:"user_type"`

	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
