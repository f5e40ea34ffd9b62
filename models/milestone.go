package models

import "time"

// Known milestone types awarded by the post flow.
const (
	MilestoneFirstPost      = "first_post"
	MilestoneTenPosts       = "ten_posts"
	MilestoneTenReflections = "ten_reflections"
)

// Milestone is a one-time achievement flag. At most one row per
// (user, milestone type) pair — the composite unique index makes the
// insert-if-absent idempotent under races.
type Milestone struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"not null;uniqueIndex:idx_milestones_user_type,priority:1" json:"user_id"`
	MilestoneType string    `gorm:"size:64;not null;uniqueIndex:idx_milestones_user_type,priority:2" json:"milestone_type"`
	AchievedAt    time.Time `gorm:"autoCreateTime" json:"achieved_at"`
}
