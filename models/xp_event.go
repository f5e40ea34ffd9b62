package models

import (
	"time"
)

// XPEventType classifies a ledger entry
type XPEventType string

const (
	XPEventExecution      XPEventType = "execution"  // Build / Traction / Team posts
	XPEventReflection     XPEventType = "reflection" // Reflection posts
	XPEventSetback        XPEventType = "setback"    // Setback posts
	XPEventStreakBonus    XPEventType = "streak_bonus"
	XPEventComment        XPEventType = "comment"
	XPEventInvestorAction XPEventType = "investor_action"
	XPEventAdminGrant     XPEventType = "admin_grant"
)

// XPEvent is the authoritative, append-only record of every XP-granting event.
// Rows are never updated after insert except for ExportedAt, which is audit
// bookkeeping stamped by the export worker.
//
// Invariant: SUM(xp_amount) per user == profiles.total_xp (the reconciler
// sweeps for divergence).
type XPEvent struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string      `gorm:"index;not null" json:"user_id"`
	EventType   XPEventType `gorm:"type:varchar(32);not null" json:"event_type"`
	XPAmount    int64       `gorm:"not null" json:"xp_amount"` // >= 0, enforced by the ledger
	ReferenceID *string     `json:"reference_id,omitempty"`    // post/comment that triggered it
	Description string      `gorm:"type:text" json:"description"`

	// Deterministic key ({user}_{action}_{target}_{day}) used to suppress
	// duplicate processing on client retries. Unique where present.
	IdempotencyKey *string `gorm:"uniqueIndex" json:"idempotency_key,omitempty"`

	ExportedAt *time.Time `gorm:"index" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
