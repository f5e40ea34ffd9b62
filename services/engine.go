package services

import (
	"fmt"
	"log"

	"xp-progression-system/models"

	"gorm.io/gorm"
)

// EngineService orchestrates the full progression pipeline for each
// user-facing action: admission → XP computation → daily-usage commit →
// ledger award → streak update → milestone checks. The post/comment storage
// itself belongs to the upstream collaborator; by the time these methods run
// the underlying content already exists.
type EngineService struct {
	DB         *gorm.DB
	Limits     *DailyLimitService
	Ledger     *LedgerService
	Streaks    *StreakService
	Milestones *MilestoneService
}

func NewEngineService(db *gorm.DB) *EngineService {
	ledger := NewLedgerService(db)
	return &EngineService{
		DB:         db,
		Limits:     NewDailyLimitService(db),
		Ledger:     ledger,
		Streaks:    NewStreakService(db, ledger),
		Milestones: NewMilestoneService(db),
	}
}

// ActionResult is the engine's answer for one recorded action. When the
// action is rejected by the daily limiter, Admission carries the reason and
// every other field is zero — nothing was credited.
type ActionResult struct {
	Admission Admission `json:"admission"`

	XPAwarded  int64  `json:"xp_awarded"`
	TotalXP    int64  `json:"total_xp"`
	Level      int    `json:"level"`
	LevelLabel string `json:"level_label"`
	LeveledUp  bool   `json:"leveled_up"`
	NewLevel   int    `json:"new_level,omitempty"`

	Streak        int   `json:"streak,omitempty"`
	StreakBonusXP int64 `json:"streak_bonus_xp,omitempty"`

	Duplicate bool `json:"duplicate,omitempty"`
}

func (e *EngineService) fromAward(res *AwardResult) *ActionResult {
	return &ActionResult{
		Admission:  admitted,
		XPAwarded:  res.XPAwarded,
		TotalXP:    res.TotalXP,
		Level:      res.Level,
		LevelLabel: LevelLabel(res.Level),
		LeveledUp:  res.LeveledUp,
		NewLevel:   res.NewLevel,
		Duplicate:  res.Duplicate,
	}
}

// eventTypeForCategory follows the ledger taxonomy: reflections and setbacks
// are tracked as their own kinds, everything else is execution.
func eventTypeForCategory(category string) models.XPEventType {
	switch category {
	case "Setback":
		return models.XPEventSetback
	case "Reflection":
		return models.XPEventReflection
	default:
		return models.XPEventExecution
	}
}

// RecordPost credits a founder post in the given category. day is the
// caller's calendar date (YYYY-MM-DD); the engine never reads a clock.
func (e *EngineService) RecordPost(userID string, kind models.UserType, category, postID, day string) (*ActionResult, error) {
	key := IdempotencyKey(userID, "post", postID, day)
	if prior, err := e.Ledger.FindEventByKey(key); err != nil {
		return nil, err
	} else if prior != nil {
		dup, err := e.Ledger.duplicateResult(userID, prior)
		if err != nil {
			return nil, err
		}
		return e.fromAward(dup), nil
	}

	adm, err := e.Limits.CheckDailyLimits(userID, category, kind, day)
	if err != nil {
		return nil, err
	}
	if !adm.Allowed {
		return &ActionResult{Admission: adm}, nil
	}

	xp := XPForCategory(category)

	adm, err = e.Limits.RecordDailyUsage(userID, xp, category, kind, day)
	if err != nil {
		return nil, err
	}
	if !adm.Allowed {
		// a concurrent action consumed the remaining budget between check and commit
		return &ActionResult{Admission: adm}, nil
	}

	award, err := e.Ledger.Award(userID, xp, eventTypeForCategory(category), &postID,
		fmt.Sprintf("Posted in %s", category), &key)
	if err != nil {
		return nil, fmt.Errorf("record post %s: %w", postID, err)
	}
	result := e.fromAward(award)

	streak, bonus, err := e.Streaks.UpdateStreak(userID, day)
	if err != nil {
		return nil, fmt.Errorf("record post %s: streak update: %w", postID, err)
	}
	result.Streak = streak
	result.StreakBonusXP = bonus
	if bonus > 0 {
		result.TotalXP += bonus
		// the bonus can itself push the total across a threshold
		if lvl, label := LevelFor(result.TotalXP); lvl > result.Level {
			result.Level = lvl
			result.LevelLabel = label
			result.LeveledUp = true
			result.NewLevel = lvl
		}
	}

	if err := e.Milestones.CheckPostMilestones(userID, category); err != nil {
		// the post's XP is committed; milestones are recoverable on the next post
		log.Printf("⚠️ Milestone check failed for %s (post %s): %v", userID, postID, err)
	}

	return result, nil
}

// RecordComment credits a comment or reply: always a fixed amount, counted
// against the daily cap but never against streaks or category sub-caps.
func (e *EngineService) RecordComment(userID string, kind models.UserType, commentID, day string) (*ActionResult, error) {
	key := IdempotencyKey(userID, "comment", commentID, day)
	if prior, err := e.Ledger.FindEventByKey(key); err != nil {
		return nil, err
	} else if prior != nil {
		dup, err := e.Ledger.duplicateResult(userID, prior)
		if err != nil {
			return nil, err
		}
		return e.fromAward(dup), nil
	}

	adm, err := e.Limits.RecordDailyUsage(userID, CommentXP, "", kind, day)
	if err != nil {
		return nil, err
	}
	if !adm.Allowed {
		return &ActionResult{Admission: adm}, nil
	}

	award, err := e.Ledger.Award(userID, CommentXP, models.XPEventComment, &commentID,
		"Posted a comment", &key)
	if err != nil {
		return nil, fmt.Errorf("record comment %s: %w", commentID, err)
	}
	return e.fromAward(award), nil
}

// RecordInvestorAction credits one of the investor action kinds against the
// investor daily budget. Unknown actions earn 0 but are still ledgered.
func (e *EngineService) RecordInvestorAction(userID, action, targetID, day string) (*ActionResult, error) {
	key := IdempotencyKey(userID, action, targetID, day)
	if prior, err := e.Ledger.FindEventByKey(key); err != nil {
		return nil, err
	} else if prior != nil {
		dup, err := e.Ledger.duplicateResult(userID, prior)
		if err != nil {
			return nil, err
		}
		return e.fromAward(dup), nil
	}

	xp := XPForInvestorAction(action)

	adm, err := e.Limits.RecordDailyUsage(userID, xp, "", models.UserTypeInvestor, day)
	if err != nil {
		return nil, err
	}
	if !adm.Allowed {
		return &ActionResult{Admission: adm}, nil
	}

	award, err := e.Ledger.Award(userID, xp, models.XPEventInvestorAction, &targetID,
		fmt.Sprintf("Investor action: %s", action), &key)
	if err != nil {
		return nil, fmt.Errorf("record investor action %s: %w", action, err)
	}
	return e.fromAward(award), nil
}
