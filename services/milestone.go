package services

import (
	"log"
	"strings"

	"xp-progression-system/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MilestoneService struct {
	DB *gorm.DB
}

func NewMilestoneService(db *gorm.DB) *MilestoneService {
	return &MilestoneService{DB: db}
}

// MaybeAward records a milestone if the user doesn't already have it.
// Pure insert-if-absent: the (user, type) unique index plus DoNothing makes
// concurrent calls collapse to a single row. No XP is attached to milestones.
func (s *MilestoneService) MaybeAward(userID, milestoneType string) error {
	m := models.Milestone{
		ID:            uuid.NewString(),
		UserID:        userID,
		MilestoneType: milestoneType,
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "milestone_type"}},
		DoNothing: true,
	}).Create(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("🎖️ Milestone achieved: %s → %s", userID, milestoneType)
	}
	return nil
}

// ListMilestones returns the user's achievements, newest first.
func (s *MilestoneService) ListMilestones(userID string) ([]models.Milestone, error) {
	var ms []models.Milestone
	err := s.DB.Where("user_id = ?", userID).
		Order("achieved_at DESC").
		Find(&ms).Error
	return ms, err
}

// MilestoneDisplayName renders a milestone tag for the UI ("ten_posts" → "Ten Posts").
// A fresh Caser per call: cases.Caser carries state and is not safe to share.
func MilestoneDisplayName(milestoneType string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(milestoneType, "_", " "))
}

// CheckPostMilestones evaluates the count-based triggers after a post has
// been ledgered. Counts come from the ledger itself (execution, reflection
// and setback events are exactly the user's XP-credited posts).
func (s *MilestoneService) CheckPostMilestones(userID, category string) error {
	postKinds := []models.XPEventType{
		models.XPEventExecution,
		models.XPEventReflection,
		models.XPEventSetback,
	}

	var posts int64
	if err := s.DB.Model(&models.XPEvent{}).
		Where("user_id = ? AND event_type IN ?", userID, postKinds).
		Count(&posts).Error; err != nil {
		return err
	}

	if posts >= 1 {
		if err := s.MaybeAward(userID, models.MilestoneFirstPost); err != nil {
			return err
		}
	}
	if posts >= 10 {
		if err := s.MaybeAward(userID, models.MilestoneTenPosts); err != nil {
			return err
		}
	}

	if category == "Reflection" {
		var reflections int64
		if err := s.DB.Model(&models.XPEvent{}).
			Where("user_id = ? AND event_type = ?", userID, models.XPEventReflection).
			Count(&reflections).Error; err != nil {
			return err
		}
		if reflections >= 10 {
			if err := s.MaybeAward(userID, models.MilestoneTenReflections); err != nil {
				return err
			}
		}
	}
	return nil
}
