package services

import (
	"errors"
	"fmt"

	"xp-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admission is the result of a daily-limit check. Rejections are normal
// control flow, never errors — the Reason string is shown to the user as-is.
type Admission struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

var admitted = Admission{Allowed: true}

type DailyLimitService struct {
	DB *gorm.DB
}

func NewDailyLimitService(db *gorm.DB) *DailyLimitService {
	return &DailyLimitService{DB: db}
}

// CheckDailyLimits is the advisory admission check: it reads today's counters
// and rejects when the user is already at the cap or over a category sub-cap.
// Advisory only — RecordDailyUsage re-enforces the same conditions atomically
// at commit, so two concurrent requests cannot both slip under the cap.
func (s *DailyLimitService) CheckDailyLimits(userID, category string, kind models.UserType, day string) (Admission, error) {
	var row models.DailyXP
	err := s.DB.Where("user_id = ? AND date = ?", userID, day).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return admitted, nil
	}
	if err != nil {
		return Admission{}, err
	}
	return admissionFor(&row, category, kind), nil
}

func admissionFor(row *models.DailyXP, category string, kind models.UserType) Admission {
	dailyCap := DailyCapFor(kind)
	if row.TotalXP >= dailyCap {
		return Admission{Reason: fmt.Sprintf("Daily XP cap reached (%d XP)", dailyCap)}
	}
	if category == "Reflection" && row.ReflectionCount >= MaxReflectionPerDay {
		return Admission{Reason: "Maximum 3 reflection posts per day"}
	}
	if category == "Setback" && row.SetbackCount >= MaxSetbackPerDay {
		return Admission{Reason: "Maximum 1 setback post per day"}
	}
	return admitted
}

// RecordDailyUsage commits xpAmount and the category counter for the day.
// The UPDATE carries the cap conditions in its WHERE clause, so the check
// and the increment are a single atomic store operation — the guard that
// CheckDailyLimits can only advise on. Returns a rejection when the guarded
// update matches no row that still has budget.
func (s *DailyLimitService) RecordDailyUsage(userID string, xpAmount int64, category string, kind models.UserType, day string) (Admission, error) {
	reflectionInc := 0
	setbackInc := 0
	switch category {
	case "Reflection":
		reflectionInc = 1
	case "Setback":
		setbackInc = 1
	}

	for attempt := 0; attempt < 3; attempt++ {
		q := s.DB.Model(&models.DailyXP{}).
			Where("user_id = ? AND date = ?", userID, day).
			Where("total_xp < ?", DailyCapFor(kind))
		if reflectionInc > 0 {
			q = q.Where("reflection_count < ?", MaxReflectionPerDay)
		}
		if setbackInc > 0 {
			q = q.Where("setback_count < ?", MaxSetbackPerDay)
		}

		res := q.Updates(map[string]interface{}{
			"total_xp":         gorm.Expr("total_xp + ?", xpAmount),
			"reflection_count": gorm.Expr("reflection_count + ?", reflectionInc),
			"setback_count":    gorm.Expr("setback_count + ?", setbackInc),
		})
		if res.Error != nil {
			return Admission{}, res.Error
		}
		if res.RowsAffected > 0 {
			return admitted, nil
		}

		// No row matched: either no counter exists yet for the day, or the
		// guard failed. Distinguish by reading.
		var row models.DailyXP
		err := s.DB.Where("user_id = ? AND date = ?", userID, day).First(&row).Error
		if err == nil {
			return admissionFor(&row, category, kind), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Admission{}, err
		}

		// First action of the day: create the row. A concurrent first action
		// may win the insert; fall back to the guarded update in that case.
		row = models.DailyXP{
			ID:              uuid.NewString(),
			UserID:          userID,
			Date:            day,
			TotalXP:         xpAmount,
			ReflectionCount: reflectionInc,
			SetbackCount:    setbackInc,
		}
		err = s.DB.Create(&row).Error
		if err == nil {
			return admitted, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return Admission{}, err
		}
	}
	return Admission{}, fmt.Errorf("daily usage for %s on %s: too much contention", userID, day)
}
