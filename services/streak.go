package services

import (
	"fmt"
	"log"
	"time"

	"xp-progression-system/models"

	"gorm.io/gorm"
)

// StreakService maintains each user's consecutive-activity-day counter and
// posts milestone-day bonuses through the ledger.
type StreakService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewStreakService(db *gorm.DB, ledger *LedgerService) *StreakService {
	return &StreakService{DB: db, Ledger: ledger}
}

// daysBetween returns the whole calendar days from one YYYY-MM-DD day to
// another. Malformed stored dates count as a large gap, which safely resets
// the streak.
func daysBetween(from, to string) int {
	a, errA := time.Parse(DayFormat, from)
	b, errB := time.Parse(DayFormat, to)
	if errA != nil || errB != nil {
		return 1 << 20
	}
	return int(b.Sub(a).Hours() / 24)
}

// UpdateStreak recomputes the streak for one qualifying action on the given
// day and returns (newStreakLength, bonusXP). Idempotent within a day: once
// the day is recorded, further calls leave the streak untouched and issue no
// bonus. The write-back is a compare-and-swap on the state that was read, so
// a duplicate same-day action racing this call cannot double-increment.
//
// Bonuses go through the ledger as streak_bonus events — keyed per user, day
// count, and date — so they compound with levels and appear in the audit
// trail like any other award.
func (s *StreakService) UpdateStreak(userID, day string) (int, int64, error) {
	for attempt := 0; attempt < 3; attempt++ {
		prof, err := s.Ledger.EnsureProfile(userID)
		if err != nil {
			return 0, 0, err
		}

		if prof.LastPostDate != nil && *prof.LastPostDate == day {
			return prof.CurrentStreak, 0, nil
		}

		newStreak := 1
		var bonus int64
		if prof.LastPostDate != nil && daysBetween(*prof.LastPostDate, day) == 1 {
			newStreak = prof.CurrentStreak + 1
			bonus = StreakBonusFor(newStreak)
		}

		q := s.DB.Model(&models.Profile{}).
			Where("user_id = ? AND current_streak = ?", userID, prof.CurrentStreak)
		if prof.LastPostDate == nil {
			q = q.Where("last_post_date IS NULL")
		} else {
			q = q.Where("last_post_date = ?", *prof.LastPostDate)
		}
		res := q.Updates(map[string]interface{}{
			"current_streak": newStreak,
			"last_post_date": day,
		})
		if res.Error != nil {
			return 0, 0, res.Error
		}
		if res.RowsAffected == 0 {
			continue // raced another action, re-read and redo
		}

		if bonus > 0 {
			key := fmt.Sprintf("%s_streak_bonus_day%d_%s", userID, newStreak, day)
			if _, err := s.Ledger.Award(userID, bonus, models.XPEventStreakBonus, nil,
				fmt.Sprintf("%d-day streak bonus", newStreak), &key); err != nil {
				// The streak write already committed, so a retry sees the day
				// as recorded and never reissues this bonus. Leave a trail an
				// operator can credit back from.
				log.Printf("❌ Streak bonus not credited for %s: day %d on %s, %d XP: %v",
					userID, newStreak, day, bonus, err)
				return newStreak, 0, err
			}
		}
		return newStreak, bonus, nil
	}
	return 0, 0, fmt.Errorf("streak update for %s: too much contention", userID)
}
