package services

import (
	"errors"
	"fmt"
	"log"

	"xp-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayFormat is the calendar-day layout used everywhere dates cross the
// engine's boundary. Engine calls take the day explicitly so callers (and
// tests) control the clock.
const DayFormat = "2006-01-02"

// IdempotencyKey derives the stable key for a logical action instance:
// retries of the same action on the same calendar day map to the same key.
func IdempotencyKey(userID, actionType, targetID, day string) string {
	return fmt.Sprintf("%s_%s_%s_%s", userID, actionType, targetID, day)
}

// AwardResult reports the outcome of a ledger commit. LeveledUp/NewLevel
// exist purely to drive the UI's one-shot level-up celebration.
type AwardResult struct {
	XPAwarded int64 `json:"xp_awarded"`
	TotalXP   int64 `json:"total_xp"`
	Level     int   `json:"level"`
	LeveledUp bool  `json:"leveled_up"`
	NewLevel  int   `json:"new_level,omitempty"` // set only when LeveledUp

	// Duplicate means the idempotency key had already been processed; the
	// prior result was returned and nothing was credited again.
	Duplicate bool `json:"duplicate,omitempty"`
}

// LedgerService is the sole writer of a user's cumulative XP and level.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// EnsureProfile ensures a Profile row exists (idempotent)
func (s *LedgerService) EnsureProfile(userID string) (*models.Profile, error) {
	var prof models.Profile
	err := s.DB.Where("user_id = ?", userID).First(&prof).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prof = models.Profile{
			ID:           uuid.NewString(),
			UserID:       userID,
			TotalXP:      0,
			CurrentLevel: 1,
		}
		if err := s.DB.Create(&prof).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost a concurrent create; the row exists now
				err = s.DB.Where("user_id = ?", userID).First(&prof).Error
			}
			if err != nil {
				return nil, err
			}
		}
		return &prof, nil
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// FindEventByKey returns the ledger entry for an idempotency key, or nil.
func (s *LedgerService) FindEventByKey(key string) (*models.XPEvent, error) {
	var ev models.XPEvent
	err := s.DB.Where("idempotency_key = ?", key).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

var errCASRetry = errors.New("profile changed concurrently")

// Award credits xpAmount to the user, updates level, and appends the
// immutable ledger entry — as one transaction. The profile write is a
// compare-and-swap on the total read at the start, retried on contention,
// so concurrent awards never lose increments. A duplicate idempotency key
// (caught either by the lookup or by the unique index under a race) makes
// the whole call a no-op returning the prior event's amount.
//
// xpAmount of 0 is legal and still ledgered for audit. Negative amounts are
// a programming-contract violation and fail outright.
func (s *LedgerService) Award(userID string, xpAmount int64, eventType models.XPEventType, referenceID *string, description string, idempotencyKey *string) (*AwardResult, error) {
	if xpAmount < 0 {
		return nil, fmt.Errorf("award for %s: negative XP amount %d", userID, xpAmount)
	}

	if idempotencyKey != nil {
		prior, err := s.FindEventByKey(*idempotencyKey)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return s.duplicateResult(userID, prior)
		}
	}

	if description == "" {
		description = fmt.Sprintf("Earned %d XP", xpAmount)
	}

	if _, err := s.EnsureProfile(userID); err != nil {
		return nil, err
	}

	var result *AwardResult
	for attempt := 0; attempt < 3; attempt++ {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var p models.Profile
			if err := tx.Where("user_id = ?", userID).First(&p).Error; err != nil {
				return err
			}

			oldLevel := p.CurrentLevel
			newTotal := p.TotalXP + xpAmount
			newLevel, _ := LevelFor(newTotal)

			res := tx.Model(&models.Profile{}).
				Where("user_id = ? AND total_xp = ?", userID, p.TotalXP).
				Updates(map[string]interface{}{
					"total_xp":      newTotal,
					"current_level": newLevel,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errCASRetry
			}

			event := models.XPEvent{
				ID:             uuid.NewString(),
				UserID:         userID,
				EventType:      eventType,
				XPAmount:       xpAmount,
				ReferenceID:    referenceID,
				Description:    description,
				IdempotencyKey: idempotencyKey,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			result = &AwardResult{
				XPAwarded: xpAmount,
				TotalXP:   newTotal,
				Level:     newLevel,
				LeveledUp: newLevel > oldLevel,
			}
			if result.LeveledUp {
				result.NewLevel = newLevel
			}
			return nil
		})

		if errors.Is(err, errCASRetry) {
			continue
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && idempotencyKey != nil {
			// concurrent retry of the same action won the insert; the
			// rolled-back transaction credited nothing
			prior, ferr := s.FindEventByKey(*idempotencyKey)
			if ferr != nil {
				return nil, ferr
			}
			if prior != nil {
				return s.duplicateResult(userID, prior)
			}
			return nil, err
		}
		if err != nil {
			return nil, err
		}

		log.Printf("🏅 XP awarded: %s → +%d (%s), total=%d, level=%d",
			userID, xpAmount, eventType, result.TotalXP, result.Level)
		return result, nil
	}
	return nil, fmt.Errorf("award for %s: too much contention", userID)
}

func (s *LedgerService) duplicateResult(userID string, prior *models.XPEvent) (*AwardResult, error) {
	prof, err := s.EnsureProfile(userID)
	if err != nil {
		return nil, err
	}
	return &AwardResult{
		XPAwarded: prior.XPAmount,
		TotalXP:   prof.TotalXP,
		Level:     prof.CurrentLevel,
		Duplicate: true,
	}, nil
}

// History returns a paginated view of the user's ledger, newest first.
func (s *LedgerService) History(userID string, page, size int) (map[string]interface{}, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.XPEvent{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	var events []models.XPEvent
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&events).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return map[string]interface{}{
		"events":      events,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": totalPages,
	}, nil
}
