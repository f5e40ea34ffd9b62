// services/reconciler.go
package services

import (
	"log"
	"time"

	"xp-progression-system/models"

	"github.com/go-co-op/gocron/v2"
)

// reconcileOnce runs one ledger consistency sweep: every profile's stored
// total must equal the sum of its ledger entries. A storage fault can leave a
// post persisted upstream with no XP credited — or (worse) a partial credit —
// and those states must surface in the logs, not hide. The sweep is
// read-only; repair stays a manual call. Returns the diverged profile count.
func (e *EngineService) reconcileOnce() (int, error) {
	start := time.Now()

	type ledgerSum struct {
		UserID string
		Total  int64
	}
	var sums []ledgerSum
	if err := e.DB.Model(&models.XPEvent{}).
		Select("user_id, COALESCE(SUM(xp_amount), 0) AS total").
		Group("user_id").
		Scan(&sums).Error; err != nil {
		return 0, err
	}
	byUser := make(map[string]int64, len(sums))
	for _, s := range sums {
		byUser[s.UserID] = s.Total
	}

	var profiles []models.Profile
	if err := e.DB.Find(&profiles).Error; err != nil {
		return 0, err
	}

	mismatches := 0
	for _, p := range profiles {
		if ledger := byUser[p.UserID]; ledger != p.TotalXP {
			mismatches++
			log.Printf("⚠️ [Reconciler] XP divergence for %s: profile=%d ledger=%d",
				p.UserID, p.TotalXP, ledger)
		}
	}

	if mismatches == 0 {
		log.Printf("✅ [Reconciler] %d profiles consistent (%s)",
			len(profiles), time.Since(start).Round(time.Millisecond))
	} else {
		log.Printf("❌ [Reconciler] %d of %d profiles diverged from ledger",
			mismatches, len(profiles))
	}
	return mismatches, nil
}

// StartReconciler schedules the hourly consistency sweep.
func (e *EngineService) StartReconciler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal("❌ Failed to create reconciler scheduler: ", err)
	}
	sched.Start()

	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if _, err := e.reconcileOnce(); err != nil {
				log.Printf("[Reconciler] sweep failed: %v", err)
			}
		}),
	); err != nil {
		log.Fatal("❌ Failed to schedule reconciler sweep: ", err)
	}
}
