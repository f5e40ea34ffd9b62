// workers/ledger_export_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"xp-progression-system/models"
	"xp-progression-system/utils"

	"gorm.io/gorm"
)

const exportBatchSize = 500

// LedgerExporter ships closed-day ledger entries to R2 as JSON snapshots so
// the append-only audit trail survives outside the database. Only rows from
// days that have fully ended get exported; today's rows are still growing.
type LedgerExporter struct {
	DB *gorm.DB
}

func NewLedgerExporter(db *gorm.DB) *LedgerExporter {
	return &LedgerExporter{DB: db}
}

// PollLedgerExports runs the exporter until ctx is cancelled.
func PollLedgerExports(ctx context.Context, exporter *LedgerExporter, pollInterval time.Duration) {
	log.Println("🔁 Starting ledger audit export polling…")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Ledger export polling stopped")
			return
		case <-ticker.C:
			if err := exporter.ExportPending(ctx); err != nil {
				log.Printf("❌ Ledger export failed: %v", err)
			}
		}
	}
}

// ExportPending uploads one batch of unexported prior-day events and stamps
// them. The export never mutates progression state — ExportedAt is the only
// column it touches.
func (e *LedgerExporter) ExportPending(ctx context.Context) error {
	startOfToday := time.Now().UTC().Truncate(24 * time.Hour)

	var events []models.XPEvent
	if err := e.DB.Where("exported_at IS NULL AND created_at < ?", startOfToday).
		Order("created_at ASC").
		Limit(exportBatchSize).
		Find(&events).Error; err != nil {
		return fmt.Errorf("failed to load unexported events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	body, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal export batch: %w", err)
	}

	day := events[0].CreatedAt.UTC().Format("2006-01-02")
	key := fmt.Sprintf("audit/xp-events/%s/%s.json", day, events[0].ID)
	if err := utils.UploadAuditObject(ctx, key, body, "application/json"); err != nil {
		return err
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	now := time.Now().UTC()
	if err := e.DB.Model(&models.XPEvent{}).
		Where("id IN ?", ids).
		Update("exported_at", now).Error; err != nil {
		return fmt.Errorf("failed to stamp exported events: %w", err)
	}

	log.Printf("📤 Exported %d ledger event(s) to %s", len(events), key)
	return nil
}
