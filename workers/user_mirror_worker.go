// workers/user_mirror_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"xp-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromProfile matches the JSON response from the profile sync
// service. Only the fields the engine cares about: identity and user kind.
type MirroredUserFromProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	UserType  string    `json:"user_type"` // "founder" | "investor"
	UpdatedAt time.Time `json:"updated_at"`
}

// GetUserChangesResponse is the top-level structure of the sync service response.
type GetUserChangesResponse struct {
	Users []MirroredUserFromProfile `json:"users"`
}

// UserMirrorSyncWorker keeps user_mirrors fresh so the daily limiter can pick
// the right cap (founder vs investor) without a network hop per request.
type UserMirrorSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewUserMirrorSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *UserMirrorSyncWorker {
	return &UserMirrorSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *UserMirrorSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting User Mirror Sync Worker (profile service → user_mirrors)…")

	// Initial sync (backfill if needed) - sync from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial user mirror sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ User mirror sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ User Mirror Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent SyncedAt from the local mirror table.
func (w *UserMirrorSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	w.db.Model(&models.UserMirror{}).
		Select("COALESCE(MAX(synced_at), '0001-01-01')").
		Scan(&lastTime)
	return lastTime
}

func (w *UserMirrorSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	u, err := url.Parse(fmt.Sprintf("%s%s", w.baseURL, w.endpointPath))
	if err != nil {
		return fmt.Errorf("failed to parse sync URL: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call profile sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile sync response: %w", err)
	}
	if len(response.Users) == 0 {
		return nil
	}

	now := time.Now().UTC()
	mirrors := make([]models.UserMirror, 0, len(response.Users))
	for _, usr := range response.Users {
		kind := models.UserTypeFounder
		if usr.UserType == string(models.UserTypeInvestor) {
			kind = models.UserTypeInvestor
		}
		mirrors = append(mirrors, models.UserMirror{
			UserID:   usr.ID,
			Username: usr.Username,
			UserType: kind,
			SyncedAt: now,
		})
	}

	// Batch upsert: one statement, last write wins per user
	if err := w.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&mirrors).Error; err != nil {
		return fmt.Errorf("failed to upsert user mirrors: %w", err)
	}

	log.Printf("📥 Synced %d user mirror(s) from profile service", len(mirrors))
	return nil
}
