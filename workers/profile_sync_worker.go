// workers/profile_sync_worker.go
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

	"learning-rewards-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteProfile matches the JSON response of the identity service's public
// profiles endpoint.
type RemoteProfile struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Username    string    `json:"username"`
	DisplayName *string   `json:"display_name,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	GradeLevel  *string   `json:"grade_level,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the identity
// service response.
type GetProfileChangesResponse struct {
	Profiles []RemoteProfile `json:"profiles"`
}

// ProfileSyncWorker polls the identity service for profile changes and
// upserts them into the local profile_mirrors table so leaderboards can show
// usernames and avatars without a remote call.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, identityServiceBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      identityServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (identity-service → profile_mirrors)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lastSyncTime := w.getLastSyncTime()
			if err := w.syncBatch(ctx, lastSyncTime); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror table.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM profile_mirrors WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes since the given time and upserts them.
func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid identity service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		log.Printf("[SYNC] ❌ Request to %s failed: %v", finalURL, err)
		return fmt.Errorf("HTTP request to identity service failed: %w", err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if readErr != nil {
			log.Printf("[SYNC] ⚠️ Failed to read error body from %s: %v", finalURL, readErr)
		}
		errMsg := string(body)
		log.Printf("[SYNC] ❌ Identity service returned %d for %s: %s", resp.StatusCode, finalURL, errMsg)
		return fmt.Errorf("identity service non-200 response: %d — %s", resp.StatusCode, errMsg)
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode identity service response: %w", err)
	}

	if len(response.Profiles) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d profile(s) from identity service…", len(response.Profiles))

	var upsertCount, errorCount int
	for _, remote := range response.Profiles {
		local := models.ProfileMirror{
			ExternalUserID: remote.ExternalID,
			Username:       remote.Username,
			DisplayName:    remote.DisplayName,
			AvatarURL:      remote.AvatarURL,
			GradeLevel:     remote.GradeLevel,
			CreatedAt:      remote.CreatedAt,
			UpdatedAt:      remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "display_name", "avatar_url", "grade_level",
				"created_at", "updated_at",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert profile_mirror (external_id=%q, username=%q): %v",
				remote.ExternalID, remote.Username, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profile(s) (%d upserted, %d errors)", len(response.Profiles), upsertCount, errorCount)
	return nil
}
