package services

import (
	"log"
	"sync"
	"time"

	"learning-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxStreakGap is the largest allowed gap between consecutive learning events
// for a streak to continue.
const maxStreakGap = 24 * time.Hour

// AchievementEvaluator recomputes progress for a user's open achievements and
// mints the completion reward exactly once per achievement.
//
// Concurrency: evaluations for different users run fully in parallel.
// Evaluations for the same user are serialized through a per-user lock, and
// the completion write is additionally guarded by a conditional update on
// completed_at so that concurrent evaluators in other processes cannot
// double-grant.
type AchievementEvaluator struct {
	DB     *gorm.DB
	Ledger *RewardLedger

	userLocks sync.Map // userID → *sync.Mutex
}

func NewAchievementEvaluator(db *gorm.DB, ledger *RewardLedger) *AchievementEvaluator {
	return &AchievementEvaluator{DB: db, Ledger: ledger}
}

func (s *AchievementEvaluator) lockUser(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// EnsureAchievements seeds the template achievements for a user that doesn't
// have them yet (idempotent).
func (s *AchievementEvaluator) EnsureAchievements(userID string) error {
	var existing []models.Achievement
	if err := s.DB.Select("code").Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return &PersistenceError{Op: "achievement list", Err: err}
	}
	have := make(map[string]bool, len(existing))
	for _, a := range existing {
		have[a.Code] = true
	}

	for _, tpl := range models.AchievementTemplates {
		if have[tpl.Code] {
			continue
		}
		a := models.Achievement{
			ID:           uuid.NewString(),
			UserID:       userID,
			Type:         tpl.Type,
			Code:         tpl.Code,
			Title:        tpl.Title,
			Description:  tpl.Description,
			Requirements: tpl.Requirements,
		}
		if err := s.DB.Create(&a).Error; err != nil {
			return &PersistenceError{Op: "achievement seed", Err: err}
		}
	}
	return nil
}

// Evaluate recomputes progress for every open achievement of the user and
// returns the rows it updated. One achievement failing does not abort the
// others; failed rows are logged and left out of the result.
func (s *AchievementEvaluator) Evaluate(userID string) ([]models.Achievement, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}

	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	var open []models.Achievement
	if err := s.DB.Where("user_id = ? AND completed_at IS NULL", userID).
		Order("created_at ASC").
		Find(&open).Error; err != nil {
		return nil, &PersistenceError{Op: "achievement list", Err: err}
	}

	updated := make([]models.Achievement, 0, len(open))
	for i := range open {
		a := &open[i]
		progress, err := s.computeProgress(a)
		if err != nil {
			log.Printf("[EVALUATE] ⚠️ Skipping achievement %s (%s) for %s: %v", a.Code, a.ID, userID, err)
			continue
		}

		// Events are append-only, so progress never legitimately moves down.
		if progress < a.Progress {
			progress = a.Progress
		}

		if progress >= 100 {
			if err := s.complete(a); err != nil {
				log.Printf("[EVALUATE] ⚠️ Failed to complete achievement %s for %s: %v", a.Code, userID, err)
				continue
			}
			updated = append(updated, *a)
			continue
		}

		if progress != a.Progress {
			if err := s.DB.Model(&models.Achievement{}).
				Where("id = ? AND completed_at IS NULL", a.ID).
				Update("progress", progress).Error; err != nil {
				log.Printf("[EVALUATE] ⚠️ Failed to update progress for %s (%s): %v", a.Code, userID, err)
				continue
			}
			a.Progress = progress
		}
		updated = append(updated, *a)
	}

	return updated, nil
}

// computeProgress applies the per-type rule. Unknown types yield 0 progress
// rather than an error so new templates can roll out ahead of evaluator
// support.
func (s *AchievementEvaluator) computeProgress(a *models.Achievement) (int, error) {
	switch a.Type {
	case models.AchievementTypeLessonComplete:
		if a.Requirements.Count <= 0 {
			return 0, &ValidationError{Field: "requirements.count", Reason: "must be positive for lesson_complete"}
		}
		var count int64
		if err := s.DB.Model(&models.LearningProgress{}).
			Where("user_id = ? AND status = ?", a.UserID, models.LearningStatusCompleted).
			Count(&count).Error; err != nil {
			return 0, &PersistenceError{Op: "lesson count", Err: err}
		}
		return clampProgress(count, int64(a.Requirements.Count)), nil

	case models.AchievementTypeQuizPerfect:
		if a.Requirements.Count <= 0 {
			return 0, &ValidationError{Field: "requirements.count", Reason: "must be positive for quiz_perfect"}
		}
		var count int64
		if err := s.DB.Model(&models.QuizResponse{}).
			Where("user_id = ? AND is_correct = ?", a.UserID, true).
			Count(&count).Error; err != nil {
			return 0, &PersistenceError{Op: "quiz count", Err: err}
		}
		return clampProgress(count, int64(a.Requirements.Count)), nil

	case models.AchievementTypeStreak:
		if a.Requirements.Days <= 0 {
			return 0, &ValidationError{Field: "requirements.days", Reason: "must be positive for streak"}
		}
		streak, err := s.currentStreak(a.UserID, a.Requirements.Days)
		if err != nil {
			return 0, err
		}
		return clampProgress(int64(streak), int64(a.Requirements.Days)), nil
	}

	return 0, nil
}

// currentStreak walks backward from now over the most recent learning events,
// counting while the gap between successive entries stays within a day. There
// is no synthetic entry for "today": if the newest event is already more than
// a day old the streak is 0.
func (s *AchievementEvaluator) currentStreak(userID string, days int) (int, error) {
	var timestamps []time.Time
	err := s.DB.Model(&models.LearningProgress{}).
		Where("user_id = ? AND status = ?", userID, models.LearningStatusCompleted).
		Order("created_at DESC").
		Limit(days).
		Pluck("created_at", &timestamps).Error
	if err != nil {
		return 0, &PersistenceError{Op: "streak scan", Err: err}
	}
	return streakLength(time.Now().UTC(), timestamps), nil
}

// streakLength counts consecutive entries of newestFirst whose gap from the
// previous point (starting at now) is at most maxStreakGap.
func streakLength(now time.Time, newestFirst []time.Time) int {
	streak := 0
	prev := now
	for _, ts := range newestFirst {
		if prev.Sub(ts) > maxStreakGap {
			break
		}
		streak++
		prev = ts
	}
	return streak
}

func clampProgress(have, need int64) int {
	if need <= 0 {
		return 0
	}
	p := 100 * have / need
	if p > 100 {
		p = 100
	}
	return int(p)
}

// complete freezes the achievement and mints its reward. The conditional
// UPDATE on completed_at IS NULL is the exactly-once gate: whichever writer
// flips the row also grants the reward, in the same transaction.
func (s *AchievementEvaluator) complete(a *models.Achievement) error {
	now := time.Now().UTC()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Achievement{}).
			Where("id = ? AND completed_at IS NULL", a.ID).
			Updates(map[string]interface{}{
				"progress":     100,
				"completed_at": now,
			})
		if res.Error != nil {
			return &PersistenceError{Op: "achievement complete", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			// Another evaluator got here first; nothing more to do.
			a.Progress = 100
			a.CompletedAt = &now
			return nil
		}

		_, err := s.Ledger.GrantTx(tx, a.UserID, models.RewardTypeAchievement, a.Requirements.Points, models.RewardMetadata{
			Achievement: &models.AchievementRewardMeta{
				AchievementID: a.ID,
				Title:         a.Title,
			},
		})
		if err != nil {
			return err
		}

		a.Progress = 100
		a.CompletedAt = &now
		log.Printf("[EVALUATE] 🏆 Achievement completed: %s → %s (+%d pts)", a.Code, a.UserID, a.Requirements.Points)
		return nil
	})
}
