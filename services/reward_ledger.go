package services

import (
	"log"
	"time"

	"learning-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardLedger appends immutable point grants and answers point-total reads.
// It performs no dedup itself: exactly-once semantics for completion rewards
// are the evaluator's job.
type RewardLedger struct {
	DB *gorm.DB
}

func NewRewardLedger(db *gorm.DB) *RewardLedger {
	return &RewardLedger{DB: db}
}

// Grant appends one Reward for the user. points must be >= 0 and rewardType
// one of the known types. On a store failure the caller must not assume the
// grant happened.
func (s *RewardLedger) Grant(userID string, rewardType models.RewardType, points int64, meta models.RewardMetadata) (*models.Reward, error) {
	return s.GrantTx(s.DB, userID, rewardType, points, meta)
}

// GrantTx is Grant running on the given handle, so callers can append a reward
// inside their own transaction.
func (s *RewardLedger) GrantTx(tx *gorm.DB, userID string, rewardType models.RewardType, points int64, meta models.RewardMetadata) (*models.Reward, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if !models.ValidRewardType(rewardType) {
		return nil, &ValidationError{Field: "type", Reason: "unknown reward type " + string(rewardType)}
	}
	if points < 0 {
		return nil, &ValidationError{Field: "points", Reason: "must be non-negative"}
	}

	reward := models.Reward{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      rewardType,
		Points:    points,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&reward).Error; err != nil {
		return nil, &PersistenceError{Op: "reward insert", Err: err}
	}

	log.Printf("[LEDGER] 🏅 Granted %d pts to %s (type=%s)", points, userID, rewardType)
	return &reward, nil
}

// TotalPoints sums all reward points ever granted to the user.
func (s *RewardLedger) TotalPoints(userID string) (int64, error) {
	var total int64
	err := s.DB.Model(&models.Reward{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, &PersistenceError{Op: "reward sum", Err: err}
	}
	return total, nil
}

// UserRewards returns the user's rewards newest-first, optionally filtered by
// type and capped at limit (0 = no cap).
func (s *RewardLedger) UserRewards(userID string, rewardType models.RewardType, limit int) ([]models.Reward, error) {
	query := s.DB.Where("user_id = ?", userID)
	if rewardType != "" {
		if !models.ValidRewardType(rewardType) {
			return nil, &ValidationError{Field: "type", Reason: "unknown reward type " + string(rewardType)}
		}
		query = query.Where("type = ?", rewardType)
	}
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rewards []models.Reward
	if err := query.Find(&rewards).Error; err != nil {
		return nil, &PersistenceError{Op: "reward list", Err: err}
	}
	return rewards, nil
}

// RewardCounts returns totals the app polls for badge indicators.
func (s *RewardLedger) RewardCounts(userID string) (total int64, points int64, err error) {
	if err := s.DB.Model(&models.Reward{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, 0, &PersistenceError{Op: "reward count", Err: err}
	}
	points, err = s.TotalPoints(userID)
	if err != nil {
		return 0, 0, err
	}
	return total, points, nil
}
