package services

import (
	"log"
	"sync"
	"time"

	"learning-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankingAggregator materializes leaderboard snapshots: per period bucket it
// sums reward points per user since the period start and writes one Ranking
// row per user with a dense 1-based rank.
//
// Recomputation for a given period is serialized against itself; different
// periods recompute concurrently. Each recomputation is one transaction —
// readers either see the previous snapshot or the new one, never a mix.
type RankingAggregator struct {
	DB *gorm.DB

	periodLocks sync.Map // period → *sync.Mutex
}

func NewRankingAggregator(db *gorm.DB) *RankingAggregator {
	return &RankingAggregator{DB: db}
}

func (s *RankingAggregator) lockPeriod(period models.RankingPeriod) *sync.Mutex {
	mu, _ := s.periodLocks.LoadOrStore(period, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// userPoints is one aggregation row before ranks are assigned
type userPoints struct {
	UserID string
	Points int64
}

// Recompute rebuilds the snapshot for one period and returns the new rows in
// rank order. Any failure aborts the whole period (a stale snapshot beats a
// partial one); the caller may retry the call as-is.
func (s *RankingAggregator) Recompute(period models.RankingPeriod) ([]models.Ranking, error) {
	if !models.ValidRankingPeriod(period) {
		return nil, &ValidationError{Field: "period", Reason: "unknown period " + string(period)}
	}

	mu := s.lockPeriod(period)
	mu.Lock()
	defer mu.Unlock()

	start := PeriodStart(period, time.Now().UTC())
	log.Printf("[RANKING] Recomputing %s leaderboard (window start %s)", period, start.Format(time.RFC3339))

	// Ties resolve by user_id ascending: deterministic and independent of
	// reward insert order.
	var sums []userPoints
	err := s.DB.Model(&models.Reward{}).
		Select("user_id, COALESCE(SUM(points), 0) AS points").
		Where("created_at >= ?", start).
		Group("user_id").
		Order("points DESC, user_id ASC").
		Scan(&sums).Error
	if err != nil {
		return nil, &PersistenceError{Op: "ranking aggregate", Err: err}
	}

	rankings := make([]models.Ranking, len(sums))
	userIDs := make([]string, len(sums))
	for i, up := range sums {
		rankings[i] = models.Ranking{
			ID:     uuid.NewString(),
			UserID: up.UserID,
			Period: period,
			Points: up.Points,
			Rank:   i + 1,
		}
		userIDs[i] = up.UserID
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if len(rankings) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "period"}},
				DoUpdates: clause.AssignmentColumns([]string{"points", "rank", "updated_at"}),
			}).Create(&rankings).Error; err != nil {
				return err
			}
		}

		// Wholesale replacement: drop rows for users with no points in the
		// new window.
		prune := tx.Where("period = ?", period)
		if len(userIDs) > 0 {
			prune = prune.Where("user_id NOT IN ?", userIDs)
		}
		return prune.Delete(&models.Ranking{}).Error
	})
	if err != nil {
		return nil, &PersistenceError{Op: "ranking upsert", Err: err}
	}

	log.Printf("[RANKING] ✅ %s leaderboard rebuilt: %d user(s)", period, len(rankings))
	return rankings, nil
}

// RecomputeAll rebuilds every period bucket. The first failure aborts: a
// scheduler tick simply retries the lot.
func (s *RankingAggregator) RecomputeAll() error {
	for _, period := range models.AllPeriods {
		if _, err := s.Recompute(period); err != nil {
			return err
		}
	}
	return nil
}

// UserRank reads the user's row from the latest snapshot. It never triggers a
// recomputation.
func (s *RankingAggregator) UserRank(userID string, period models.RankingPeriod) (*models.Ranking, error) {
	if !models.ValidRankingPeriod(period) {
		return nil, &ValidationError{Field: "period", Reason: "unknown period " + string(period)}
	}
	var ranking models.Ranking
	err := s.DB.Where("user_id = ? AND period = ?", userID, period).First(&ranking).Error
	if err != nil {
		return nil, wrapDBErr("ranking read", "ranking", userID+"/"+string(period), err)
	}
	return &ranking, nil
}

// Leaderboard reads the top rows of the latest snapshot in rank order.
func (s *RankingAggregator) Leaderboard(period models.RankingPeriod, limit int) ([]models.Ranking, error) {
	if !models.ValidRankingPeriod(period) {
		return nil, &ValidationError{Field: "period", Reason: "unknown period " + string(period)}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rankings []models.Ranking
	err := s.DB.Where("period = ?", period).
		Order("rank ASC").
		Limit(limit).
		Find(&rankings).Error
	if err != nil {
		return nil, &PersistenceError{Op: "leaderboard read", Err: err}
	}
	return rankings, nil
}

// PeriodStart returns the inclusive lower bound of the period's reward
// window, in UTC. Weeks begin on Monday.
func PeriodStart(period models.RankingPeriod, now time.Time) time.Time {
	now = now.UTC()
	switch period {
	case models.PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case models.PeriodWeekly:
		weekday := now.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		monday := now.AddDate(0, 0, -(int(weekday) - int(time.Monday)))
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	case models.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // all_time
		return time.Unix(0, 0).UTC()
	}
}
