package models

import (
	"time"
)

// RankingPeriod is the time bucket a leaderboard snapshot covers
type RankingPeriod string

const (
	PeriodDaily   RankingPeriod = "daily"
	PeriodWeekly  RankingPeriod = "weekly"
	PeriodMonthly RankingPeriod = "monthly"
	PeriodAllTime RankingPeriod = "all_time"
)

// AllPeriods in recomputation order
var AllPeriods = []RankingPeriod{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}

// ValidRankingPeriod reports whether p names a known period bucket.
func ValidRankingPeriod(p RankingPeriod) bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// Ranking is one row of a materialized leaderboard snapshot: the summed points
// and dense rank of one user within one period bucket. One logical row per
// (user_id, period); each recomputation replaces it wholesale.
type Ranking struct {
	ID        string        `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string        `gorm:"uniqueIndex:idx_rankings_user_period;not null" json:"user_id"`
	Period    RankingPeriod `gorm:"uniqueIndex:idx_rankings_user_period;type:varchar(16);not null" json:"period"`
	Points    int64         `gorm:"not null;default:0" json:"points"`
	Rank      int           `gorm:"not null" json:"rank"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}
