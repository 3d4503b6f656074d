// services/scheduler.go
package services

import (
	"log"
	"time"

	"learning-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartRankingScheduler runs periodic leaderboard recomputation. Short
// periods refresh often; the slower buckets drift little and refresh hourly.
// Correctness never depends on the schedule — each Recompute call is
// self-contained — so a missed tick only means a staler snapshot.
func (s *RankingAggregator) StartRankingScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			for _, period := range []models.RankingPeriod{models.PeriodDaily, models.PeriodWeekly} {
				if _, err := s.Recompute(period); err != nil {
					log.Printf("[Scheduler] %s recompute failed: %v", period, err)
				}
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			for _, period := range []models.RankingPeriod{models.PeriodMonthly, models.PeriodAllTime} {
				if _, err := s.Recompute(period); err != nil {
					log.Printf("[Scheduler] %s recompute failed: %v", period, err)
				}
			}
		}),
	)
}
