package services

import (
	"sync"
	"testing"
	"time"

	"learning-rewards-system/models"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/gorm"
)

func seedAchievement(db *gorm.DB, userID string, aType models.AchievementType, reqs models.AchievementRequirements) *models.Achievement {
	a := models.Achievement{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         aType,
		Code:         "TEST_" + string(aType),
		Title:        "Test " + string(aType),
		Requirements: reqs,
	}
	db.Create(&a)
	return &a
}

func seedCompletedLesson(db *gorm.DB, userID string, at time.Time) {
	db.Create(&models.LearningProgress{
		ID:        uuid.NewString(),
		UserID:    userID,
		LessonID:  uuid.NewString(),
		Status:    models.LearningStatusCompleted,
		CreatedAt: at,
	})
}

func seedQuizResponse(db *gorm.DB, userID string, correct bool, at time.Time) {
	db.Create(&models.QuizResponse{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: uuid.NewString(),
		IsCorrect:  correct,
		CreatedAt:  at,
	})
}

func TestAchievementEvaluator_LessonComplete(t *testing.T) {
	Convey("Given a user with a 2-lesson achievement worth 50 points", t, func() {
		db := newTestDB(t)
		ledger := NewRewardLedger(db)
		evaluator := NewAchievementEvaluator(db, ledger)
		now := time.Now().UTC()

		a := seedAchievement(db, "user-1", models.AchievementTypeLessonComplete,
			models.AchievementRequirements{Count: 2, Points: 50})

		Convey("With one completed lesson", func() {
			seedCompletedLesson(db, "user-1", now.Add(-time.Hour))

			updated, err := evaluator.Evaluate("user-1")
			So(err, ShouldBeNil)
			So(len(updated), ShouldEqual, 1)

			Convey("Progress is halfway and no reward is minted", func() {
				So(updated[0].Progress, ShouldEqual, 50)
				So(updated[0].CompletedAt, ShouldBeNil)

				total, err := ledger.TotalPoints("user-1")
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 0)
			})
		})

		Convey("With exactly two completed lessons", func() {
			seedCompletedLesson(db, "user-1", now.Add(-2*time.Hour))
			seedCompletedLesson(db, "user-1", now.Add(-time.Hour))

			updated, err := evaluator.Evaluate("user-1")
			So(err, ShouldBeNil)
			So(len(updated), ShouldEqual, 1)

			Convey("The achievement completes and mints its reward once", func() {
				So(updated[0].Progress, ShouldEqual, 100)
				So(updated[0].CompletedAt, ShouldNotBeNil)

				rewards, err := ledger.UserRewards("user-1", models.RewardTypeAchievement, 0)
				So(err, ShouldBeNil)
				So(len(rewards), ShouldEqual, 1)
				So(rewards[0].Points, ShouldEqual, 50)
				So(rewards[0].Metadata.Achievement.AchievementID, ShouldEqual, a.ID)
				So(rewards[0].Metadata.Achievement.Title, ShouldEqual, a.Title)

				total, err := ledger.TotalPoints("user-1")
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 50)
			})

			Convey("Re-running the evaluation is idempotent", func() {
				var before models.Achievement
				So(db.First(&before, "id = ?", a.ID).Error, ShouldBeNil)

				_, err := evaluator.Evaluate("user-1")
				So(err, ShouldBeNil)

				var after models.Achievement
				So(db.First(&after, "id = ?", a.ID).Error, ShouldBeNil)
				So(after.Progress, ShouldEqual, 100)
				So(after.CompletedAt.Unix(), ShouldEqual, before.CompletedAt.Unix())

				total, err := ledger.TotalPoints("user-1")
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 50) // no duplicate grant
			})
		})

		Convey("With more completions than required", func() {
			for i := 0; i < 5; i++ {
				seedCompletedLesson(db, "user-1", now.Add(-time.Duration(i)*time.Hour))
			}

			updated, err := evaluator.Evaluate("user-1")
			So(err, ShouldBeNil)

			Convey("Progress caps at 100", func() {
				So(updated[0].Progress, ShouldEqual, 100)
			})
		})
	})
}

func TestAchievementEvaluator_QuizPerfect(t *testing.T) {
	Convey("Given a quiz achievement requiring 4 correct answers", t, func() {
		db := newTestDB(t)
		ledger := NewRewardLedger(db)
		evaluator := NewAchievementEvaluator(db, ledger)
		now := time.Now().UTC()

		seedAchievement(db, "user-1", models.AchievementTypeQuizPerfect,
			models.AchievementRequirements{Count: 4, Points: 30})

		Convey("Only correct responses count", func() {
			seedQuizResponse(db, "user-1", true, now.Add(-3*time.Hour))
			seedQuizResponse(db, "user-1", false, now.Add(-2*time.Hour))
			seedQuizResponse(db, "user-1", true, now.Add(-time.Hour))

			updated, err := evaluator.Evaluate("user-1")
			So(err, ShouldBeNil)
			So(updated[0].Progress, ShouldEqual, 50)
			So(updated[0].CompletedAt, ShouldBeNil)
		})
	})
}

func TestAchievementEvaluator_Streak(t *testing.T) {
	Convey("Given a 5-day streak achievement", t, func() {
		db := newTestDB(t)
		ledger := NewRewardLedger(db)
		evaluator := NewAchievementEvaluator(db, ledger)
		now := time.Now().UTC()

		seedAchievement(db, "user-1", models.AchievementTypeStreak,
			models.AchievementRequirements{Days: 5, Points: 100})

		Convey("With entries on days T, T-1, T-2 and T-5", func() {
			seedCompletedLesson(db, "user-1", now.Add(-1*time.Hour))   // T
			seedCompletedLesson(db, "user-1", now.Add(-25*time.Hour))  // T-1
			seedCompletedLesson(db, "user-1", now.Add(-49*time.Hour))  // T-2
			seedCompletedLesson(db, "user-1", now.Add(-121*time.Hour)) // T-5, 3-day gap

			updated, err := evaluator.Evaluate("user-1")
			So(err, ShouldBeNil)

			Convey("The streak stops at the first gap over a day: 3 of 5 days", func() {
				So(updated[0].Progress, ShouldEqual, 60)
				So(updated[0].CompletedAt, ShouldBeNil)
			})
		})

		Convey("With the newest entry already more than a day old", func() {
			seedCompletedLesson(db, "user-1", now.Add(-30*time.Hour))

			updated, err := evaluator.Evaluate("user-1")
			So(err, ShouldBeNil)

			Convey("The streak is zero — no seeding for today", func() {
				So(updated[0].Progress, ShouldEqual, 0)
			})
		})
	})
}

func TestStreakLength(t *testing.T) {
	Convey("Given the pure streak walk", t, func() {
		now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
		day := 24 * time.Hour

		Convey("An empty history yields zero", func() {
			So(streakLength(now, nil), ShouldEqual, 0)
		})

		Convey("A gap of exactly one day keeps the streak alive", func() {
			entries := []time.Time{now.Add(-day), now.Add(-2 * day)}
			So(streakLength(now, entries), ShouldEqual, 2)
		})

		Convey("The walk is strict: one second past a day breaks it", func() {
			entries := []time.Time{now.Add(-day - time.Second)}
			So(streakLength(now, entries), ShouldEqual, 0)
		})
	})
}

func TestAchievementEvaluator_FailureIsolation(t *testing.T) {
	Convey("Given one malformed and one healthy achievement", t, func() {
		db := newTestDB(t)
		ledger := NewRewardLedger(db)
		evaluator := NewAchievementEvaluator(db, ledger)
		now := time.Now().UTC()

		// count missing → ValidationError for this row only
		seedAchievement(db, "user-1", models.AchievementTypeLessonComplete,
			models.AchievementRequirements{Points: 10})
		healthy := seedAchievement(db, "user-1", models.AchievementTypeQuizPerfect,
			models.AchievementRequirements{Count: 2, Points: 10})

		seedQuizResponse(db, "user-1", true, now.Add(-time.Hour))

		updated, err := evaluator.Evaluate("user-1")

		Convey("The batch succeeds and only the healthy sibling is returned", func() {
			So(err, ShouldBeNil)
			So(len(updated), ShouldEqual, 1)
			So(updated[0].ID, ShouldEqual, healthy.ID)
			So(updated[0].Progress, ShouldEqual, 50)
		})
	})
}

func TestAchievementEvaluator_UnknownType(t *testing.T) {
	Convey("Given an achievement of a type the evaluator doesn't know", t, func() {
		db := newTestDB(t)
		evaluator := NewAchievementEvaluator(db, NewRewardLedger(db))

		seedAchievement(db, "user-1", "perfect_attendance", models.AchievementRequirements{Count: 3})

		updated, err := evaluator.Evaluate("user-1")

		Convey("It evaluates to zero progress without erroring", func() {
			So(err, ShouldBeNil)
			So(len(updated), ShouldEqual, 1)
			So(updated[0].Progress, ShouldEqual, 0)
			So(updated[0].CompletedAt, ShouldBeNil)
		})
	})
}

func TestAchievementEvaluator_Monotonicity(t *testing.T) {
	Convey("Given stored progress ahead of what events currently support", t, func() {
		db := newTestDB(t)
		evaluator := NewAchievementEvaluator(db, NewRewardLedger(db))

		a := seedAchievement(db, "user-1", models.AchievementTypeLessonComplete,
			models.AchievementRequirements{Count: 4, Points: 10})
		db.Model(&models.Achievement{}).Where("id = ?", a.ID).Update("progress", 50)

		updated, err := evaluator.Evaluate("user-1")

		Convey("Evaluation never lowers progress", func() {
			So(err, ShouldBeNil)
			So(updated[0].Progress, ShouldEqual, 50)
		})
	})
}

func TestAchievementEvaluator_ConcurrentCompletion(t *testing.T) {
	Convey("Given concurrent evaluations for the same user at the threshold", t, func() {
		db := newTestDB(t)
		ledger := NewRewardLedger(db)
		evaluator := NewAchievementEvaluator(db, ledger)
		now := time.Now().UTC()

		seedAchievement(db, "user-1", models.AchievementTypeLessonComplete,
			models.AchievementRequirements{Count: 1, Points: 25})
		seedCompletedLesson(db, "user-1", now.Add(-time.Hour))

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = evaluator.Evaluate("user-1")
			}()
		}
		wg.Wait()

		Convey("The completion reward is granted exactly once", func() {
			rewards, err := ledger.UserRewards("user-1", models.RewardTypeAchievement, 0)
			So(err, ShouldBeNil)
			So(len(rewards), ShouldEqual, 1)

			total, err := ledger.TotalPoints("user-1")
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 25)
		})
	})
}

func TestAchievementEvaluator_EnsureAchievements(t *testing.T) {
	Convey("Given a fresh user", t, func() {
		db := newTestDB(t)
		evaluator := NewAchievementEvaluator(db, NewRewardLedger(db))

		So(evaluator.EnsureAchievements("user-1"), ShouldBeNil)

		Convey("The template achievements are seeded once", func() {
			var count int64
			db.Model(&models.Achievement{}).Where("user_id = ?", "user-1").Count(&count)
			So(count, ShouldEqual, int64(len(models.AchievementTemplates)))

			So(evaluator.EnsureAchievements("user-1"), ShouldBeNil)
			db.Model(&models.Achievement{}).Where("user_id = ?", "user-1").Count(&count)
			So(count, ShouldEqual, int64(len(models.AchievementTemplates)))
		})
	})
}
