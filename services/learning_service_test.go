package services

import (
	"testing"

	"learning-rewards-system/models"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSeedContent(t *testing.T) {
	Convey("Given an empty database", t, func() {
		db := newTestDB(t)

		So(SeedContent(db), ShouldBeNil)

		Convey("Subjects and lessons are seeded with slugs", func() {
			var subjects int64
			db.Model(&models.Subject{}).Count(&subjects)
			So(subjects, ShouldEqual, int64(len(models.SubjectSeeds)))

			var lesson models.Lesson
			So(db.Where("slug = ?", "counting-to-100").First(&lesson).Error, ShouldBeNil)
			So(lesson.SubjectSlug, ShouldEqual, "math")
		})

		Convey("Seeding again is idempotent", func() {
			So(SeedContent(db), ShouldBeNil)

			var lessons int64
			db.Model(&models.Lesson{}).Count(&lessons)
			So(lessons, ShouldEqual, int64(len(models.LessonSeeds)))
		})
	})
}

func TestLearningService_RecordCompletion(t *testing.T) {
	Convey("Given seeded content and a learning service", t, func() {
		db := newTestDB(t)
		So(SeedContent(db), ShouldBeNil)

		ledger := NewRewardLedger(db)
		evaluator := NewAchievementEvaluator(db, ledger)
		learning := NewLearningService(db, ledger, evaluator)

		Convey("When a lesson is completed", func() {
			progress, err := learning.RecordCompletion("user-1", "counting-to-100", 95, 300)
			So(err, ShouldBeNil)

			Convey("The completion event and base-point reward land together", func() {
				So(progress.Status, ShouldEqual, models.LearningStatusCompleted)

				rewards, err := ledger.UserRewards("user-1", models.RewardTypeLessonComplete, 0)
				So(err, ShouldBeNil)
				So(len(rewards), ShouldEqual, 1)
				So(rewards[0].Points, ShouldEqual, 10)
				So(rewards[0].Metadata.Lesson.Subject, ShouldEqual, "math")
			})

			Convey("The post-event evaluation completes the first-lesson achievement", func() {
				var a models.Achievement
				err := db.Where("user_id = ? AND code = ?", "user-1", "FIRST_LESSON").First(&a).Error
				So(err, ShouldBeNil)
				So(a.Progress, ShouldEqual, 100)
				So(a.CompletedAt, ShouldNotBeNil)

				achRewards, err := ledger.UserRewards("user-1", models.RewardTypeAchievement, 0)
				So(err, ShouldBeNil)
				So(len(achRewards), ShouldEqual, 1)
			})
		})

		Convey("Completing an unknown lesson fails with NotFoundError", func() {
			_, err := learning.RecordCompletion("user-1", "no-such-lesson", 0, 0)
			So(err, ShouldHaveSameTypeAs, &NotFoundError{})

			var count int64
			db.Model(&models.Reward{}).Count(&count)
			So(count, ShouldEqual, 0)
		})
	})
}

func TestLearningService_RecordQuizResponse(t *testing.T) {
	Convey("Given a learning service", t, func() {
		db := newTestDB(t)
		So(SeedContent(db), ShouldBeNil)

		ledger := NewRewardLedger(db)
		learning := NewLearningService(db, ledger, NewAchievementEvaluator(db, ledger))

		Convey("A correct answer earns its points", func() {
			resp, err := learning.RecordQuizResponse("user-1", "q-1", "", "4", true, 5)
			So(err, ShouldBeNil)
			So(resp.IsCorrect, ShouldBeTrue)

			total, err := ledger.TotalPoints("user-1")
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 5)
		})

		Convey("A wrong answer is recorded but earns nothing", func() {
			_, err := learning.RecordQuizResponse("user-1", "q-1", "", "5", false, 5)
			So(err, ShouldBeNil)

			var count int64
			db.Model(&models.QuizResponse{}).Count(&count)
			So(count, ShouldEqual, 1)

			total, err := ledger.TotalPoints("user-1")
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 0)
		})

		Convey("A missing question ID is rejected", func() {
			_, err := learning.RecordQuizResponse("user-1", "", "", "4", true, 5)
			So(err, ShouldHaveSameTypeAs, &ValidationError{})
		})
	})
}
