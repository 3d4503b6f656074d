package services

import (
	"fmt"
	"log"
	"time"

	"learning-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningService records the learning events the evaluator reads: lesson
// completions and quiz responses. Recording a completion also grants the
// lesson's base points and kicks off an evaluation pass.
type LearningService struct {
	DB        *gorm.DB
	Ledger    *RewardLedger
	Evaluator *AchievementEvaluator
}

func NewLearningService(db *gorm.DB, ledger *RewardLedger, evaluator *AchievementEvaluator) *LearningService {
	return &LearningService{DB: db, Ledger: ledger, Evaluator: evaluator}
}

// Subjects returns the seeded subject list in display order.
func (s *LearningService) Subjects() ([]models.Subject, error) {
	var subjects []models.Subject
	if err := s.DB.Order("sort_order ASC").Find(&subjects).Error; err != nil {
		return nil, &PersistenceError{Op: "subject list", Err: err}
	}
	return subjects, nil
}

// Lessons returns lessons, optionally filtered by subject slug.
func (s *LearningService) Lessons(subjectSlug string) ([]models.Lesson, error) {
	query := s.DB.Order("subject_slug ASC, sort_order ASC")
	if subjectSlug != "" {
		query = query.Where("subject_slug = ?", subjectSlug)
	}
	var lessons []models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, &PersistenceError{Op: "lesson list", Err: err}
	}
	return lessons, nil
}

// LessonBySlug looks up one lesson.
func (s *LearningService) LessonBySlug(slug string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.DB.Where("slug = ?", slug).First(&lesson).Error; err != nil {
		return nil, wrapDBErr("lesson read", "lesson", slug, err)
	}
	return &lesson, nil
}

// RecordCompletion inserts a completed LearningProgress row and grants the
// lesson's base points in one transaction, then evaluates achievements.
func (s *LearningService) RecordCompletion(userID, lessonSlug string, score, durationSec int) (*models.LearningProgress, error) {
	lesson, err := s.LessonBySlug(lessonSlug)
	if err != nil {
		return nil, err
	}

	progress := models.LearningProgress{
		ID:          uuid.NewString(),
		UserID:      userID,
		LessonID:    lesson.ID,
		Status:      models.LearningStatusCompleted,
		Score:       score,
		DurationSec: durationSec,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&progress).Error; err != nil {
			return &PersistenceError{Op: "progress insert", Err: err}
		}
		_, err := s.Ledger.GrantTx(tx, userID, models.RewardTypeLessonComplete, lesson.Points, models.RewardMetadata{
			Lesson: &models.LessonRewardMeta{LessonID: lesson.ID, Subject: lesson.SubjectSlug},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LEARNING] 📖 Lesson completed: %s → %s (+%d pts)", lessonSlug, userID, lesson.Points)
	s.evaluateAfterEvent(userID)
	return &progress, nil
}

// RecordQuizResponse inserts a QuizResponse row; correct answers earn the
// quiz points and trigger an evaluation pass.
func (s *LearningService) RecordQuizResponse(userID, questionID, lessonID, answer string, isCorrect bool, points int64) (*models.QuizResponse, error) {
	if questionID == "" {
		return nil, &ValidationError{Field: "question_id", Reason: "must not be empty"}
	}

	response := models.QuizResponse{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: questionID,
		LessonID:   lessonID,
		Answer:     answer,
		IsCorrect:  isCorrect,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&response).Error; err != nil {
			return &PersistenceError{Op: "quiz insert", Err: err}
		}
		if isCorrect && points > 0 {
			_, err := s.Ledger.GrantTx(tx, userID, models.RewardTypeQuizPerfect, points, models.RewardMetadata{
				Quiz: &models.QuizRewardMeta{QuestionID: questionID, LessonID: lessonID},
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if isCorrect {
		s.evaluateAfterEvent(userID)
	}
	return &response, nil
}

// evaluateAfterEvent runs a best-effort evaluation pass. The write that
// triggered it already committed, so an evaluation failure is only logged —
// the next event or explicit evaluate call picks the progress up again.
func (s *LearningService) evaluateAfterEvent(userID string) {
	if s.Evaluator == nil {
		return
	}
	if err := s.Evaluator.EnsureAchievements(userID); err != nil {
		log.Printf("[LEARNING] ⚠️ Achievement seed failed for %s: %v", userID, err)
		return
	}
	if _, err := s.Evaluator.Evaluate(userID); err != nil {
		log.Printf("[LEARNING] ⚠️ Post-event evaluation failed for %s: %v", userID, err)
	}
}

// SeedContent loads the fixture subjects and lessons if they are missing
// (idempotent, called at boot).
func SeedContent(db *gorm.DB) error {
	for _, subject := range models.SubjectSeeds {
		var count int64
		if err := db.Model(&models.Subject{}).Where("slug = ?", subject.Slug).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check subject %s: %w", subject.Slug, err)
		}
		if count == 0 {
			subject.ID = uuid.NewString()
			if err := db.Create(&subject).Error; err != nil {
				return fmt.Errorf("failed to seed subject %s: %w", subject.Slug, err)
			}
		}
	}
	for _, lesson := range models.LessonSeeds {
		var count int64
		if err := db.Model(&models.Lesson{}).Where("slug = ?", lesson.Slug).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check lesson %s: %w", lesson.Slug, err)
		}
		if count == 0 {
			lesson.ID = uuid.NewString()
			if err := db.Create(&lesson).Error; err != nil {
				return fmt.Errorf("failed to seed lesson %s: %w", lesson.Slug, err)
			}
		}
	}
	return nil
}
