package models

import (
	"time"
)

// LearningStatus tracks a lesson attempt's lifecycle
type LearningStatus string

const (
	LearningStatusInProgress LearningStatus = "in_progress"
	LearningStatusCompleted  LearningStatus = "completed"
)

// LearningProgress records a single lesson session for a user. The evaluator
// reads these rows (never writes them) to compute completion counts and
// streaks.
type LearningProgress struct {
	ID          string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string         `gorm:"index;not null" json:"user_id"`
	LessonID    string         `gorm:"index;not null" json:"lesson_id"`
	Status      LearningStatus `gorm:"type:varchar(16);not null;default:'in_progress'" json:"status"`
	Score       int            `gorm:"default:0" json:"score"`
	DurationSec int            `gorm:"default:0" json:"duration_sec"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
}

// QuizResponse records one answered quiz question. Read-only input to the
// evaluator's quiz_perfect rule.
type QuizResponse struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	QuestionID string    `gorm:"index;not null" json:"question_id"`
	LessonID   string    `gorm:"index" json:"lesson_id,omitempty"`
	Answer     string    `gorm:"type:text" json:"answer"`
	IsCorrect  bool      `gorm:"not null;index" json:"is_correct"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
