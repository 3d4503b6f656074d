package models

import (
	"time"
)

// AchievementType selects the progress rule used by the evaluator
type AchievementType string

const (
	AchievementTypeLessonComplete AchievementType = "lesson_complete"
	AchievementTypeQuizPerfect    AchievementType = "quiz_perfect"
	AchievementTypeStreak         AchievementType = "streak"
)

// AchievementRequirements is the typed requirements payload. Which fields
// matter depends on the achievement type:
//   - lesson_complete / quiz_perfect: Count (> 0)
//   - streak: Days (> 0)
//   - Points: reward minted on completion (0 allowed)
type AchievementRequirements struct {
	Count  int   `json:"count,omitempty"`
	Days   int   `json:"days,omitempty"`
	Points int64 `json:"points,omitempty"`
}

// Achievement is a goal definition plus one user's progress toward it.
// Progress and CompletedAt are written only by the evaluator. Once CompletedAt
// is set the row is frozen: progress stays 100 and no further reward is minted.
type Achievement struct {
	ID           string                  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID       string                  `gorm:"index:idx_achievements_user;not null" json:"user_id"`
	Type         AchievementType         `gorm:"type:varchar(32);not null" json:"type"`
	Code         string                  `gorm:"type:varchar(64);not null" json:"code"`
	Title        string                  `gorm:"not null" json:"title"`
	Description  string                  `gorm:"type:text" json:"description"`
	Requirements AchievementRequirements `gorm:"type:jsonb;serializer:json" json:"requirements"`
	Progress     int                     `gorm:"not null;default:0" json:"progress"`
	CompletedAt  *time.Time              `gorm:"index" json:"completed_at,omitempty"`
	CreatedAt    time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

// Completed reports whether the achievement has reached its terminal state.
func (a *Achievement) Completed() bool {
	return a.CompletedAt != nil
}

// AchievementTemplate: static config seeded per user on first contact
type AchievementTemplate struct {
	Code         string
	Type         AchievementType
	Title        string
	Description  string
	Requirements AchievementRequirements
}

// Predefined achievement templates (seeded for every user)
var AchievementTemplates = []AchievementTemplate{
	{
		Code:         "FIRST_LESSON",
		Type:         AchievementTypeLessonComplete,
		Title:        "First Steps",
		Description:  "Finish your first lesson",
		Requirements: AchievementRequirements{Count: 1, Points: 20},
	},
	{
		Code:         "LESSON_10",
		Type:         AchievementTypeLessonComplete,
		Title:        "Bookworm",
		Description:  "Finish 10 lessons",
		Requirements: AchievementRequirements{Count: 10, Points: 100},
	},
	{
		Code:         "QUIZ_WHIZ",
		Type:         AchievementTypeQuizPerfect,
		Title:        "Quiz Whiz",
		Description:  "Answer 25 quiz questions correctly",
		Requirements: AchievementRequirements{Count: 25, Points: 150},
	},
	{
		Code:         "STREAK_7",
		Type:         AchievementTypeStreak,
		Title:        "One Week Wonder",
		Description:  "Learn 7 days in a row",
		Requirements: AchievementRequirements{Days: 7, Points: 200},
	},
	{
		Code:         "STREAK_30",
		Type:         AchievementTypeStreak,
		Title:        "Habit Hero",
		Description:  "Learn 30 days in a row",
		Requirements: AchievementRequirements{Days: 30, Points: 1000},
	},
}
