package models

import (
	"time"
)

// RewardType identifies the cause of a point grant
type RewardType string

const (
	RewardTypeLessonComplete RewardType = "lesson_complete"
	RewardTypeQuizPerfect    RewardType = "quiz_perfect"
	RewardTypeStreak         RewardType = "streak"
	RewardTypeAchievement    RewardType = "achievement"
)

// ValidRewardType reports whether t is one of the known reward types.
func ValidRewardType(t RewardType) bool {
	switch t {
	case RewardTypeLessonComplete, RewardTypeQuizPerfect, RewardTypeStreak, RewardTypeAchievement:
		return true
	}
	return false
}

// Reward is an immutable point grant. Rows are append-only: no updates, no
// deletes. Point totals and rankings are derived from these rows.
type Reward struct {
	ID        string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"index;not null" json:"user_id"`
	Type      RewardType     `gorm:"type:varchar(32);not null;index" json:"type"`
	Points    int64          `gorm:"not null;default:0" json:"points"`
	Metadata  RewardMetadata `gorm:"type:jsonb;serializer:json" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

// RewardMetadata carries the typed payload for each reward cause. Exactly one
// section is populated, matching Reward.Type.
type RewardMetadata struct {
	Lesson      *LessonRewardMeta      `json:"lesson,omitempty"`
	Quiz        *QuizRewardMeta        `json:"quiz,omitempty"`
	Streak      *StreakRewardMeta      `json:"streak,omitempty"`
	Achievement *AchievementRewardMeta `json:"achievement,omitempty"`
	Note        string                 `json:"note,omitempty"` // free-form, admin grants
}

type LessonRewardMeta struct {
	LessonID string `json:"lesson_id"`
	Subject  string `json:"subject,omitempty"`
}

type QuizRewardMeta struct {
	QuestionID string `json:"question_id"`
	LessonID   string `json:"lesson_id,omitempty"`
}

type StreakRewardMeta struct {
	Days int `json:"days"`
}

type AchievementRewardMeta struct {
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
}
