package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileMirror is a local snapshot of user display data needed for
// leaderboards. Owned solely by this service; populated by the profile sync
// worker from the identity service. The engine itself only ever needs the
// opaque external user ID.
type ProfileMirror struct {
	ID             string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username       string     `gorm:"index;not null" json:"username"`
	DisplayName    *string    `json:"display_name,omitempty"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	GradeLevel     *string    `json:"grade_level,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserPhoto records a captured photo uploaded from the app's camera view.
// The object itself lives in R2; this row is the lookup record.
type UserPhoto struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	LessonID  *string   `gorm:"index" json:"lesson_id,omitempty"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Caption   string    `gorm:"type:text" json:"caption"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
