package models

import (
	"time"

	"github.com/gosimple/slug"
)

// Subject groups lessons (math, reading, science, ...)
type Subject struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"not null" json:"name"`
	Emoji     string    `gorm:"size:10" json:"emoji"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Lesson is static curriculum content. Rows are seeded, not user-generated.
type Lesson struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SubjectSlug string    `gorm:"index;not null" json:"subject_slug"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Points      int64     `gorm:"not null;default:10" json:"points"` // granted on completion
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SubjectSeeds / LessonSeeds: fixture content loaded at boot if missing
var SubjectSeeds = []Subject{
	{Slug: "math", Name: "Math", Emoji: "🔢", SortOrder: 1},
	{Slug: "reading", Name: "Reading", Emoji: "📚", SortOrder: 2},
	{Slug: "science", Name: "Science", Emoji: "🔬", SortOrder: 3},
	{Slug: "art", Name: "Art", Emoji: "🎨", SortOrder: 4},
}

var LessonSeeds = []Lesson{
	{SubjectSlug: "math", Title: "Counting to 100", Points: 10, SortOrder: 1},
	{SubjectSlug: "math", Title: "Adding Small Numbers", Points: 10, SortOrder: 2},
	{SubjectSlug: "math", Title: "Shapes Around Us", Points: 15, SortOrder: 3},
	{SubjectSlug: "reading", Title: "The Alphabet Song", Points: 10, SortOrder: 1},
	{SubjectSlug: "reading", Title: "Rhyming Words", Points: 15, SortOrder: 2},
	{SubjectSlug: "science", Title: "The Water Cycle", Points: 15, SortOrder: 1},
	{SubjectSlug: "science", Title: "Animals and Habitats", Points: 15, SortOrder: 2},
	{SubjectSlug: "art", Title: "Mixing Colors", Points: 10, SortOrder: 1},
}

func init() {
	// Lesson slugs derive from titles so seeds stay declarative
	for i := range LessonSeeds {
		if LessonSeeds[i].Slug == "" {
			LessonSeeds[i].Slug = slug.Make(LessonSeeds[i].Title)
		}
	}
}
