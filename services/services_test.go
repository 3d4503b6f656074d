package services

import (
	"fmt"
	"testing"

	"learning-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database migrated with the full
// schema. The DSN is unique per call — goconvey re-runs outer blocks for
// every leaf, and each run must get a fresh database. cache=shared keeps
// every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Subject{},
		&models.Lesson{},
		&models.LearningProgress{},
		&models.QuizResponse{},
		&models.Reward{},
		&models.Achievement{},
		&models.Ranking{},
		&models.ProfileMirror{},
		&models.UserPhoto{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
