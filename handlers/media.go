// handlers/media.go
package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"learning-rewards-system/middleware"
	"learning-rewards-system/models"
	"learning-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const maxPhotoBytes = 10 * 1024 * 1024 // 10MB

func SetupMediaRoutes(app *fiber.App, db *gorm.DB, filter *utils.WordFilter) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Captured photos from the app's camera view land here and are stored in R2.
	secured.Post("/user/photos", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}
		if fileHeader.Size > maxPhotoBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "photo too large"})
		}

		caption := c.FormValue("caption", "")
		if word := filter.Match(caption); word != "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "caption contains a blocked word",
			})
		}

		name := fileHeader.Filename
		ext := filepath.Ext(name)
		key := fmt.Sprintf("photos/%s/%s-%d%s",
			userID, slug.Make(name[:len(name)-len(ext)]), time.Now().Unix(), ext)

		url, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			log.Printf("[MEDIA] ❌ R2 upload failed for %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed, please retry"})
		}

		photo := models.UserPhoto{
			ID:      uuid.NewString(),
			UserID:  userID,
			URL:     url,
			Caption: caption,
		}
		if lessonID := c.FormValue("lesson_id", ""); lessonID != "" {
			photo.LessonID = &lessonID
		}
		if err := db.Create(&photo).Error; err != nil {
			log.Printf("[MEDIA] ❌ Failed to record photo for %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save photo record"})
		}

		return c.Status(fiber.StatusCreated).JSON(photo)
	})

	secured.Get("/user/photos", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var photos []models.UserPhoto
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&photos).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch photos"})
		}
		return c.JSON(photos)
	})
}
