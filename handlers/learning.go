// handlers/learning.go
package handlers

import (
	"log"

	"learning-rewards-system/middleware"
	"learning-rewards-system/services"
	"learning-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupLearningRoutes(app *fiber.App, learning *services.LearningService, feedback *services.FeedbackServiceClient, filter *utils.WordFilter) {
	// 🔓 Public content routes — static curriculum tables
	app.Get("/subjects", func(c *fiber.Ctx) error {
		subjects, err := learning.Subjects()
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(subjects)
	})

	app.Get("/lessons", func(c *fiber.Ctx) error {
		lessons, err := learning.Lessons(c.Query("subject", ""))
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(lessons)
	})

	app.Get("/lessons/:slug", func(c *fiber.Ctx) error {
		lesson, err := learning.LessonBySlug(c.Params("slug"))
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(lesson)
	})

	// 🔐 Secured routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			LessonSlug  string `json:"lesson_slug" validate:"required"`
			Score       int    `json:"score" validate:"min=0,max=100"`
			DurationSec int    `json:"duration_sec" validate:"min=0"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		progress, err := learning.RecordCompletion(userID, req.LessonSlug, req.Score, req.DurationSec)
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(progress)
	})

	secured.Post("/user/quiz", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			QuestionID string `json:"question_id" validate:"required"`
			LessonID   string `json:"lesson_id"`
			Answer     string `json:"answer"`
			IsCorrect  bool   `json:"is_correct"`
			Points     int64  `json:"points" validate:"min=0"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		response, err := learning.RecordQuizResponse(userID, req.QuestionID, req.LessonID, req.Answer, req.IsCorrect, req.Points)
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(response)
	})

	secured.Post("/user/feedback", func(c *fiber.Ctx) error {
		type Req struct {
			LessonTitle string `json:"lesson_title"`
			Question    string `json:"question"`
			Answer      string `json:"answer" validate:"required"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		// Moderate before anything leaves the service
		if word := filter.Match(req.Answer); word != "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "answer contains a blocked word",
			})
		}

		text, err := feedback.GenerateFeedback(req.LessonTitle, req.Question, req.Answer)
		if err != nil {
			log.Printf("[FEEDBACK] ❌ Generation failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "feedback temporarily unavailable, please retry",
			})
		}
		return c.JSON(fiber.Map{"feedback": text})
	})
}
