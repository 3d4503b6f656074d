// handlers/rewards.go
package handlers

import (
	"errors"
	"strconv"

	"learning-rewards-system/middleware"
	"learning-rewards-system/models"
	"learning-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the service error taxonomy onto HTTP statuses.
// Persistence failures stay generic: no store internals leak to the app.
func statusForError(err error) (int, string) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Error()
	}
	var nfe *services.NotFoundError
	if errors.As(err, &nfe) {
		return fiber.StatusNotFound, nfe.Error()
	}
	return fiber.StatusInternalServerError, "temporary failure, please retry"
}

func errJSON(c *fiber.Ctx, err error) error {
	status, msg := statusForError(err)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// LeaderboardEntry is a ranking row joined with mirrored display attributes.
type LeaderboardEntry struct {
	UserID    string  `json:"user_id"`
	Username  string  `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Points    int64   `json:"points"`
	Rank      int     `json:"rank"`
}

func SetupRewardRoutes(app *fiber.App, ledger *services.RewardLedger, evaluator *services.AchievementEvaluator, aggregator *services.RankingAggregator, profiles *services.ProfileService) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Get("/rankings/:period", func(c *fiber.Ctx) error {
		period := models.RankingPeriod(c.Params("period"))
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		rankings, err := aggregator.Leaderboard(period, limit)
		if err != nil {
			return errJSON(c, err)
		}

		userIDs := make([]string, len(rankings))
		for i, r := range rankings {
			userIDs[i] = r.UserID
		}
		profileMap, err := profiles.LookupMany(userIDs)
		if err != nil {
			return errJSON(c, err)
		}

		entries := make([]LeaderboardEntry, len(rankings))
		for i, r := range rankings {
			entry := LeaderboardEntry{
				UserID: r.UserID,
				Points: r.Points,
				Rank:   r.Rank,
			}
			if p, ok := profileMap[r.UserID]; ok {
				entry.Username = p.Username
				entry.AvatarURL = p.AvatarURL
			}
			entries[i] = entry
		}
		return c.JSON(fiber.Map{
			"period":  period,
			"entries": entries,
		})
	})

	app.Get("/users/search", profiles.SearchUsers)

	// 🔐 Secured routes — require user context from Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/rewards", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		limit, _ := strconv.Atoi(c.Query("limit", "0"))
		rewardType := models.RewardType(c.Query("type", ""))

		rewards, err := ledger.UserRewards(userID, rewardType, limit)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(rewards)
	})

	// Poll-friendly counts endpoint
	secured.Get("/user/rewards/counts", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		total, points, err := ledger.RewardCounts(userID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"total_count":  total,
			"total_points": points,
		})
	})

	secured.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := evaluator.EnsureAchievements(userID); err != nil {
			return errJSON(c, err)
		}

		var achievements []models.Achievement
		if err := evaluator.DB.Where("user_id = ?", userID).
			Order("created_at ASC").
			Find(&achievements).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch achievements",
			})
		}
		return c.JSON(achievements)
	})

	secured.Post("/user/achievements/evaluate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := evaluator.EnsureAchievements(userID); err != nil {
			return errJSON(c, err)
		}
		updated, err := evaluator.Evaluate(userID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"updated": updated,
		})
	})

	secured.Get("/user/rank/:period", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		period := models.RankingPeriod(c.Params("period"))

		ranking, err := aggregator.UserRank(userID, period)
		if err != nil {
			var nfe *services.NotFoundError
			if errors.As(err, &nfe) {
				// Not ranked yet this period — an empty slot, not an error
				return c.JSON(fiber.Map{
					"period": period,
					"ranked": false,
				})
			}
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{
			"period": period,
			"ranked": true,
			"rank":   ranking.Rank,
			"points": ranking.Points,
		})
	})

	// 🔒 Admin routes
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	admin.Post("/rewards/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Type   string `json:"type" validate:"required"`
			Points int64  `json:"points" validate:"min=0"`
			Note   string `json:"note" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		reward, err := ledger.Grant(req.UserID, models.RewardType(req.Type), req.Points, models.RewardMetadata{Note: req.Note})
		if err != nil {
			return errJSON(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})

	admin.Post("/rankings/recompute", func(c *fiber.Ctx) error {
		periodParam := c.Query("period", "")
		if periodParam != "" {
			rankings, err := aggregator.Recompute(models.RankingPeriod(periodParam))
			if err != nil {
				return errJSON(c, err)
			}
			return c.JSON(fiber.Map{"period": periodParam, "rows": len(rankings)})
		}
		if err := aggregator.RecomputeAll(); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(fiber.Map{"message": "all periods recomputed"})
	})
}
