// services/users.go
package services

import (
	"learning-rewards-system/models"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileService answers display-attribute lookups against the mirrored
// profile table. Only presentation needs these; the engine itself works with
// opaque user IDs.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// Lookup resolves one external user ID to its mirrored profile.
func (s *ProfileService) Lookup(externalUserID string) (*models.ProfileMirror, error) {
	var profile models.ProfileMirror
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&profile).Error
	if err != nil {
		return nil, wrapDBErr("profile read", "profile", externalUserID, err)
	}
	return &profile, nil
}

// LookupMany resolves a batch of external user IDs; missing profiles are
// simply absent from the result map.
func (s *ProfileService) LookupMany(externalUserIDs []string) (map[string]models.ProfileMirror, error) {
	result := make(map[string]models.ProfileMirror, len(externalUserIDs))
	if len(externalUserIDs) == 0 {
		return result, nil
	}
	var profiles []models.ProfileMirror
	if err := s.DB.Where("external_user_id IN ?", externalUserIDs).Find(&profiles).Error; err != nil {
		return nil, &PersistenceError{Op: "profile batch read", Err: err}
	}
	for _, p := range profiles {
		result[p.ExternalUserID] = p
	}
	return result, nil
}

// SearchUsers searches the local profile mirror (admin tooling).
func (s *ProfileService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []models.ProfileMirror
	db := s.DB.Model(&models.ProfileMirror{}).Limit(limit)

	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(username) LIKE ?", searchTerm)
	}

	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	type UserSummary struct {
		ID             string  `json:"id"`
		ExternalUserID string  `json:"external_user_id"`
		Username       string  `json:"username"`
		AvatarURL      *string `json:"avatar_url,omitempty"`
	}

	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:             u.ID,
			ExternalUserID: u.ExternalUserID,
			Username:       u.Username,
			AvatarURL:      u.AvatarURL,
		}
	}

	return c.JSON(res)
}
