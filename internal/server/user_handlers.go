package server

import (
	"io"
	"time"

	"foodbridge/internal/models"
	"foodbridge/internal/repository"
	"foodbridge/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Name         string `json:"name" validate:"omitempty,min=2,max=120"`
	AccountType  string `json:"account_type" validate:"omitempty,oneof=individual organization"`
	Organization string `json:"organization" validate:"max=120"`
}

type updateStatsRequest struct {
	TotalDonations   int     `json:"total_donations" validate:"gte=0"`
	TotalTrades      int     `json:"total_trades" validate:"gte=0"`
	TotalFoodSaved   float64 `json:"total_food_saved" validate:"gte=0"`
	TotalImpactScore int     `json:"total_impact_score" validate:"gte=0"`
}

// GetMyProfile returns the caller's profile with stats and badges embedded.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// UpdateMyProfile applies partial edits to the caller's profile.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.AccountType != "" {
		user.AccountType = req.AccountType
	}
	user.Organization = req.Organization

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// UploadAvatar stores a new avatar image and records its URL on the profile.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A 'file' form field is required"))
	}
	if fileHeader.Size > 5<<20 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("File exceeds the 5MB limit"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.AllowedImageType(contentType) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Only JPEG, PNG, GIF and WebP images are accepted"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	userID := currentUserID(c)
	object := storage.AvatarObjectName(userID, fileHeader.Filename)
	url, err := s.uploader.Upload(c.Context(), s.config.AvatarBucket, object, data, contentType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	user.AvatarURL = url
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"avatar_url": url})
}

// GetMyStats returns the caller's contribution counters, zeroed when no row
// exists yet.
func (s *Server) GetMyStats(c *fiber.Ctx) error {
	stats, err := s.statsService.UserStats(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(stats)
}

// UpdateMyStats upserts the caller's contribution counters.
func (s *Server) UpdateMyStats(c *fiber.Ctx) error {
	var req updateStatsRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	stats := &models.UserStats{
		UserID:           currentUserID(c),
		TotalDonations:   req.TotalDonations,
		TotalTrades:      req.TotalTrades,
		TotalFoodSaved:   req.TotalFoodSaved,
		TotalImpactScore: req.TotalImpactScore,
		LastUpdated:      time.Now(),
	}
	if err := s.statsService.UpdateUserStats(c.Context(), stats); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(stats)
}

// AdminGetUsers lists accounts for the admin console.
func (s *Server) AdminGetUsers(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	filters := repository.UserFilters{
		Role:   models.UserRole(c.Query("role")),
		Status: models.UserStatus(c.Query("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	users, err := s.userRepo.List(c.Context(), filters)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"users": users, "page": page, "limit": limit})
}

// AdminRecentUsers returns the newest signups for the dashboard.
func (s *Server) AdminRecentUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.Recent(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"users": users})
}
