package server

import (
	"foodbridge/internal/models"
	"foodbridge/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type reviewClaimRequest struct {
	Approve bool `json:"approve"`
}

type reviewListingRequest struct {
	Status string `json:"status" validate:"required,oneof=approved declined active"`
}

// AdminDashboard returns the headline counters for the admin console.
func (s *Server) AdminDashboard(c *fiber.Ctx) error {
	stats, err := s.statsService.Dashboard(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(stats)
}

// AdminGetListings lists listings in any status for the moderation queue.
func (s *Server) AdminGetListings(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	filters := repository.ListingFilters{
		Status:      models.ListingStatus(c.Query("status", string(models.ListingStatusPending))),
		Category:    c.Query("category"),
		ListingType: models.ListingType(c.Query("listing_type")),
		Page:        page,
		Limit:       limit,
	}

	listings, err := s.listingRepo.List(c.Context(), filters)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"listings": listings, "page": page, "limit": limit})
}

// AdminRecentListings returns the newest submissions regardless of status.
func (s *Server) AdminRecentListings(c *fiber.Ctx) error {
	listings, err := s.listingRepo.Recent(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"listings": listings})
}

// ReviewClaim approves or declines a claim and notifies the requester.
func (s *Server) ReviewClaim(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req reviewClaimRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.moderationService.ReviewClaim(c.Context(), id, req.Approve)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(result)
}

// ReviewListing moves a listing through admin review. Declines notify the
// donor; approvals surface the listing without a notification.
func (s *Server) ReviewListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req reviewListingRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.moderationService.ReviewListing(c.Context(), id, models.ListingStatus(req.Status))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(result)
}
