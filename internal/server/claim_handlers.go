package server

import (
	"time"

	"foodbridge/internal/models"
	"foodbridge/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type createClaimRequest struct {
	FoodID         uint       `json:"food_id" validate:"required"`
	RequesterName  string     `json:"requester_name" validate:"required,min=2,max=120"`
	RequesterEmail string     `json:"requester_email" validate:"required,email"`
	RequesterPhone string     `json:"requester_phone" validate:"max=40"`
	MembersCount   int        `json:"members_count" validate:"gte=0,lte=100"`
	PickupAddress  string     `json:"pickup_address" validate:"max=240"`
	PickupTime     *time.Time `json:"pickup_time"`
	DropoffAddress string     `json:"dropoff_address" validate:"max=240"`
	Notes          string     `json:"notes" validate:"max=4000"`
}

// CreateClaim records a request to receive a listing. Claims are open to
// visitors without accounts; a logged-in caller gets linked by ID so the
// moderation outcome can notify them.
func (s *Server) CreateClaim(c *fiber.Ctx) error {
	var req createClaimRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	if _, err := s.listingRepo.GetByID(c.Context(), req.FoodID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	claim := &models.FoodClaim{
		FoodID:         req.FoodID,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		RequesterPhone: req.RequesterPhone,
		MembersCount:   req.MembersCount,
		Status:         models.ClaimStatusPending,
		PickupAddress:  req.PickupAddress,
		PickupTime:     req.PickupTime,
		DropoffAddress: req.DropoffAddress,
		Notes:          req.Notes,
	}
	if claim.MembersCount == 0 {
		claim.MembersCount = 1
	}
	if userID, ok := s.optionalUserID(c); ok {
		claim.RequesterID = &userID
	}

	if err := s.claimRepo.Create(c.Context(), claim); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

// AdminGetClaims lists claims for the moderation queue.
func (s *Server) AdminGetClaims(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	filters := repository.ClaimFilters{
		Status: models.ClaimStatus(c.Query("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if foodID := c.QueryInt("food_id"); foodID > 0 {
		filters.FoodID = uint(foodID)
	}

	claims, err := s.claimRepo.List(c.Context(), filters)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"claims": claims})
}
