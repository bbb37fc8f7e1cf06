package server

import (
	"log/slog"

	"foodbridge/internal/models"
	"foodbridge/internal/notifications"
	"foodbridge/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type createTradeRequest struct {
	RecipientID        uint   `json:"recipient_id" validate:"required"`
	OfferedListingID   uint   `json:"offered_listing_id" validate:"required"`
	RequestedListingID uint   `json:"requested_listing_id" validate:"required"`
	Message            string `json:"message" validate:"max=2000"`
}

type updateTradeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active accepted declined completed cancelled"`
}

type createBarterTradeRequest struct {
	OfferedListingID uint   `json:"offered_listing_id" validate:"required"`
	RequestedItems   string `json:"requested_items" validate:"required,max=2000"`
	TradeType        string `json:"trade_type" validate:"omitempty,oneof=direct open"`
	Message          string `json:"message" validate:"max=2000"`
}

type updateBarterStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=pending active accepted declined completed cancelled"`
	Analysis string `json:"analysis" validate:"max=8000"`
}

// GetTrades lists trades the caller participates in.
func (s *Server) GetTrades(c *fiber.Ctx) error {
	trades, err := s.tradeRepo.List(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"trades": trades})
}

// GetTrade returns one trade the caller participates in.
func (s *Server) GetTrade(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	trade, err := s.tradeRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	userID := currentUserID(c)
	if trade.InitiatorID != userID && trade.RecipientID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You are not a party to this trade"))
	}
	return c.JSON(trade)
}

// CreateTrade proposes an exchange of two listings.
func (s *Server) CreateTrade(c *fiber.Ctx) error {
	var req createTradeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	userID := currentUserID(c)
	if req.RecipientID == userID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot open a trade with yourself"))
	}

	offered, err := s.listingRepo.GetByID(c.Context(), req.OfferedListingID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if offered.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only offer your own listings"))
	}
	if _, err := s.listingRepo.GetByID(c.Context(), req.RequestedListingID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	trade := &models.Trade{
		InitiatorID:        userID,
		RecipientID:        req.RecipientID,
		OfferedListingID:   req.OfferedListingID,
		RequestedListingID: req.RequestedListingID,
		Status:             models.TradeStatusPending,
		Message:            req.Message,
	}
	if err := s.tradeRepo.Create(c.Context(), trade); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	s.publishTradeEvent(c, notifications.ActionInsert, trade, req.RecipientID)
	return c.Status(fiber.StatusCreated).JSON(trade)
}

// UpdateTradeStatus transitions a trade. Only the two parties may do so.
func (s *Server) UpdateTradeStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateTradeStatusRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	trade, err := s.tradeRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	userID := currentUserID(c)
	if trade.InitiatorID != userID && trade.RecipientID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You are not a party to this trade"))
	}

	updated, err := s.tradeRepo.UpdateStatus(c.Context(), id, models.TradeStatus(req.Status))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	// Tell the other party.
	other := updated.InitiatorID
	if other == userID {
		other = updated.RecipientID
	}
	s.publishTradeEvent(c, notifications.ActionUpdate, updated, other)
	return c.JSON(updated)
}

// GetBarterTrades lists barter offers, filtered by involvement and status.
func (s *Server) GetBarterTrades(c *fiber.Ctx) error {
	filters := repository.BarterFilters{
		Type:      c.Query("type"),
		Status:    models.TradeStatus(c.Query("status")),
		TradeType: c.Query("trade_type"),
	}

	trades, err := s.barterRepo.List(c.Context(), currentUserID(c), filters)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"barter_trades": trades})
}

// CreateBarterTrade opens a one-sided barter offer.
func (s *Server) CreateBarterTrade(c *fiber.Ctx) error {
	var req createBarterTradeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	userID := currentUserID(c)
	offered, err := s.listingRepo.GetByID(c.Context(), req.OfferedListingID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if offered.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only offer your own listings"))
	}

	trade, err := s.barterRepo.Create(c.Context(), &models.BarterTrade{
		InitiatorID:      userID,
		OfferedListingID: req.OfferedListingID,
		RequestedItems:   req.RequestedItems,
		TradeType:        req.TradeType,
		Message:          req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	s.publishBarterEvent(c, notifications.ActionInsert, trade)
	return c.Status(fiber.StatusCreated).JSON(trade)
}

// UpdateBarterTradeStatus transitions a barter offer, optionally attaching a
// match analysis.
func (s *Server) UpdateBarterTradeStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateBarterStatusRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	var extra map[string]interface{}
	if req.Analysis != "" {
		extra = map[string]interface{}{"analysis": req.Analysis}
	}

	updated, err := s.barterRepo.UpdateStatus(c.Context(), id, models.TradeStatus(req.Status), extra)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	s.publishBarterEvent(c, notifications.ActionUpdate, updated)
	return c.JSON(updated)
}

func (s *Server) publishTradeEvent(c *fiber.Ctx, action string, trade *models.Trade, notifyUserID uint) {
	event := notifications.Event{
		Resource: notifications.FeedTrades,
		Action:   action,
		Payload:  trade,
	}
	if err := s.notifier.PublishResource(c.Context(), notifications.FeedTrades, event); err != nil {
		slog.Warn("failed to publish trade event", "action", action, "error", err)
	}
	if notifyUserID != 0 {
		if err := s.notifier.PublishUser(c.Context(), notifyUserID, event); err != nil {
			slog.Warn("failed to publish trade event to user",
				"user_id", notifyUserID, "error", err)
		}
	}
}

func (s *Server) publishBarterEvent(c *fiber.Ctx, action string, trade *models.BarterTrade) {
	event := notifications.Event{
		Resource: notifications.FeedBarterTrades,
		Action:   action,
		Payload:  trade,
	}
	if err := s.notifier.PublishResource(c.Context(), notifications.FeedBarterTrades, event); err != nil {
		slog.Warn("failed to publish barter event", "action", action, "error", err)
	}
}
