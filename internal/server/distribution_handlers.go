package server

import (
	"time"

	"foodbridge/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createEventRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	Location    string    `json:"location" validate:"max=240"`
	EventDate   time.Time `json:"event_date" validate:"required"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
}

// GetDistributionEvents lists events ordered by date.
func (s *Server) GetDistributionEvents(c *fiber.Ctx) error {
	events, err := s.distributionService.UpcomingEvents(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// CreateDistributionEvent schedules a new event.
func (s *Server) CreateDistributionEvent(c *fiber.Ctx) error {
	var req createEventRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	event := &models.DistributionEvent{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventDate:   req.EventDate,
		Capacity:    req.Capacity,
	}
	if err := s.distributionService.CreateEvent(c.Context(), event); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// DeleteDistributionEvent cancels an event.
func (s *Server) DeleteDistributionEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.distributionRepo.DeleteEvent(c.Context(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterForEvent signs the caller up for an event.
func (s *Server) RegisterForEvent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.distributionService.RegisterForEvent(c.Context(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"registered": true})
}

// GetEventAttendees lists registrations for an event.
func (s *Server) GetEventAttendees(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	attendees, err := s.distributionService.Attendees(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"attendees": attendees})
}
