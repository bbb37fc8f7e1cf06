package service

import (
	"context"
	"time"

	"foodbridge/internal/models"
	"foodbridge/internal/repository"
)

// DistributionService manages community distribution events.
type DistributionService struct {
	events repository.DistributionRepository
}

// NewDistributionService wires a DistributionService.
func NewDistributionService(events repository.DistributionRepository) *DistributionService {
	return &DistributionService{events: events}
}

// UpcomingEvents returns events ordered by date.
func (s *DistributionService) UpcomingEvents(ctx context.Context) ([]models.DistributionEvent, error) {
	return s.events.ListEvents(ctx)
}

// CreateEvent validates and stores a distribution event.
func (s *DistributionService) CreateEvent(ctx context.Context, event *models.DistributionEvent) error {
	if event.Title == "" {
		return models.NewValidationError("Event title is required")
	}
	if event.EventDate.IsZero() {
		return models.NewValidationError("Event date is required")
	}
	return s.events.CreateEvent(ctx, event)
}

// RegisterForEvent signs a user up for an event, refusing registrations for
// full or past events.
func (s *DistributionService) RegisterForEvent(ctx context.Context, eventID, userID uint) error {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.EventDate.Before(time.Now()) {
		return models.NewValidationError("Event has already taken place")
	}
	if event.Capacity > 0 && event.RegistrationCount >= event.Capacity {
		return models.NewConflictError("Event is at capacity")
	}

	return s.events.Register(ctx, eventID, userID)
}

// Attendees lists registrations for an event.
func (s *DistributionService) Attendees(ctx context.Context, eventID uint) ([]models.DistributionRegistration, error) {
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.events.Attendees(ctx, eventID)
}
