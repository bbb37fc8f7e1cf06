// Package service implements the operations that span multiple repositories:
// moderation reviews, aggregate stats, community actions, and event
// registration.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"foodbridge/internal/models"
	"foodbridge/internal/notifications"
	"foodbridge/internal/repository"
)

// ModerationService reviews claims and listings. Each review is a two-step
// saga: the status transition commits first, then the notification is sent
// best-effort. A failed notification never rolls back the transition.
type ModerationService struct {
	claims   repository.ClaimRepository
	listings repository.ListingRepository
	notifs   repository.NotificationRepository
	notifier *notifications.Notifier
	logger   *slog.Logger
}

// NewModerationService wires a ModerationService.
func NewModerationService(
	claims repository.ClaimRepository,
	listings repository.ListingRepository,
	notifs repository.NotificationRepository,
	notifier *notifications.Notifier,
	logger *slog.Logger,
) *ModerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationService{
		claims:   claims,
		listings: listings,
		notifs:   notifs,
		notifier: notifier,
		logger:   logger,
	}
}

// ReviewResult reports a completed review. Notified is false when the
// status change committed but the follow-up notification failed.
type ReviewResult struct {
	Status   string `json:"status"`
	Notified bool   `json:"notified"`
}

// ReviewClaim approves or declines a food claim.
func (s *ModerationService) ReviewClaim(ctx context.Context, claimID uint, approve bool) (*ReviewResult, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	status := models.ClaimStatusDeclined
	if approve {
		status = models.ClaimStatusApproved
	}
	if err := s.claims.UpdateStatus(ctx, claimID, status); err != nil {
		return nil, err
	}

	notified := s.notifyClaimReview(ctx, claim, approve)
	return &ReviewResult{Status: string(status), Notified: notified}, nil
}

func (s *ModerationService) notifyClaimReview(ctx context.Context, claim *models.FoodClaim, approved bool) bool {
	if claim.RequesterID == nil {
		s.logger.Info("claim has no requester account, skipping notification", "claim_id", claim.ID)
		return false
	}

	var foodTitle string
	if claim.Food != nil {
		foodTitle = claim.Food.Title
	}

	title := "Food Claim Declined"
	message := fmt.Sprintf("Your claim for %q was not approved. Please review the guidelines and try again.", foodTitle)
	notifType := models.NotificationClaimDeclined
	if approved {
		title = "Food Claim Approved"
		message = fmt.Sprintf("Your claim for %q has been approved! Please check your email for pickup details.", foodTitle)
		notifType = models.NotificationClaimApproved
	}

	data, _ := json.Marshal(map[string]interface{}{
		"claim_id":   claim.ID,
		"food_title": foodTitle,
	})
	n := &models.Notification{
		UserID:  *claim.RequesterID,
		Title:   title,
		Message: message,
		Type:    notifType,
		Data:    string(data),
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.logger.Error("claim review notification failed", "claim_id", claim.ID, "error", err)
		return false
	}

	s.publish(ctx, *claim.RequesterID, notifications.Event{
		Resource: notifications.FeedNotifications,
		Action:   notifications.ActionInsert,
		Payload:  n,
	})
	return true
}

// ReviewListing transitions a pending listing and notifies the donor when
// the listing is declined. Approvals are visible through the listing feed
// itself and send no notification row, matching the moderation flow.
func (s *ModerationService) ReviewListing(ctx context.Context, listingID uint, status models.ListingStatus) (*ReviewResult, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := s.listings.UpdateStatus(ctx, listingID, status); err != nil {
		return nil, err
	}

	s.publish(ctx, 0, notifications.Event{
		Resource: notifications.FeedFoodListings,
		Action:   notifications.ActionUpdate,
		Payload:  map[string]interface{}{"id": listingID, "status": status},
	})

	notified := false
	if status == models.ListingStatusDeclined {
		notified = s.notifyListingDeclined(ctx, listing)
	}
	return &ReviewResult{Status: string(status), Notified: notified}, nil
}

func (s *ModerationService) notifyListingDeclined(ctx context.Context, listing *models.FoodListing) bool {
	data, _ := json.Marshal(map[string]interface{}{"listing_id": listing.ID})
	n := &models.Notification{
		UserID:  listing.UserID,
		Title:   "Food Submission Declined",
		Message: fmt.Sprintf("Your food listing %q was not approved by the admin. Please review the guidelines and try again.", listing.Title),
		Type:    models.NotificationSubmissionDeclined,
		Data:    string(data),
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.logger.Error("decline notification failed", "listing_id", listing.ID, "error", err)
		return false
	}

	s.publish(ctx, listing.UserID, notifications.Event{
		Resource: notifications.FeedNotifications,
		Action:   notifications.ActionInsert,
		Payload:  n,
	})
	return true
}

// publish sends a realtime event, logging failures. A zero userID publishes
// to the resource feed only.
func (s *ModerationService) publish(ctx context.Context, userID uint, event notifications.Event) {
	if s.notifier == nil {
		return
	}
	var err error
	if userID != 0 {
		err = s.notifier.PublishUser(ctx, userID, event)
	} else {
		err = s.notifier.PublishResource(ctx, event.Resource, event)
	}
	if err != nil {
		s.logger.Warn("realtime publish failed", "resource", event.Resource, "error", err)
	}
}
