package server

import (
	"foodbridge/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns the caller's notifications, newest first.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	_, limit := parsePagination(c)
	userID := currentUserID(c)

	notifs, err := s.notificationRepo.ListForUser(c.Context(), userID, limit)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	unread, err := s.notificationRepo.UnreadCount(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifs,
		"unread_count":  unread,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationRepo.MarkRead(c.Context(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"read": true})
}

// MarkAllNotificationsRead marks every unread notification as read.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationRepo.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"read": true})
}
