package server

import (
	"time"

	"harbor/internal/models"
	"harbor/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// PurgeUser handles DELETE /api/admin/users/:id.
// This is the hard-delete path: every row owned by or referencing the user
// goes away in one transaction.
func (s *Server) PurgeUser(c *fiber.Ctx) error {
	ctx := c.Context()
	actorID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id", "user ID")
	if err != nil {
		return nil
	}

	if err := s.purgeService.PurgeUser(ctx, targetID, actorID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ResyncCounter handles POST /api/admin/counters/resync.
// Recomputes a derived counter from the authoritative child count.
func (s *Server) ResyncCounter(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		ContentType string `json:"content_type"`
		ContentID   uint   `json:"content_id"`
		Counter     string `json:"counter"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ref := models.ContentRef{Type: models.ContentType(req.ContentType), ID: req.ContentID}
	if !ref.Type.Valid() || ref.ID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid content_type and content_id are required"))
	}

	counter := repository.Counter(req.Counter)
	if counter != repository.CounterLikes && counter != repository.CounterComments {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("counter must be 'likes' or 'comments'"))
	}

	if err := s.counterRepo.Resync(ctx, ref, counter); err != nil {
		return respondServiceError(c, err)
	}

	value, err := s.counterRepo.Value(ctx, ref, counter)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"content_type": req.ContentType,
		"content_id":   req.ContentID,
		"counter":      req.Counter,
		"value":        value,
	})
}

// CleanupNotifications handles POST /api/admin/notifications/cleanup.
// Removes notifications older than the given number of days (default 90).
func (s *Server) CleanupNotifications(c *fiber.Ctx) error {
	ctx := c.Context()

	days := c.QueryInt("days", 90)
	if days <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("days must be positive"))
	}

	removed, err := s.notificationService.CleanupOlderThan(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"removed": removed})
}
