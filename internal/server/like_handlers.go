package server

import (
	"harbor/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TogglePostLike handles POST /api/posts/:id/like.
// One endpoint flips the state both ways; the response reports which way it went.
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	return s.toggleLike(c, models.PostRef(id))
}

// ToggleCommentLike handles POST /api/comments/:id/like
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "comment ID")
	if err != nil {
		return nil
	}
	return s.toggleLike(c, models.CommentRef(id))
}

func (s *Server) toggleLike(c *fiber.Ctx, ref models.ContentRef) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	result, err := s.likeService.Toggle(ctx, ref, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}
