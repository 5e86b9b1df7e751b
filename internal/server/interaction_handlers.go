package server

import (
	"chelagram/internal/models"
	"chelagram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LikeRequest is the request body for toggling a like.
type LikeRequest struct {
	PostID uint `json:"postId"`
}

// CommentRequest is the request body for creating a comment.
type CommentRequest struct {
	PostID  uint   `json:"postId"`
	Content string `json:"content"`
}

// ToggleLike handles POST /api/interactions/like. Liking an already-liked
// post removes the like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	var req LikeRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid postId is required"))
	}

	liked, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), req.PostID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if liked {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Post liked",
			"liked":   true,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Post unliked",
		"liked":   false,
	})
}

// CreateComment handles POST /api/interactions/comment.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid postId is required"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		PostID:  req.PostID,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/interactions/comments/:postId, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	page := parsePagination(c, 50)
	comments, err := s.commentService.GetComments(c.UserContext(), postID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comments)
}
