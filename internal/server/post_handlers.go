package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"chelagram/internal/models"
	"chelagram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdatePostRequest is the request body for editing a post. Absent fields are
// left unchanged.
type UpdatePostRequest struct {
	Caption  *string `json:"caption"`
	Location *string `json:"location"`
	IsPinned *bool   `json:"is_pinned"`
}

// CreatePost handles POST /api/posts. The body is multipart form data with an
// "image" file plus optional "caption" and "location" fields.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	content, err := readFormFile(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	isPinned := false
	if v := c.FormValue("is_pinned", c.FormValue("isPinned")); v != "" {
		isPinned, _ = strconv.ParseBool(v)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:  userID,
		Caption:   strings.TrimSpace(c.FormValue("caption")),
		Location:  strings.TrimSpace(c.FormValue("location")),
		IsPinned:  isPinned,
		ImageName: file.Filename,
		ImageData: content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/posts. The feed contains the viewer's own posts and
// posts by users they follow, pinned posts first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, defaultPageLimit)

	posts, err := s.postService.GetFeed(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetUserPosts handles GET /api/posts/user/:username.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePagination(c, defaultPageLimit)

	author, err := s.userRepo.GetByUsername(c.UserContext(), username)
	if err != nil {
		return respondServiceError(c, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessageError("User not found"))
	}

	posts, err := s.postService.GetUserPosts(c.UserContext(), username, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// UpdatePost handles PATCH /api/posts/:postId.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Caption:  req.Caption,
		Location: req.Location,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:postId.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	if file == nil {
		return nil, errors.New("missing file")
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return io.ReadAll(src)
}
