package server

import (
	"strings"

	"chelagram/internal/models"
	"chelagram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is the JSON request body for profile edits. Avatar
// changes use multipart form data instead.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// FollowRequest is the request body for toggling a follow.
type FollowRequest struct {
	FollowingID uint `json:"followingId"`
}

// GetMyProfile handles GET /api/users/profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	profile, err := s.userService.GetProfile(c.UserContext(), user.Username, user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// UpdateMyProfile handles PATCH /api/users/profile. Accepts JSON for text
// fields or multipart form data when uploading a new avatar.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{UserID: currentUserID(c)}

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		if v := c.FormValue("display_name", "\x00"); v != "\x00" {
			in.DisplayName = &v
		}
		if v := c.FormValue("bio", "\x00"); v != "\x00" {
			in.Bio = &v
		}
		if file, err := c.FormFile("avatar"); err == nil {
			content, rerr := readFormFile(file)
			if rerr != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Unable to read uploaded file"))
			}
			in.AvatarName = file.Filename
			in.AvatarData = content
		}
	} else {
		var req UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.DisplayName = req.DisplayName
		in.Bio = req.Bio
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?query=. The result excludes the
// requesting user.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.SearchUsers(c.UserContext(), c.Query("query"), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:username.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), c.Params("username"), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// ToggleFollow handles POST /api/users/follow. Following an already-followed
// user unfollows them.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	var req FollowRequest
	if err := c.BodyParser(&req); err != nil || req.FollowingID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A valid followingId is required"))
	}

	following, err := s.userService.ToggleFollow(c.UserContext(), currentUserID(c), req.FollowingID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if following {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":   "User followed",
			"following": true,
		})
	}
	return c.JSON(fiber.Map{
		"message":   "User unfollowed",
		"following": false,
	})
}

// GetFollowers handles GET /api/users/:username/followers.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.GetFollowers(c.UserContext(), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:username/following.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.GetFollowing(c.UserContext(), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}
