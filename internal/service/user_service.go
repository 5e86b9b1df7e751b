package service

import (
	"context"
	"strings"

	"chelagram/internal/models"
	"chelagram/internal/repository"
	"chelagram/internal/storage"
	"chelagram/internal/validation"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	store      storage.Storage
}

type UpdateProfileInput struct {
	UserID      uint
	DisplayName *string
	Bio         *string
	AvatarName  string
	AvatarData  []byte
}

// UserProfile is a user with relationship context for the requesting viewer.
type UserProfile struct {
	models.User
	IsFollowing bool `json:"is_following"`
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, store storage.Storage) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo, store: store}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns a user's profile with counts and whether the viewer
// follows them. A user viewing their own profile reads as following
// themselves.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID uint) (*UserProfile, error) {
	user, err := s.userRepo.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{User: *user}
	if viewerID != 0 {
		if user.ID == viewerID {
			profile.IsFollowing = true
		} else {
			following, err := s.followRepo.IsFollowing(ctx, viewerID, user.ID)
			if err != nil {
				return nil, err
			}
			profile.IsFollowing = following
		}
	}
	return profile, nil
}

const maxBioLen = 500

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if len(name) > 80 {
			return nil, models.NewValidationError("Display name too long (max 80 characters)")
		}
		user.DisplayName = name
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if len(in.AvatarData) > 0 {
		contentType, err := storage.ValidateImage(in.AvatarData)
		if err != nil {
			return nil, err
		}
		avatarURL, err := s.store.Upload(ctx, "avatars", storage.ObjectName(in.AvatarName), contentType, in.AvatarData)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = avatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

const searchResultCap = 10

// SearchUsers matches usernames case-insensitively, excluding the searcher.
func (s *UserService) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if !validation.ValidSearchQuery(query) {
		return nil, models.NewValidationError("Invalid search query")
	}

	users, err := s.userRepo.Search(ctx, query, currentUserID, searchResultCap)
	if err != nil {
		return nil, err
	}
	results := make([]models.PublicUser, 0, len(users))
	for i := range users {
		results = append(results, users[i].Public())
	}
	return results, nil
}

// ToggleFollow flips the follow edge from the caller to the target and
// reports the resulting state. Self-follows are rejected. The flip is decided
// by which atomic write changed a row, so concurrent toggles converge.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, followingID uint) (following bool, err error) {
	if followingID == followerID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return false, err
	}

	created, err := s.followRepo.Follow(ctx, followerID, target.ID)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	if _, err := s.followRepo.Unfollow(ctx, followerID, target.ID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *UserService) GetFollowers(ctx context.Context, username string, limit, offset int) ([]models.PublicUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessageError("User not found")
	}
	users, err := s.followRepo.Followers(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func (s *UserService) GetFollowing(ctx context.Context, username string, limit, offset int) ([]models.PublicUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessageError("User not found")
	}
	users, err := s.followRepo.Following(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
