// Package service contains the application's business logic, composed from
// repositories and invoked by HTTP handlers.
package service

import (
	"context"
	"strings"

	"chelagram/internal/cache"
	"chelagram/internal/models"
	"chelagram/internal/repository"
	"chelagram/internal/storage"
)

type PostService struct {
	postRepo repository.PostRepository
	store    storage.Storage
}

type CreatePostInput struct {
	AuthorID  uint
	Caption   string
	Location  string
	IsPinned  bool
	ImageName string
	ImageData []byte
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Caption  *string
	Location *string
	IsPinned *bool
}

func NewPostService(postRepo repository.PostRepository, store storage.Storage) *PostService {
	return &PostService{postRepo: postRepo, store: store}
}

const maxCaptionLen = 2200

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if len(in.Caption) > maxCaptionLen {
		return nil, models.NewValidationError("Caption too long (max 2200 characters)")
	}

	contentType, err := storage.ValidateImage(in.ImageData)
	if err != nil {
		return nil, err
	}
	imageURL, err := s.store.Upload(ctx, "posts", storage.ObjectName(in.ImageName), contentType, in.ImageData)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		ImageURL: imageURL,
		Caption:  strings.TrimSpace(in.Caption),
		Location: strings.TrimSpace(in.Location),
		IsPinned: in.IsPinned,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	created, err := s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
	if err != nil {
		return nil, err
	}
	// the cached profile carries a posts_count
	if created.Author.Username != "" {
		cache.InvalidateProfile(ctx, created.Author.Username)
	}
	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

func (s *PostService) GetFeed(ctx context.Context, currentUserID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.GetFeed(ctx, currentUserID, limit, offset)
}

func (s *PostService) GetUserPosts(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByAuthorUsername(ctx, username, limit, offset, currentUserID)
}

// UpdatePost applies partial edits to caption, location and pinned state.
// Only the post's author may edit.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Caption != nil {
		if len(*in.Caption) > maxCaptionLen {
			return nil, models.NewValidationError("Caption too long (max 2200 characters)")
		}
		post.Caption = strings.TrimSpace(*in.Caption)
	}
	if in.Location != nil {
		post.Location = strings.TrimSpace(*in.Location)
	}
	if in.IsPinned != nil {
		post.IsPinned = *in.IsPinned
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	if post.Author.Username != "" {
		cache.InvalidateProfile(ctx, post.Author.Username)
	}
	return nil
}

// ToggleLike flips the caller's like on a post and reports the resulting
// state. The flip is decided by which atomic write actually changed a row, so
// concurrent toggles can never produce duplicate likes or negative counts.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (liked bool, err error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return false, err
	}

	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	// A like already existed; remove it. If another request deleted it first
	// the toggle still lands in a consistent state.
	if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return false, err
	}
	return false, nil
}
