package service

import (
	"context"
	"errors"
	"testing"

	"chelagram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn              func(context.Context, *models.Post) error
	getByIDFn             func(context.Context, uint, uint) (*models.Post, error)
	getFeedFn             func(context.Context, uint, int, int) ([]*models.Post, error)
	getByAuthorUsernameFn func(context.Context, string, int, int, uint) ([]*models.Post, error)
	updateFn              func(context.Context, *models.Post) error
	deleteFn              func(context.Context, uint) error
	likeFn                func(context.Context, uint, uint) (bool, error)
	unlikeFn              func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetFeed(ctx context.Context, currentUserID uint, limit, offset int) ([]*models.Post, error) {
	return s.getFeedFn(ctx, currentUserID, limit, offset)
}
func (s *postRepoStub) GetByAuthorUsername(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByAuthorUsernameFn(ctx, username, limit, offset, currentUserID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		getFeedFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		getByAuthorUsernameFn: func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		likeFn:   func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getProfileFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	searchFn        func(context.Context, string, uint, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.getProfileFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, excludeUserID uint, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, excludeUserID, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 2, Username: username}, nil
		},
		getProfileFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 2, Username: username}, nil
		},
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
		searchFn: func(_ context.Context, _ string, _ uint, _ int) ([]models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn      func(context.Context, uint, uint) (bool, error)
	unfollowFn    func(context.Context, uint, uint) (bool, error)
	isFollowingFn func(context.Context, uint, uint) (bool, error)
	followersFn   func(context.Context, uint, int, int) ([]models.User, error)
	followingFn   func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followingFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn:   func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		followingFn:   func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// chatRepoStub is a stub for repository.ChatRepository.
type chatRepoStub struct {
	createConversationFn     func(context.Context, uint, uint) (*models.Conversation, error)
	findDirectConversationFn func(context.Context, uint, uint) (*models.Conversation, error)
	getConversationFn        func(context.Context, uint) (*models.Conversation, error)
	getUserConversationsFn   func(context.Context, uint) ([]*models.Conversation, error)
	isParticipantFn          func(context.Context, uint, uint) (bool, error)
	createMessageFn          func(context.Context, *models.Message) error
	getMessagesFn            func(context.Context, uint, int, int) ([]*models.Message, error)
	deleteConversationFn     func(context.Context, uint) error
}

func (s *chatRepoStub) CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	return s.createConversationFn(ctx, userA, userB)
}
func (s *chatRepoStub) FindDirectConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	return s.findDirectConversationFn(ctx, userA, userB)
}
func (s *chatRepoStub) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	return s.getConversationFn(ctx, id)
}
func (s *chatRepoStub) GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.getUserConversationsFn(ctx, userID)
}
func (s *chatRepoStub) IsParticipant(ctx context.Context, convID, userID uint) (bool, error) {
	return s.isParticipantFn(ctx, convID, userID)
}
func (s *chatRepoStub) CreateMessage(ctx context.Context, msg *models.Message) error {
	return s.createMessageFn(ctx, msg)
}
func (s *chatRepoStub) GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error) {
	return s.getMessagesFn(ctx, convID, limit, offset)
}
func (s *chatRepoStub) DeleteConversation(ctx context.Context, convID uint) error {
	return s.deleteConversationFn(ctx, convID)
}

func noopChatRepo() *chatRepoStub {
	return &chatRepoStub{
		createConversationFn: func(_ context.Context, _, _ uint) (*models.Conversation, error) {
			return &models.Conversation{ID: 1}, nil
		},
		findDirectConversationFn: func(_ context.Context, _, _ uint) (*models.Conversation, error) {
			return nil, nil
		},
		getConversationFn: func(_ context.Context, id uint) (*models.Conversation, error) {
			return &models.Conversation{ID: id}, nil
		},
		getUserConversationsFn: func(_ context.Context, _ uint) ([]*models.Conversation, error) { return nil, nil },
		isParticipantFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		createMessageFn:        func(_ context.Context, m *models.Message) error { m.ID = 1; return nil },
		getMessagesFn:          func(_ context.Context, _ uint, _, _ int) ([]*models.Message, error) { return nil, nil },
		deleteConversationFn:   func(_ context.Context, _ uint) error { return nil },
	}
}

// storeStub records uploads and returns a fixed URL.
type storeStub struct {
	uploads  int
	lastName string
	fail     error
}

func (s *storeStub) Upload(_ context.Context, folder, filename, _ string, _ []byte) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.uploads++
	s.lastName = folder + "/" + filename
	return "https://cdn.example/" + folder + "/" + filename, nil
}

// pngBytes is a minimal payload content sniffing accepts as image/png.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
