package server

import (
	"context"

	"chelagram/internal/config"
	"chelagram/internal/models"
	"chelagram/internal/notifications"
	"chelagram/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, excludeUserID uint, limit int) ([]models.User, error) {
	args := m.Called(ctx, query, excludeUserID, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetFeed(ctx context.Context, currentUserID uint, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, currentUserID, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByAuthorUsername(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, username, limit, offset, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, postID, limit, offset)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

// MockChatRepository is a mock of the ChatRepository interface
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockChatRepository) FindDirectConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockChatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockChatRepository) GetUserConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Conversation), args.Error(1)
}

func (m *MockChatRepository) IsParticipant(ctx context.Context, convID, userID uint) (bool, error) {
	args := m.Called(ctx, convID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, convID, limit, offset)
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockChatRepository) DeleteConversation(ctx context.Context, convID uint) error {
	args := m.Called(ctx, convID)
	return args.Error(0)
}

type fakeStorage struct{}

func (fakeStorage) Upload(_ context.Context, folder, filename, _ string, _ []byte) (string, error) {
	return "https://cdn.test/" + folder + "/" + filename, nil
}

type serverMocks struct {
	users    *MockUserRepository
	posts    *MockPostRepository
	comments *MockCommentRepository
	follows  *MockFollowRepository
	chats    *MockChatRepository
}

// newTestServer wires real services over repository mocks.
func newTestServer() (*Server, *serverMocks) {
	m := &serverMocks{
		users:    new(MockUserRepository),
		posts:    new(MockPostRepository),
		comments: new(MockCommentRepository),
		follows:  new(MockFollowRepository),
		chats:    new(MockChatRepository),
	}

	s := &Server{
		config:      &config.Config{JWTSecret: "test_secret"},
		userRepo:    m.users,
		postRepo:    m.posts,
		commentRepo: m.comments,
		followRepo:  m.follows,
		chatRepo:    m.chats,
	}
	s.notifier = notifications.NewNotifier(nil)
	s.postService = service.NewPostService(m.posts, fakeStorage{})
	s.commentService = service.NewCommentService(m.comments, m.posts)
	s.chatService = service.NewChatService(m.chats, m.users, s.notifier)
	s.userService = service.NewUserService(m.users, m.follows, fakeStorage{})

	return s, m
}

// newTestApp builds a Fiber app with the production error handler.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: appErrorHandler})
}

// asUser stands in for AuthRequired in handler tests.
func asUser(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		return c.Next()
	}
}
