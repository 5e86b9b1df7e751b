// Package seed provides helpers to create development and demo data. Never
// run against a production database.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"chelagram/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	//nolint:gosec // weak randomness is fine for seed data
	return &Factory{db: db, rng: rand.New(rand.NewSource(seed))}
}

// CreateUser persists a generated user. Overrides run before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := BuildUser(f.rng)
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a generated post for the author with a realistic
// created_at spread over the past 90 days.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := BuildPost(f.rng, author.ID)
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Follow records follower -> following, ignoring duplicates.
func (f *Factory) Follow(followerID, followingID uint) error {
	if followerID == followingID {
		return nil
	}
	return f.db.Exec(
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT DO NOTHING`,
		followerID, followingID,
	).Error
}

// Like records a like, ignoring duplicates.
func (f *Factory) Like(userID, postID uint) error {
	return f.db.Exec(
		`INSERT INTO likes (post_id, user_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT DO NOTHING`,
		postID, userID,
	).Error
}

// Comment persists a generated comment on the post.
func (f *Factory) Comment(userID, postID uint) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  commentText(f.rng),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Conversation creates a two-party conversation with some message history.
func (f *Factory) Conversation(userA, userB uint, messageCount int) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range []uint{userA, userB} {
			if err := tx.Create(&models.Participant{ConversationID: conv.ID, UserID: uid}).Error; err != nil {
				return err
			}
		}
		sender := userA
		for i := 0; i < messageCount; i++ {
			msg := &models.Message{
				ConversationID: conv.ID,
				SenderID:       sender,
				Content:        gofakeit.HipsterSentence(f.rng.Intn(10) + 2),
			}
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
			if f.rng.Intn(2) == 0 {
				sender = userA + userB - sender
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// BuildUser generates an unsaved user with the shared seed password.
func BuildUser(rng *rand.Rand) *models.User {
	name := gofakeit.Name()
	return &models.User{
		Username:    gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(10, 99)),
		Password:    seedPasswordHash(),
		DisplayName: name,
		Bio:         gofakeit.HipsterSentence(rng.Intn(8) + 4),
		AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
}

// BuildPost generates an unsaved post for the author.
func BuildPost(rng *rand.Rand, authorID uint) *models.Post {
	post := &models.Post{
		AuthorID: authorID,
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Caption:  captionText(rng),
	}
	if rng.Intn(3) == 0 {
		post.Location = gofakeit.City() + ", " + gofakeit.Country()
	}

	daysBack := rng.Intn(90)
	hoursBack := rng.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.UpdatedAt = post.CreatedAt
	return post
}

func captionText(rng *rand.Rand) string {
	switch rng.Intn(4) {
	case 0:
		return ""
	case 1:
		return gofakeit.Emoji() + " " + gofakeit.HipsterSentence(rng.Intn(6)+2)
	default:
		return gofakeit.HipsterSentence(rng.Intn(10) + 3)
	}
}

func commentText(rng *rand.Rand) string {
	if rng.Intn(3) == 0 {
		return gofakeit.Emoji()
	}
	return gofakeit.HipsterSentence(rng.Intn(6) + 1)
}

var passwordHash string

// seedPasswordHash hashes "password123" once; every seed user shares it.
func seedPasswordHash() string {
	if passwordHash == "" {
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		passwordHash = string(hash)
	}
	return passwordHash
}
