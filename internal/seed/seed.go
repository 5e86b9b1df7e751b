package seed

import (
	"fmt"
	"log"

	"chelagram/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers     int
	PostsPerUser int
	ShouldClean  bool
}

// Seed populates the database with demo data. Two fixed accounts, "chela" and
// "gracie", are always created so the frontend has known logins.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers < 2 {
		opts.NumUsers = 2
	}
	if opts.PostsPerUser <= 0 {
		opts.PostsPerUser = 5
	}
	log.Printf("🌱 Seeding %d users with ~%d posts each...", opts.NumUsers, opts.PostsPerUser)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: could not clear existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created (password: password123)", len(users))

	posts, err := createPosts(f, users, opts.PostsPerUser)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := createFollowMesh(f, users); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Println("✓ follow graph created")

	if err := createEngagement(f, users, posts); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}
	log.Println("✓ likes and comments created")

	if err := createConversations(f, users); err != nil {
		return fmt.Errorf("failed to create conversations: %w", err)
	}
	log.Println("✓ conversations created")

	log.Println("🎉 Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, messages, participants, conversations, follows, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	chela, err := f.CreateUser(func(u *models.User) {
		u.Username = "chela"
		u.DisplayName = "Chela"
		u.Bio = "Cat pics and film grain."
	})
	if err != nil {
		return nil, err
	}
	gracie, err := f.CreateUser(func(u *models.User) {
		u.Username = "gracie"
		u.DisplayName = "Gracie"
		u.Bio = "Mostly sunsets."
	})
	if err != nil {
		return nil, err
	}
	users = append(users, chela, gracie)

	for i := 2; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(f *Factory, users []*models.User, perUser int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, user := range users {
		n := f.rng.Intn(perUser) + perUser/2 + 1
		for i := 0; i < n; i++ {
			post, err := f.CreatePost(user)
			if err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}

	// One pinned post per fixed account so the feed ordering is visible.
	for _, user := range users[:2] {
		if _, err := f.CreatePost(user, func(p *models.Post) {
			p.IsPinned = true
			p.Caption = "Pinned: start here"
		}); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// createFollowMesh makes every user follow a random subset of the others.
// The two fixed accounts follow each other.
func createFollowMesh(f *Factory, users []*models.User) error {
	if err := f.Follow(users[0].ID, users[1].ID); err != nil {
		return err
	}
	if err := f.Follow(users[1].ID, users[0].ID); err != nil {
		return err
	}

	for _, follower := range users {
		count := f.rng.Intn(len(users)/2 + 1)
		for i := 0; i < count; i++ {
			target := users[f.rng.Intn(len(users))]
			if err := f.Follow(follower.ID, target.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func createEngagement(f *Factory, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		likeCount := f.rng.Intn(len(users))
		for i := 0; i < likeCount; i++ {
			if err := f.Like(users[f.rng.Intn(len(users))].ID, post.ID); err != nil {
				return err
			}
		}
		commentCount := f.rng.Intn(4)
		for i := 0; i < commentCount; i++ {
			if _, err := f.Comment(users[f.rng.Intn(len(users))].ID, post.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func createConversations(f *Factory, users []*models.User) error {
	// Direct conversations are unique per pair; track what exists already.
	seen := map[[2]uint]bool{}
	pairKey := func(a, b uint) [2]uint {
		if a > b {
			a, b = b, a
		}
		return [2]uint{a, b}
	}

	// Fixed accounts always have a conversation with history.
	if _, err := f.Conversation(users[0].ID, users[1].ID, 12); err != nil {
		return err
	}
	seen[pairKey(users[0].ID, users[1].ID)] = true

	pairs := len(users) / 2
	for i := 0; i < pairs; i++ {
		a := users[f.rng.Intn(len(users))]
		b := users[f.rng.Intn(len(users))]
		if a.ID == b.ID || seen[pairKey(a.ID, b.ID)] {
			continue
		}
		seen[pairKey(a.ID, b.ID)] = true
		if _, err := f.Conversation(a.ID, b.ID, f.rng.Intn(8)+1); err != nil {
			return err
		}
	}
	return nil
}
