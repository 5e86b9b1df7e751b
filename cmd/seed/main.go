// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"chelagram/internal/config"
	"chelagram/internal/database"
	"chelagram/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Approximate posts per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, ~%d posts each, clean=%v\n", *numUsers, *postsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:     *numUsers,
		PostsPerUser: *postsPerUser,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Log in as chela or gracie with the password: password123")
}
