// Command seed populates a development database with fake users, posts,
// comments and likes.
package main

import (
	"flag"
	"log"

	"harbor/internal/config"
	"harbor/internal/database"
	"harbor/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "number of users to create")
	numPosts := flag.Int("posts", 200, "number of posts to create")
	clean := flag.Bool("clean", false, "truncate existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
