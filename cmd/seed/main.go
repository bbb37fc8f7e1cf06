// Command main runs the database seeder for FoodBridge.
package main

import (
	"flag"
	"log"

	"foodbridge/internal/config"
	"foodbridge/internal/database"
	"foodbridge/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numListings := flag.Int("listings", 80, "Number of food listings to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d listings, clean=%v", *numUsers, *numListings, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	listings, err := s.SeedListings(users, *numListings)
	if err != nil {
		log.Fatalf("Listing seeding failed: %v", err)
	}
	if err := s.SeedActivity(users, listings); err != nil {
		log.Fatalf("Activity seeding failed: %v", err)
	}

	log.Println("All done. Every seeded account uses the password: password123")
}
