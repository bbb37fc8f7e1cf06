// Package seed populates the database with development fixtures.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"foodbridge/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	firstNames = []string{
		"Amina", "Carlos", "Dana", "Elif", "Femi", "Grace", "Hiro", "Ines",
		"Jonas", "Keisha", "Lars", "Mireille", "Noor", "Omar", "Priya", "Quentin",
		"Rosa", "Samir", "Tove", "Uche", "Valentina", "Wes", "Ximena", "Yusuf", "Zofia",
	}
	lastNames = []string{
		"Adeyemi", "Bauer", "Costa", "Diallo", "Eriksen", "Fernandez", "Gruber",
		"Haddad", "Ivanova", "Jensen", "Kowalski", "Lindqvist", "Moreau", "Nakamura",
		"Okafor", "Petrov", "Quispe", "Rahman", "Silva", "Tanaka",
	}
	foodItems = []string{
		"Sourdough Loaves", "Crate of Apples", "Canned Tomatoes", "Rice Bags",
		"Day-old Pastries", "Garden Zucchini", "Surplus Potatoes", "Pasta Boxes",
		"Lentils", "Olive Oil", "Carrots", "Frozen Berries", "Oat Milk Cartons",
		"Homemade Jam", "Winter Squash", "Fresh Herbs",
	}
	categories = []string{"produce", "bakery", "pantry", "dairy", "frozen"}
	locations  = []string{
		"Riverside Market", "Oak Street Pantry", "Northside Community Center",
		"Harbor District", "Elm Park", "Downtown Co-op",
	}
)

// Seeder populates the database with realistic development data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder wraps a DB handle in a Seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll truncates every seeded table, children first.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []interface{}{
		&models.DistributionRegistration{}, &models.DistributionEvent{},
		&models.CommunityPostLike{}, &models.CommunityComment{}, &models.CommunityPost{},
		&models.PostLike{}, &models.Comment{}, &models.BlogPost{},
		&models.Notification{}, &models.BarterTrade{}, &models.Trade{},
		&models.FoodClaim{}, &models.FoodListing{},
		&models.UserBadge{}, &models.UserStats{}, &models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates n user accounts plus one admin. Every account uses the
// password "password123".
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	log.Printf("Seeding %d users...", n)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n+1)
	admin := models.User{
		Name:     "FoodBridge Admin",
		Email:    "admin@foodbridge.local",
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < n; i++ {
		first := firstNames[s.rng.Intn(len(firstNames))]
		last := lastNames[s.rng.Intn(len(lastNames))]
		user := models.User{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Password: string(hashed),
			Role:     models.RoleUser,
			Status:   models.UserStatusActive,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedListings creates n listings spread across the given users, most of
// them already approved into the public feed.
func (s *Seeder) SeedListings(users []models.User, n int) ([]models.FoodListing, error) {
	log.Printf("Seeding %d listings...", n)

	statuses := []models.ListingStatus{
		models.ListingStatusActive, models.ListingStatusActive,
		models.ListingStatusActive, models.ListingStatusPending,
	}

	listings := make([]models.FoodListing, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.rng.Intn(len(users))]
		listingType := models.ListingTypeDonation
		if s.rng.Intn(4) == 0 {
			listingType = models.ListingTypeTrade
		}
		listing := models.FoodListing{
			Title:       foodItems[s.rng.Intn(len(foodItems))],
			Description: "Surplus food looking for a new home.",
			Quantity:    float64(1 + s.rng.Intn(20)),
			Unit:        "kg",
			Category:    categories[s.rng.Intn(len(categories))],
			ListingType: listingType,
			Location:    locations[s.rng.Intn(len(locations))],
			Status:      statuses[s.rng.Intn(len(statuses))],
			UserID:      owner.ID,
		}
		if err := s.db.Create(&listing).Error; err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// SeedActivity layers claims, trades, and distribution events on top of the
// seeded users and listings.
func (s *Seeder) SeedActivity(users []models.User, listings []models.FoodListing) error {
	log.Println("Seeding claims, trades, and events...")

	for i := 0; i < len(listings)/3; i++ {
		listing := listings[s.rng.Intn(len(listings))]
		requester := users[s.rng.Intn(len(users))]
		claim := models.FoodClaim{
			FoodID:         listing.ID,
			RequesterID:    &requester.ID,
			RequesterName:  requester.Name,
			RequesterEmail: requester.Email,
			MembersCount:   1 + s.rng.Intn(5),
			Status:         models.ClaimStatusPending,
		}
		if err := s.db.Create(&claim).Error; err != nil {
			return err
		}
	}

	tradeables := make([]models.FoodListing, 0, len(listings))
	for _, l := range listings {
		if l.ListingType == models.ListingTypeTrade {
			tradeables = append(tradeables, l)
		}
	}
	for i := 0; i+1 < len(tradeables); i += 2 {
		a, b := tradeables[i], tradeables[i+1]
		if a.UserID == b.UserID {
			continue
		}
		trade := models.Trade{
			InitiatorID:        a.UserID,
			RecipientID:        b.UserID,
			OfferedListingID:   a.ID,
			RequestedListingID: b.ID,
			Status:             models.TradeStatusPending,
			Message:            "Interested in a swap?",
		}
		if err := s.db.Create(&trade).Error; err != nil {
			return err
		}
	}

	for i := 0; i < 3; i++ {
		event := models.DistributionEvent{
			Title:     fmt.Sprintf("Community Distribution #%d", i+1),
			Location:  locations[s.rng.Intn(len(locations))],
			EventDate: time.Now().AddDate(0, 0, 7*(i+1)),
			Capacity:  50,
		}
		if err := s.db.Create(&event).Error; err != nil {
			return err
		}
	}

	return nil
}
