package models

import (
	"time"

	"gorm.io/gorm"
)

// ListingStatus defines lifecycle states for food listings.
type ListingStatus string

const (
	// ListingStatusPending indicates the listing is awaiting admin review.
	ListingStatusPending ListingStatus = "pending"
	// ListingStatusActive indicates the listing is visible in public feeds.
	ListingStatusActive ListingStatus = "active"
	// ListingStatusApproved indicates the listing passed admin review.
	ListingStatusApproved ListingStatus = "approved"
	// ListingStatusDeclined indicates the listing failed admin review.
	ListingStatusDeclined ListingStatus = "declined"
)

// ListingType distinguishes donations from trade offers.
type ListingType string

const (
	ListingTypeDonation ListingType = "donation"
	ListingTypeTrade    ListingType = "trade"
)

// FoodListing is a donor-submitted food item awaiting or holding approval status.
type FoodListing struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:160;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `json:"image_url"`
	Quantity    float64        `gorm:"not null;default:1" json:"quantity"`
	Unit        string         `gorm:"size:30" json:"unit"`
	Category    string         `gorm:"size:60;index" json:"category"`
	ListingType ListingType    `gorm:"type:varchar(20);not null;default:'donation';index" json:"listing_type"`
	Location    string         `gorm:"size:200" json:"location"`
	Status      ListingStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Donor       *User          `gorm:"foreignKey:UserID" json:"donor,omitempty"`
	Claims      []FoodClaim    `gorm:"foreignKey:FoodID" json:"claims,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ClaimStatus defines lifecycle states for food claims.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusDeclined ClaimStatus = "declined"
)

// FoodClaim is a request by a third party to receive a specific listing.
type FoodClaim struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	FoodID         uint         `gorm:"not null;index" json:"food_id"`
	Food           *FoodListing `gorm:"foreignKey:FoodID" json:"food,omitempty"`
	RequesterID    *uint        `gorm:"index" json:"requester_id"`
	RequesterName  string       `gorm:"size:120;not null" json:"requester_name"`
	RequesterEmail string       `gorm:"size:160;not null" json:"requester_email"`
	RequesterPhone string       `gorm:"size:40" json:"requester_phone"`
	MembersCount   int          `gorm:"not null;default:1" json:"members_count"`
	Status         ClaimStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PickupAddress  string       `gorm:"size:240" json:"pickup_address"`
	PickupTime     *time.Time   `json:"pickup_time"`
	DropoffAddress string       `gorm:"size:240" json:"dropoff_address"`
	Notes          string       `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
