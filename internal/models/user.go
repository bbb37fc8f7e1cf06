// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole defines the access level of a user account.
type UserRole string

const (
	// RoleUser is the default role for new accounts.
	RoleUser UserRole = "user"
	// RoleAdmin grants access to the moderation console.
	RoleAdmin UserRole = "admin"
)

// UserStatus defines account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents a FoodBridge account holder.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:120;not null" json:"name"`
	Email        string         `gorm:"unique;not null" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	Status       UserStatus     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	AvatarURL    string         `json:"avatar_url"`
	AccountType  string         `gorm:"size:40;default:'individual'" json:"account_type"`
	Organization string         `gorm:"size:120" json:"organization"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Listings     []FoodListing  `gorm:"foreignKey:UserID" json:"listings,omitempty"`
	Stats        *UserStats     `gorm:"foreignKey:UserID" json:"stats,omitempty"`
	Badges       []UserBadge    `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the subset of user fields embedded into relational reads
// (listing donor, trade parties, post authors).
type PublicProfile struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatar_url"`
	Organization string `json:"organization,omitempty"`
}

// Public returns the embeddable profile view of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		Organization: u.Organization,
	}
}

// UserStats aggregates per-user contribution counters.
type UserStats struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalDonations   int       `gorm:"not null;default:0" json:"total_donations"`
	TotalTrades      int       `gorm:"not null;default:0" json:"total_trades"`
	TotalFoodSaved   float64   `gorm:"not null;default:0" json:"total_food_saved"`
	TotalImpactScore int       `gorm:"not null;default:0" json:"total_impact_score"`
	LastUpdated      time.Time `json:"last_updated"`
}

// UserBadge is an earned achievement attached to a user profile.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Badge     string    `gorm:"size:60;not null" json:"badge"`
	AwardedAt time.Time `json:"awarded_at"`
}
