package models

import "time"

// DistributionEvent is a scheduled community food distribution.
type DistributionEvent struct {
	ID                uint                       `gorm:"primaryKey" json:"id"`
	Title             string                     `gorm:"size:200;not null" json:"title"`
	Description       string                     `gorm:"type:text" json:"description"`
	Location          string                     `gorm:"size:240" json:"location"`
	EventDate         time.Time                  `gorm:"not null;index" json:"event_date"`
	Capacity          int                        `gorm:"not null;default:0" json:"capacity"`
	RegistrationCount int                        `gorm:"not null;default:0" json:"registration_count"`
	Registrations     []DistributionRegistration `gorm:"foreignKey:EventID" json:"registrations,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// DistributionRegistration records a user's sign-up for an event.
type DistributionRegistration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_event_registration" json:"event_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_event_registration" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
