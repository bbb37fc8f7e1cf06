package models

import "time"

// Notification types emitted by system events.
const (
	NotificationClaimApproved      = "claim_approved"
	NotificationClaimDeclined      = "claim_declined"
	NotificationSubmissionDeclined = "submission_declined"
	NotificationTradeUpdate        = "trade_update"
)

// Notification is a system-generated message addressed to a user. Rows are
// only ever created and flipped to read=true; they are never deleted.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:160;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:40;not null;index" json:"type"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	Data      string    `gorm:"type:jsonb" json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
