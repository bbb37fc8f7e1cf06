package models

import "time"

// TradeStatus defines lifecycle states shared by trades and barter trades.
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusActive    TradeStatus = "active"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusDeclined  TradeStatus = "declined"
	TradeStatusCompleted TradeStatus = "completed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// Trade is a proposed exchange of two listings between two users.
type Trade struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	InitiatorID        uint         `gorm:"not null;index" json:"initiator_id"`
	Initiator          *User        `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
	RecipientID        uint         `gorm:"not null;index" json:"recipient_id"`
	Recipient          *User        `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	OfferedListingID   uint         `gorm:"not null" json:"offered_listing_id"`
	OfferedListing     *FoodListing `gorm:"foreignKey:OfferedListingID" json:"offered_listing,omitempty"`
	RequestedListingID uint         `gorm:"not null" json:"requested_listing_id"`
	RequestedListing   *FoodListing `gorm:"foreignKey:RequestedListingID" json:"requested_listing,omitempty"`
	Status             TradeStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Message            string       `gorm:"type:text" json:"message"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// BarterTrade is a one-sided barter offer: the initiator offers a listing and
// describes what they want in return. The schema carries no recipient.
type BarterTrade struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	InitiatorID      uint         `gorm:"not null;index" json:"initiator_id"`
	Initiator        *User        `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
	OfferedListingID uint         `gorm:"not null" json:"offered_listing_id"`
	OfferedListing   *FoodListing `gorm:"foreignKey:OfferedListingID" json:"offered_listing,omitempty"`
	RequestedItems   string       `gorm:"type:text" json:"requested_items"`
	TradeType        string       `gorm:"size:30;not null;default:'direct'" json:"trade_type"`
	Message          string       `gorm:"type:text" json:"message"`
	Analysis         string       `gorm:"type:text" json:"analysis"`
	Status           TradeStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
