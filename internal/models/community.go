package models

import (
	"time"

	"gorm.io/gorm"
)

// CommunityPost is a user-authored discussion post.
type CommunityPost struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	Title      string             `gorm:"size:200;not null" json:"title"`
	Content    string             `gorm:"type:text;not null" json:"content"`
	Category   string             `gorm:"size:60;not null;default:'general';index" json:"category"`
	AuthorID   uint               `gorm:"not null;index" json:"author_id"`
	Author     *User              `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	LikesCount int                `gorm:"not null;default:0" json:"likes_count"`
	Comments   []CommunityComment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	DeletedAt  gorm.DeletedAt     `gorm:"index" json:"-"`
}

// CommunityComment is a reply to a community post.
type CommunityComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommunityPostLike joins users to community posts they liked.
type CommunityPostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_community_post_like" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_community_post_like" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
