package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a top-level post.
//
// LikesCount and CommentsCount are persisted derived counters. They are only
// ever written through the counter repository's atomic Adjust/Resync
// statements; application code must never read-modify-write them.
type Post struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Body          string         `gorm:"type:text;not null" json:"body"`
	AuthorID      uint           `gorm:"not null;index" json:"author_id"`
	Author        User           `gorm:"foreignKey:AuthorID" json:"author"`
	LikesCount    int            `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int            `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
