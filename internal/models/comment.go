package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post, or a reply to a comment.
// ParentID is nil for top-level comments. Depth is capped at two levels
// (post -> comment -> reply); the service layer rejects replies to replies.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	PostID     uint           `gorm:"not null;index" json:"post_id"`
	ParentID   *uint          `gorm:"index" json:"parent_id,omitempty"`
	AuthorID   uint           `gorm:"not null;index" json:"author_id"`
	Author     User           `gorm:"foreignKey:AuthorID" json:"author"`
	LikesCount int            `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
