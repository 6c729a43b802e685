package models

import "time"

// Like records that a user likes a piece of content. Existence of the row is
// the sole state; rows are hard-deleted on unlike. The (user, content type,
// content id) triple is unique.
type Like struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_like_user_content" json:"user_id"`
	ContentType ContentType `gorm:"not null;uniqueIndex:idx_like_user_content" json:"content_type"`
	ContentID   uint        `gorm:"not null;uniqueIndex:idx_like_user_content" json:"content_id"`
	CreatedAt   time.Time   `json:"created_at"`
}
