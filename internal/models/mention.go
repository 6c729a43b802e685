package models

import "time"

// Mention records that a user was @-mentioned in a piece of content.
// Rows are wholly replaced when the content is edited and removed when the
// content is deleted, so they always reflect the current revision.
type Mention struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;uniqueIndex:idx_mention_user_content" json:"user_id"`
	MentionedByID uint        `gorm:"not null" json:"mentioned_by_id"`
	ContentType   ContentType `gorm:"not null;uniqueIndex:idx_mention_user_content" json:"content_type"`
	ContentID     uint        `gorm:"not null;uniqueIndex:idx_mention_user_content" json:"content_id"`
	CreatedAt     time.Time   `json:"created_at"`
}
