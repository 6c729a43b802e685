package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Suppression target types. Unlike likes and mentions, suppressions can also
// point at direct messages, so the type is a plain string column.
const (
	SuppressionTargetMessage = "message"
	SuppressionTargetPost    = "post"
	SuppressionTargetComment = "comment"
)

// Suppression marks content a user has hidden from their own view
// (e.g. a muted message or post). Purging a user clears suppressions the
// user owns and suppressions pointing at the user's content.
type Suppression struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_suppression_user_content" json:"user_id"`
	ContentType string    `gorm:"not null;uniqueIndex:idx_suppression_user_content" json:"content_type"`
	ContentID   uint      `gorm:"not null;uniqueIndex:idx_suppression_user_content" json:"content_id"`
	CreatedAt   time.Time `json:"created_at"`
}
