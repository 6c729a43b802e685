package models

import "time"

// NotificationType enumerates the actions that produce notifications.
type NotificationType string

const (
	NotificationLike          NotificationType = "LIKE"
	NotificationComment       NotificationType = "COMMENT"
	NotificationMention       NotificationType = "MENTION"
	NotificationDirectMessage NotificationType = "DIRECT_MESSAGE"
	NotificationNewPost       NotificationType = "NEW_POST"
)

// Notification is the persisted record of a user-facing notification. The row
// is the source of truth; real-time delivery is best-effort on top of it.
// The composite index backs the dedup-window lookup.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notif_dedup,priority:1" json:"recipient_id"`
	ActorID     uint             `gorm:"not null;index:idx_notif_dedup,priority:2" json:"actor_id"`
	Actor       User             `gorm:"foreignKey:ActorID" json:"actor"`
	Type        NotificationType `gorm:"not null;index:idx_notif_dedup,priority:3" json:"type"`
	TargetType  ContentType      `gorm:"index:idx_notif_dedup,priority:4" json:"target_type"`
	TargetID    uint             `gorm:"index:idx_notif_dedup,priority:5" json:"target_id"`
	Read        bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}
