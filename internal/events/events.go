// Package events carries domain events from the business layer to whatever
// subscribers own the delivery transports. Services publish here and never
// import the transport packages, which keeps the dependency graph acyclic.
package events

// Event type constants prevent typos in event names.
const (
	TypeContentLiked        = "content_liked"
	TypeContentUnliked      = "content_unliked"
	TypeCommentDeleted      = "comment_deleted"
	TypeNotificationCreated = "notification_created"
	TypePostCreated         = "post_created"
)

// Event is a single domain event. RecipientID selects the user channel the
// event is delivered on; zero means broadcast to everyone.
type Event struct {
	Type        string
	RecipientID uint
	Payload     map[string]interface{}
}

// ContentLiked builds the event emitted when a like lands on content.
func ContentLiked(contentType string, contentID uint, newCount int, actorID uint) Event {
	return Event{
		Type: TypeContentLiked,
		Payload: map[string]interface{}{
			"content_type": contentType,
			"content_id":   contentID,
			"likes_count":  newCount,
			"actor_id":     actorID,
		},
	}
}

// ContentUnliked builds the event emitted when a like is removed.
func ContentUnliked(contentType string, contentID uint, newCount int, actorID uint) Event {
	return Event{
		Type: TypeContentUnliked,
		Payload: map[string]interface{}{
			"content_type": contentType,
			"content_id":   contentID,
			"likes_count":  newCount,
			"actor_id":     actorID,
		},
	}
}

// CommentDeleted builds the per-node event emitted by a cascade. A subtree
// deletion emits one of these for every node it transitions, so subscribers
// can update precisely rather than guessing at descendants.
func CommentDeleted(postID, commentID uint) Event {
	return Event{
		Type: TypeCommentDeleted,
		Payload: map[string]interface{}{
			"post_id":    postID,
			"comment_id": commentID,
		},
	}
}

// NotificationCreated builds the event that fans a persisted notification out
// to its recipient's real-time channel.
func NotificationCreated(recipientID uint, payload map[string]interface{}) Event {
	return Event{
		Type:        TypeNotificationCreated,
		RecipientID: recipientID,
		Payload:     payload,
	}
}
