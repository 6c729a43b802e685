package service

import (
	"context"
	"log/slog"
	"time"

	"harbor/internal/events"
	"harbor/internal/models"
	"harbor/internal/observability"
	"harbor/internal/repository"
)

// notificationDedupWindow is the span during which an equivalent notification
// (same recipient, actor, type, target) is suppressed. Absorbs
// like/unlike/like toggle spam.
const notificationDedupWindow = 5 * time.Minute

// NotificationService persists notifications and hands them to the event bus
// for asynchronous real-time delivery. Persistence is synchronous within the
// triggering operation; delivery happens strictly afterwards on the bus's
// dispatch goroutine, so a failed operation never leaves a phantom delivered
// event. The persisted row stays authoritative whether or not delivery lands.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	bus       *events.Bus
}

// CreateNotificationInput describes a single notification to create.
type CreateNotificationInput struct {
	Type        models.NotificationType
	RecipientID uint
	ActorID     uint
	TargetType  models.ContentType
	TargetID    uint
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	bus *events.Bus,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		bus:       bus,
	}
}

// Create persists a notification unless it is a self-notification or a
// duplicate within the dedup window, then publishes a delivery event.
func (s *NotificationService) Create(ctx context.Context, in CreateNotificationInput) error {
	if in.RecipientID == in.ActorID {
		return nil
	}

	since := time.Now().Add(-notificationDedupWindow)
	exists, err := s.notifRepo.ExistsSince(ctx, in.RecipientID, in.ActorID, in.Type, in.TargetType, in.TargetID, since)
	if err != nil {
		return err
	}
	if exists {
		observability.NotificationsDeduped.WithLabelValues(string(in.Type)).Inc()
		return nil
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		ActorID:     in.ActorID,
		Type:        in.Type,
		TargetType:  in.TargetType,
		TargetID:    in.TargetID,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationsCreated.WithLabelValues(string(in.Type)).Inc()

	s.bus.Publish(events.NotificationCreated(n.RecipientID, notificationPayload(n)))
	return nil
}

// AnnouncePost fans a NEW_POST notification out to every active user except
// the author: all rows are built in memory, persisted in one batch, then one
// delivery event is emitted per recipient.
func (s *NotificationService) AnnouncePost(ctx context.Context, postID, authorID uint) error {
	recipientIDs, err := s.userRepo.ListActiveIDs(ctx, authorID)
	if err != nil {
		return err
	}
	if len(recipientIDs) == 0 {
		return nil
	}

	ns := make([]*models.Notification, 0, len(recipientIDs))
	for _, rid := range recipientIDs {
		ns = append(ns, &models.Notification{
			RecipientID: rid,
			ActorID:     authorID,
			Type:        models.NotificationNewPost,
			TargetType:  models.ContentTypePost,
			TargetID:    postID,
		})
	}
	if err := s.notifRepo.CreateBatch(ctx, ns); err != nil {
		return err
	}
	observability.NotificationsCreated.WithLabelValues(string(models.NotificationNewPost)).Add(float64(len(ns)))

	for _, n := range ns {
		s.bus.Publish(events.NotificationCreated(n.RecipientID, notificationPayload(n)))
	}
	observability.With(ctx).Info("post announced",
		slog.Uint64("post_id", uint64(postID)),
		slog.Int("recipients", len(ns)),
	)
	return nil
}

// List returns a page of the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifRepo.ListByRecipient(ctx, recipientID, limit, offset)
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, recipientID)
}

// MarkRead transitions a single notification to read. Read state is
// one-directional; there is no way back to unread.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	ok, err := s.notifRepo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", notificationID)
	}
	return nil
}

// MarkAllRead transitions all of the recipient's notifications to read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, recipientID)
}

// Delete removes a notification at the recipient's request.
func (s *NotificationService) Delete(ctx context.Context, recipientID, notificationID uint) error {
	ok, err := s.notifRepo.Delete(ctx, recipientID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", notificationID)
	}
	return nil
}

// CleanupOlderThan removes notifications older than the given age.
// Intended for a periodic maintenance job.
func (s *NotificationService) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	removed, err := s.notifRepo.DeleteOlderThan(ctx, time.Now().Add(-age))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		observability.With(ctx).Info("notification cleanup", slog.Int64("removed", removed))
	}
	return removed, nil
}

func notificationPayload(n *models.Notification) map[string]interface{} {
	return map[string]interface{}{
		"id":          n.ID,
		"type":        string(n.Type),
		"actor_id":    n.ActorID,
		"target_type": string(n.TargetType),
		"target_id":   n.TargetID,
		"read":        n.Read,
		"created_at":  n.CreatedAt,
	}
}
