package service

import (
	"context"
	"log/slog"

	"harbor/internal/events"
	"harbor/internal/models"
	"harbor/internal/observability"
	"harbor/internal/repository"
)

// LikeService is the race-safe like toggle engine.
//
// Toggle never checks existence before mutating. It attempts an atomic delete
// first; if nothing was deleted it attempts a conflict-tolerant insert. The
// check-then-act window is gone entirely, so no locking is needed even under
// concurrent toggles for the same (user, content) pair.
type LikeService struct {
	likeRepo      repository.LikeRepository
	counterRepo   repository.CounterRepository
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	notifications *NotificationService
	bus           *events.Bus
}

// ToggleResult reports the state after a toggle call.
type ToggleResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// NewLikeService creates a new LikeService.
func NewLikeService(
	likeRepo repository.LikeRepository,
	counterRepo repository.CounterRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notifications *NotificationService,
	bus *events.Bus,
) *LikeService {
	return &LikeService{
		likeRepo:      likeRepo,
		counterRepo:   counterRepo,
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		notifications: notifications,
		bus:           bus,
	}
}

// Toggle flips the like state of content for a user and keeps the derived
// counter in step. Liking soft-deleted or missing content fails as NotFound
// with no state change.
func (s *LikeService) Toggle(ctx context.Context, ref models.ContentRef, userID uint) (*ToggleResult, error) {
	if !ref.Type.Valid() {
		return nil, models.NewValidationError("unknown content type")
	}

	ownerID, err := s.contentOwner(ctx, ref)
	if err != nil {
		return nil, err
	}

	deleted, err := s.likeRepo.Delete(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	if deleted {
		// Toggle off.
		if err := s.counterRepo.Adjust(ctx, ref, repository.CounterLikes, -1); err != nil {
			return nil, err
		}
		count, err := s.counterRepo.Value(ctx, ref, repository.CounterLikes)
		if err != nil {
			return nil, err
		}
		s.bus.Publish(events.ContentUnliked(string(ref.Type), ref.ID, count, userID))
		return &ToggleResult{Liked: false, LikesCount: count}, nil
	}

	inserted, err := s.likeRepo.Insert(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// A concurrent request for the same user inserted first. The like is
		// already on; do not double-increment and do not re-notify.
		count, err := s.counterRepo.Value(ctx, ref, repository.CounterLikes)
		if err != nil {
			return nil, err
		}
		return &ToggleResult{Liked: true, LikesCount: count}, nil
	}

	if err := s.counterRepo.Adjust(ctx, ref, repository.CounterLikes, 1); err != nil {
		return nil, err
	}
	count, err := s.counterRepo.Value(ctx, ref, repository.CounterLikes)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.ContentLiked(string(ref.Type), ref.ID, count, userID))

	if ownerID != userID {
		if err := s.notifications.Create(ctx, CreateNotificationInput{
			Type:        models.NotificationLike,
			RecipientID: ownerID,
			ActorID:     userID,
			TargetType:  ref.Type,
			TargetID:    ref.ID,
		}); err != nil {
			// The like itself succeeded; a failed notification must not
			// roll it back.
			observability.With(ctx).Warn("like notification failed",
				slog.String("content", ref.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return &ToggleResult{Liked: true, LikesCount: count}, nil
}

// Liked reports whether the user currently likes the content. Read-only;
// pairs with Toggle for building per-viewer responses.
func (s *LikeService) Liked(ctx context.Context, ref models.ContentRef, userID uint) (bool, error) {
	if !ref.Type.Valid() {
		return false, models.NewValidationError("unknown content type")
	}
	return s.likeRepo.Exists(ctx, userID, ref)
}

// contentOwner loads the active content item and returns its author.
// Soft-deleted rows are invisible here, which is what makes liking deleted
// content a NotFound.
func (s *LikeService) contentOwner(ctx context.Context, ref models.ContentRef) (uint, error) {
	switch ref.Type {
	case models.ContentTypePost:
		post, err := s.postRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return 0, translateNotFound(err, "Post", ref.ID)
		}
		return post.AuthorID, nil
	default:
		comment, err := s.commentRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return 0, translateNotFound(err, "Comment", ref.ID)
		}
		return comment.AuthorID, nil
	}
}
