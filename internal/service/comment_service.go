package service

import (
	"context"
	"log/slog"

	"harbor/internal/events"
	"harbor/internal/models"
	"harbor/internal/observability"
	"harbor/internal/repository"
)

// maxCommentDepth caps the comment tree at post -> comment -> reply.
const maxCommentDepth = 2

const maxCommentLen = 10000

// CommentService creates comments and runs the subtree cascade engine.
type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	counterRepo   repository.CounterRepository
	mentions      *MentionService
	notifications *NotificationService
	bus           *events.Bus
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

// CreateCommentInput describes a new comment or reply.
type CreateCommentInput struct {
	AuthorID uint
	PostID   uint
	ParentID *uint
	Body     string
}

// DeleteCommentInput identifies the comment subtree to delete and the actor.
type DeleteCommentInput struct {
	ActorID   uint
	CommentID uint
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	counterRepo repository.CounterRepository,
	mentions *MentionService,
	notifications *NotificationService,
	bus *events.Bus,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		counterRepo:   counterRepo,
		mentions:      mentions,
		notifications: notifications,
		bus:           bus,
		isAdmin:       isAdmin,
	}
}

// CreateComment creates a comment or reply, bumps the post's comment counter,
// processes mentions, and notifies the parent author. Replying to a reply
// violates the depth cap and fails as InvalidState.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, translateNotFound(err, "Post", in.PostID)
	}

	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	notifyUserID := post.AuthorID
	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, translateNotFound(err, "Comment", *in.ParentID)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			return nil, models.NewInvalidStateError("Replies cannot be nested deeper than one level")
		}
		notifyUserID = parent.AuthorID
	}

	comment := &models.Comment{
		Body:     in.Body,
		PostID:   in.PostID,
		ParentID: in.ParentID,
		AuthorID: in.AuthorID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.counterRepo.Adjust(ctx, models.PostRef(in.PostID), repository.CounterComments, 1); err != nil {
		return nil, err
	}

	if err := s.mentions.Process(ctx, models.CommentRef(comment.ID), in.Body, in.AuthorID); err != nil {
		observability.With(ctx).Warn("comment mention processing failed",
			slog.Uint64("comment_id", uint64(comment.ID)),
			slog.String("error", err.Error()),
		)
	}

	if notifyUserID != in.AuthorID {
		if err := s.notifications.Create(ctx, CreateNotificationInput{
			Type:        models.NotificationComment,
			RecipientID: notifyUserID,
			ActorID:     in.AuthorID,
			TargetType:  models.ContentTypeComment,
			TargetID:    comment.ID,
		}); err != nil {
			observability.With(ctx).Warn("comment notification failed",
				slog.Uint64("comment_id", uint64(comment.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, translateNotFound(err, "Post", postID)
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteSubtree soft-deletes a comment and every still-active descendant,
// children first. For each node actually transitioned it decrements the
// post's comment counter by one, clears the node's mentions, and emits one
// comment-deleted event, so downstream consumers update per node rather than
// guessing at descendants. Returns the number of nodes transitioned.
//
// Children-first order makes an interrupted run safe to resume: nodes already
// deleted contribute zero on retry and are skipped.
func (s *CommentService) DeleteSubtree(ctx context.Context, in DeleteCommentInput) (int, error) {
	root, err := s.commentRepo.GetByIDAny(ctx, in.CommentID)
	if err != nil {
		return 0, translateNotFound(err, "Comment", in.CommentID)
	}

	if root.AuthorID != in.ActorID {
		admin := false
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, in.ActorID)
			if err != nil {
				return 0, err
			}
		}
		if !admin {
			return 0, models.NewUnauthorizedError("You can only delete your own comments")
		}
	}

	// Worklist traversal instead of recursion so a deeper tree stays
	// stack-safe if the depth cap ever moves.
	order := []uint{root.ID}
	frontier := []uint{root.ID}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		children, err := s.commentRepo.ActiveChildIDs(ctx, id)
		if err != nil {
			return 0, err
		}
		order = append(order, children...)
		frontier = append(frontier, children...)
	}

	transitioned := 0
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		did, err := s.commentRepo.SoftDelete(ctx, id)
		if err != nil {
			return transitioned, err
		}
		if !did {
			continue
		}
		transitioned++
		observability.CascadeNodesDeleted.Inc()

		if err := s.counterRepo.Adjust(ctx, models.PostRef(root.PostID), repository.CounterComments, -1); err != nil {
			return transitioned, err
		}
		if err := s.mentions.OnDelete(ctx, models.CommentRef(id)); err != nil {
			observability.With(ctx).Warn("mention cleanup failed",
				slog.Uint64("comment_id", uint64(id)),
				slog.String("error", err.Error()),
			)
		}
		s.bus.Publish(events.CommentDeleted(root.PostID, id))
	}

	observability.With(ctx).Info("comment subtree deleted",
		slog.Uint64("comment_id", uint64(root.ID)),
		slog.Uint64("post_id", uint64(root.PostID)),
		slog.Int("nodes", transitioned),
	)
	return transitioned, nil
}
