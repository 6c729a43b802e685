package service

import (
	"context"
	"log/slog"

	"harbor/internal/events"
	"harbor/internal/models"
	"harbor/internal/observability"
	"harbor/internal/repository"
)

const maxPostLen = 40000

// PostService manages the post lifecycle and the content-edit entry point
// shared by posts and comments.
type PostService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	mentions      *MentionService
	notifications *NotificationService
	bus           *events.Bus
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

// CreatePostInput describes a new post.
type CreatePostInput struct {
	AuthorID uint
	Body     string
}

// EditContentInput describes an edit to a post or comment body.
type EditContentInput struct {
	ActorID uint
	Ref     models.ContentRef
	Body    string
}

// NewPostService creates a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	mentions *MentionService,
	notifications *NotificationService,
	bus *events.Bus,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		mentions:      mentions,
		notifications: notifications,
		bus:           bus,
		isAdmin:       isAdmin,
	}
}

// CreatePost creates a post, processes its mentions, and announces it to all
// active users.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxPostLen {
		return nil, models.NewValidationError("Post too long (max 40000 characters)")
	}

	post := &models.Post{Body: in.Body, AuthorID: in.AuthorID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.mentions.Process(ctx, models.PostRef(post.ID), in.Body, in.AuthorID); err != nil {
		observability.With(ctx).Warn("post mention processing failed",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	}

	if err := s.notifications.AnnouncePost(ctx, post.ID, in.AuthorID); err != nil {
		observability.With(ctx).Warn("post announcement failed",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	}

	s.bus.Publish(events.Event{
		Type: events.TypePostCreated,
		Payload: map[string]interface{}{
			"post_id":   post.ID,
			"author_id": post.AuthorID,
		},
	})

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns a single active post.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "Post", id)
	}
	return post, nil
}

// ListPosts returns a page of posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.postRepo.List(ctx, limit, offset)
}

// EditContent replaces a post's or comment's body and re-syncs its mentions
// against the new text. Only the author may edit.
func (s *PostService) EditContent(ctx context.Context, in EditContentInput) error {
	if in.Body == "" {
		return models.NewValidationError("Body is required")
	}

	switch in.Ref.Type {
	case models.ContentTypePost:
		post, err := s.postRepo.GetByID(ctx, in.Ref.ID)
		if err != nil {
			return translateNotFound(err, "Post", in.Ref.ID)
		}
		if post.AuthorID != in.ActorID {
			return models.NewUnauthorizedError("You can only edit your own posts")
		}
		post.Body = in.Body
		if err := s.postRepo.Update(ctx, post); err != nil {
			return err
		}
	case models.ContentTypeComment:
		comment, err := s.commentRepo.GetByID(ctx, in.Ref.ID)
		if err != nil {
			return translateNotFound(err, "Comment", in.Ref.ID)
		}
		if comment.AuthorID != in.ActorID {
			return models.NewUnauthorizedError("You can only edit your own comments")
		}
		comment.Body = in.Body
		if err := s.commentRepo.Update(ctx, comment); err != nil {
			return err
		}
	default:
		return models.NewValidationError("unknown content type")
	}

	return s.mentions.OnEdit(ctx, in.Ref, in.Body, in.ActorID)
}

// DeletePost soft-deletes a post (owner or admin) and clears its mentions.
func (s *PostService) DeletePost(ctx context.Context, postID, actorID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return translateNotFound(err, "Post", postID)
	}

	if post.AuthorID != actorID {
		admin := false
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, actorID)
			if err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
	}

	if _, err := s.postRepo.SoftDelete(ctx, postID); err != nil {
		return err
	}
	return s.mentions.OnDelete(ctx, models.PostRef(postID))
}
