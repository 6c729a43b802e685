package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"harbor/internal/models"
	"harbor/internal/observability"
	"harbor/internal/repository"
)

// mentionPattern matches @handle tokens. Handles are 2-30 word characters;
// matching is effectively case-insensitive because Extract lowercases.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]{2,30})`)

// MentionService manages mention rows tied to the content lifecycle: created
// with content, wholly replaced on edit, removed on delete.
type MentionService struct {
	mentionRepo   repository.MentionRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

// NewMentionService creates a new MentionService.
func NewMentionService(
	mentionRepo repository.MentionRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
) *MentionService {
	return &MentionService{
		mentionRepo:   mentionRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// Extract scans text for candidate handles. Results are lowercased and
// de-duplicated, in order of first appearance.
func (s *MentionService) Extract(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		handle := strings.ToLower(m[1])
		if _, ok := seen[handle]; ok {
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}
	return handles
}

// Process resolves handles in text to users, creates mention rows for those
// that don't already exist for this content, and notifies each newly
// mentioned user. Self-mentions and unknown handles are skipped. Running
// Process twice over the same text is a no-op the second time.
func (s *MentionService) Process(ctx context.Context, ref models.ContentRef, text string, authorID uint) error {
	handles := s.Extract(text)
	if len(handles) == 0 {
		return nil
	}

	users, err := s.userRepo.GetByUsernames(ctx, handles)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	existingIDs, err := s.mentionRepo.ExistingUserIDs(ctx, ref)
	if err != nil {
		return err
	}
	existing := make(map[uint]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	mentions := make([]*models.Mention, 0, len(users))
	for _, user := range users {
		if user.ID == authorID {
			continue
		}
		if _, ok := existing[user.ID]; ok {
			continue
		}
		mentions = append(mentions, &models.Mention{
			UserID:        user.ID,
			MentionedByID: authorID,
			ContentType:   ref.Type,
			ContentID:     ref.ID,
		})
	}

	created, err := s.mentionRepo.CreateBatch(ctx, mentions)
	if err != nil {
		return err
	}

	for _, m := range created {
		if err := s.notifications.Create(ctx, CreateNotificationInput{
			Type:        models.NotificationMention,
			RecipientID: m.UserID,
			ActorID:     authorID,
			TargetType:  ref.Type,
			TargetID:    ref.ID,
		}); err != nil {
			observability.With(ctx).Warn("mention notification failed",
				slog.Uint64("user_id", uint64(m.UserID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// OnEdit replaces the content's mentions with those of the new text, so they
// always reflect the current revision and never a stale prior one.
func (s *MentionService) OnEdit(ctx context.Context, ref models.ContentRef, newText string, authorID uint) error {
	if _, err := s.mentionRepo.DeleteByContent(ctx, ref); err != nil {
		return err
	}
	return s.Process(ctx, ref, newText, authorID)
}

// OnDelete removes all mention rows for the content.
func (s *MentionService) OnDelete(ctx context.Context, ref models.ContentRef) error {
	_, err := s.mentionRepo.DeleteByContent(ctx, ref)
	return err
}
