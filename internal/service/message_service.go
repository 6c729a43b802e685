package service

import (
	"context"

	"harbor/internal/models"
	"harbor/internal/repository"
)

const maxMessageLen = 4000

// MessageService sends direct messages and raises the matching notification.
type MessageService struct {
	messageRepo   repository.MessageRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

// SendMessageInput describes a direct message.
type SendMessageInput struct {
	SenderID    uint
	RecipientID uint
	Body        string
}

// NewMessageService creates a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// Send persists a direct message and notifies the recipient.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 4000 characters)")
	}
	if in.SenderID == in.RecipientID {
		return nil, models.NewValidationError("Cannot message yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, in.RecipientID); err != nil {
		return nil, translateNotFound(err, "User", in.RecipientID)
	}

	msg := &models.Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Body:        in.Body,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	_ = s.notifications.Create(ctx, CreateNotificationInput{
		Type:        models.NotificationDirectMessage,
		RecipientID: in.RecipientID,
		ActorID:     in.SenderID,
		TargetType:  models.ContentTypeMessage,
		TargetID:    msg.ID,
	})

	return msg, nil
}

// ListConversation returns a page of the conversation between two users.
func (s *MessageService) ListConversation(ctx context.Context, userID, otherID uint, limit, offset int) ([]*models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messageRepo.ListConversation(ctx, userID, otherID, limit, offset)
}
