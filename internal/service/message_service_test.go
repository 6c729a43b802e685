package service

import (
	"context"
	"testing"

	"harbor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMessageService(t *testing.T, messageRepo *messageRepoStub, userRepo *userRepoStub, notifRepo *notifRepoStub) *MessageService {
	t.Helper()
	return NewMessageService(messageRepo, userRepo, newTestNotifications(t, notifRepo, userRepo))
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	t.Run("persists the message and notifies the recipient", func(t *testing.T) {
		t.Parallel()

		messageRepo := noopMessageRepo()
		messageRepo.createFn = func(_ context.Context, m *models.Message) error {
			m.ID = 21
			return nil
		}

		notifRepo := noopNotifRepo()
		var notified *models.Notification
		notifRepo.createFn = func(_ context.Context, n *models.Notification) error {
			notified = n
			return nil
		}

		svc := newMessageService(t, messageRepo, noopUserRepo(), notifRepo)

		msg, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, RecipientID: 2, Body: "hello"})
		require.NoError(t, err)
		assert.Equal(t, uint(21), msg.ID)

		require.NotNil(t, notified)
		assert.Equal(t, models.NotificationDirectMessage, notified.Type)
		assert.Equal(t, uint(2), notified.RecipientID)
		assert.Equal(t, uint(1), notified.ActorID)
		assert.Equal(t, models.ContentTypeMessage, notified.TargetType)
		assert.Equal(t, uint(21), notified.TargetID)
	})

	t.Run("empty body is a validation error", func(t *testing.T) {
		t.Parallel()

		svc := newMessageService(t, noopMessageRepo(), noopUserRepo(), noopNotifRepo())
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, RecipientID: 2})
		assertValidationError(t, err)
	})

	t.Run("oversized body is a validation error", func(t *testing.T) {
		t.Parallel()

		body := make([]byte, maxMessageLen+1)
		for i := range body {
			body[i] = 'a'
		}

		svc := newMessageService(t, noopMessageRepo(), noopUserRepo(), noopNotifRepo())
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, RecipientID: 2, Body: string(body)})
		assertValidationError(t, err)
	})

	t.Run("messaging yourself is a validation error", func(t *testing.T) {
		t.Parallel()

		svc := newMessageService(t, noopMessageRepo(), noopUserRepo(), noopNotifRepo())
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, RecipientID: 1, Body: "hi me"})
		assertValidationError(t, err)
	})

	t.Run("unknown recipient is a not found", func(t *testing.T) {
		t.Parallel()

		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		}

		svc := newMessageService(t, noopMessageRepo(), userRepo, noopNotifRepo())
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, RecipientID: 404, Body: "hello?"})
		assertNotFoundError(t, err)
	})
}

func TestListConversation(t *testing.T) {
	t.Parallel()

	messageRepo := noopMessageRepo()
	var gotLimit int
	messageRepo.listConversationFn = func(_ context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error) {
		assert.Equal(t, uint(1), userA)
		assert.Equal(t, uint(2), userB)
		gotLimit = limit
		return nil, nil
	}

	svc := newMessageService(t, messageRepo, noopUserRepo(), noopNotifRepo())

	_, err := svc.ListConversation(context.Background(), 1, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit, "limit falls back to the default page size")
}
