package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"harbor/internal/events"
	"harbor/internal/models"
	"harbor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Function-field stubs for every repository interface, so each test overrides
// only the calls it cares about.

type likeRepoStub struct {
	deleteFn func(context.Context, uint, models.ContentRef) (bool, error)
	insertFn func(context.Context, uint, models.ContentRef) (bool, error)
	existsFn func(context.Context, uint, models.ContentRef) (bool, error)
}

func (s *likeRepoStub) Delete(ctx context.Context, userID uint, ref models.ContentRef) (bool, error) {
	return s.deleteFn(ctx, userID, ref)
}
func (s *likeRepoStub) Insert(ctx context.Context, userID uint, ref models.ContentRef) (bool, error) {
	return s.insertFn(ctx, userID, ref)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID uint, ref models.ContentRef) (bool, error) {
	return s.existsFn(ctx, userID, ref)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		deleteFn: func(_ context.Context, _ uint, _ models.ContentRef) (bool, error) { return false, nil },
		insertFn: func(_ context.Context, _ uint, _ models.ContentRef) (bool, error) { return true, nil },
		existsFn: func(_ context.Context, _ uint, _ models.ContentRef) (bool, error) { return false, nil },
	}
}

type counterRepoStub struct {
	adjustFn func(context.Context, models.ContentRef, repository.Counter, int) error
	resyncFn func(context.Context, models.ContentRef, repository.Counter) error
	valueFn  func(context.Context, models.ContentRef, repository.Counter) (int, error)
}

func (s *counterRepoStub) Adjust(ctx context.Context, ref models.ContentRef, c repository.Counter, delta int) error {
	return s.adjustFn(ctx, ref, c, delta)
}
func (s *counterRepoStub) Resync(ctx context.Context, ref models.ContentRef, c repository.Counter) error {
	return s.resyncFn(ctx, ref, c)
}
func (s *counterRepoStub) Value(ctx context.Context, ref models.ContentRef, c repository.Counter) (int, error) {
	return s.valueFn(ctx, ref, c)
}

func noopCounterRepo() *counterRepoStub {
	return &counterRepoStub{
		adjustFn: func(_ context.Context, _ models.ContentRef, _ repository.Counter, _ int) error { return nil },
		resyncFn: func(_ context.Context, _ models.ContentRef, _ repository.Counter) error { return nil },
		valueFn:  func(_ context.Context, _ models.ContentRef, _ repository.Counter) (int, error) { return 0, nil },
	}
}

type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	getByAuthorFn func(context.Context, uint, int, int) ([]*models.Post, error)
	listFn        func(context.Context, int, int) ([]*models.Post, error)
	updateFn      func(context.Context, *models.Post) error
	softDeleteFn  func(context.Context, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SoftDelete(ctx context.Context, id uint) (bool, error) {
	return s.softDeleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		getByAuthorFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listFn:        func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		softDeleteFn:  func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

type commentRepoStub struct {
	createFn         func(context.Context, *models.Comment) error
	getByIDFn        func(context.Context, uint) (*models.Comment, error)
	getByIDAnyFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn     func(context.Context, uint) ([]*models.Comment, error)
	activeChildIDsFn func(context.Context, uint) ([]uint, error)
	updateFn         func(context.Context, *models.Comment) error
	softDeleteFn     func(context.Context, uint) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetByIDAny(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDAnyFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) ActiveChildIDs(ctx context.Context, parentID uint) ([]uint, error) {
	return s.activeChildIDsFn(ctx, parentID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, id uint) (bool, error) {
	return s.softDeleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 1, PostID: 1}, nil
		},
		getByIDAnyFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 1, PostID: 1}, nil
		},
		listByPostFn:     func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		activeChildIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Comment) error { return nil },
		softDeleteFn:     func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	getByUsernamesFn func(context.Context, []string) ([]*models.User, error)
	listActiveIDsFn  func(context.Context, uint) ([]uint, error)
	listFn           func(context.Context, int, int) ([]*models.User, error)
	updateFn         func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByUsernames(ctx context.Context, usernames []string) ([]*models.User, error) {
	return s.getByUsernamesFn(ctx, usernames)
}
func (s *userRepoStub) ListActiveIDs(ctx context.Context, excludeID uint) ([]uint, error) {
	return s.listActiveIDsFn(ctx, excludeID)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByUsernamesFn: func(_ context.Context, _ []string) ([]*models.User, error) { return nil, nil },
		listActiveIDsFn:  func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		listFn:           func(_ context.Context, _, _ int) ([]*models.User, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.User) error { return nil },
	}
}

type notifRepoStub struct {
	createFn          func(context.Context, *models.Notification) error
	createBatchFn     func(context.Context, []*models.Notification) error
	existsSinceFn     func(context.Context, uint, uint, models.NotificationType, models.ContentType, uint, time.Time) (bool, error)
	listByRecipientFn func(context.Context, uint, int, int) ([]*models.Notification, error)
	unreadCountFn     func(context.Context, uint) (int64, error)
	markReadFn        func(context.Context, uint, uint) (bool, error)
	markAllReadFn     func(context.Context, uint) (int64, error)
	deleteFn          func(context.Context, uint, uint) (bool, error)
	deleteOlderFn     func(context.Context, time.Time) (int64, error)
}

func (s *notifRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notifRepoStub) CreateBatch(ctx context.Context, ns []*models.Notification) error {
	return s.createBatchFn(ctx, ns)
}
func (s *notifRepoStub) ExistsSince(ctx context.Context, recipientID, actorID uint, typ models.NotificationType, targetType models.ContentType, targetID uint, since time.Time) (bool, error) {
	return s.existsSinceFn(ctx, recipientID, actorID, typ, targetType, targetID, since)
}
func (s *notifRepoStub) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, limit, offset)
}
func (s *notifRepoStub) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.unreadCountFn(ctx, recipientID)
}
func (s *notifRepoStub) MarkRead(ctx context.Context, recipientID, notificationID uint) (bool, error) {
	return s.markReadFn(ctx, recipientID, notificationID)
}
func (s *notifRepoStub) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notifRepoStub) Delete(ctx context.Context, recipientID, notificationID uint) (bool, error) {
	return s.deleteFn(ctx, recipientID, notificationID)
}
func (s *notifRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteOlderFn(ctx, cutoff)
}

func noopNotifRepo() *notifRepoStub {
	return &notifRepoStub{
		createFn:      func(_ context.Context, _ *models.Notification) error { return nil },
		createBatchFn: func(_ context.Context, _ []*models.Notification) error { return nil },
		existsSinceFn: func(_ context.Context, _, _ uint, _ models.NotificationType, _ models.ContentType, _ uint, _ time.Time) (bool, error) {
			return false, nil
		},
		listByRecipientFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Notification, error) { return nil, nil },
		unreadCountFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markReadFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		markAllReadFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteFn:          func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		deleteOlderFn:     func(_ context.Context, _ time.Time) (int64, error) { return 0, nil },
	}
}

type mentionRepoStub struct {
	createBatchFn     func(context.Context, []*models.Mention) ([]*models.Mention, error)
	existingUserIDsFn func(context.Context, models.ContentRef) ([]uint, error)
	listByContentFn   func(context.Context, models.ContentRef) ([]*models.Mention, error)
	deleteByContentFn func(context.Context, models.ContentRef) (int64, error)
}

func (s *mentionRepoStub) CreateBatch(ctx context.Context, mentions []*models.Mention) ([]*models.Mention, error) {
	return s.createBatchFn(ctx, mentions)
}
func (s *mentionRepoStub) ExistingUserIDs(ctx context.Context, ref models.ContentRef) ([]uint, error) {
	return s.existingUserIDsFn(ctx, ref)
}
func (s *mentionRepoStub) ListByContent(ctx context.Context, ref models.ContentRef) ([]*models.Mention, error) {
	return s.listByContentFn(ctx, ref)
}
func (s *mentionRepoStub) DeleteByContent(ctx context.Context, ref models.ContentRef) (int64, error) {
	return s.deleteByContentFn(ctx, ref)
}

func noopMentionRepo() *mentionRepoStub {
	return &mentionRepoStub{
		createBatchFn:     func(_ context.Context, ms []*models.Mention) ([]*models.Mention, error) { return ms, nil },
		existingUserIDsFn: func(_ context.Context, _ models.ContentRef) ([]uint, error) { return nil, nil },
		listByContentFn:   func(_ context.Context, _ models.ContentRef) ([]*models.Mention, error) { return nil, nil },
		deleteByContentFn: func(_ context.Context, _ models.ContentRef) (int64, error) { return 0, nil },
	}
}

type messageRepoStub struct {
	createFn           func(context.Context, *models.Message) error
	listConversationFn func(context.Context, uint, uint, int, int) ([]*models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, msg *models.Message) error {
	return s.createFn(ctx, msg)
}
func (s *messageRepoStub) ListConversation(ctx context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error) {
	return s.listConversationFn(ctx, userA, userB, limit, offset)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:           func(_ context.Context, _ *models.Message) error { return nil },
		listConversationFn: func(_ context.Context, _, _ uint, _, _ int) ([]*models.Message, error) { return nil, nil },
	}
}

type purgeRepoStub struct {
	purgeUserFn func(context.Context, uint) error
}

func (s *purgeRepoStub) PurgeUser(ctx context.Context, userID uint) error {
	return s.purgeUserFn(ctx, userID)
}

type auditRepoStub struct {
	appendFn func(context.Context, *uint, string, string) error
}

func (s *auditRepoStub) Append(ctx context.Context, userID *uint, action, detail string) error {
	return s.appendFn(ctx, userID, action, detail)
}

func noopAuditRepo() *auditRepoStub {
	return &auditRepoStub{
		appendFn: func(_ context.Context, _ *uint, _, _ string) error { return nil },
	}
}

// newTestBus creates a bus that is torn down with the test.
func newTestBus(t *testing.T) *events.Bus {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	return bus
}

// newTestNotifications wires a NotificationService over the given stubs.
func newTestNotifications(t *testing.T, notifRepo *notifRepoStub, userRepo *userRepoStub) *NotificationService {
	t.Helper()
	return NewNotificationService(notifRepo, userRepo, newTestBus(t))
}

func adminChecker(adminIDs ...uint) func(context.Context, uint) (bool, error) {
	return func(_ context.Context, userID uint) (bool, error) {
		for _, id := range adminIDs {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertInvalidStateError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeInvalidState)
}
