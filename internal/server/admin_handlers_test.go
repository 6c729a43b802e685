package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"harbor/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRequired(t *testing.T) {
	t.Parallel()

	s := setupHandlerTest(t)
	admin := createUser(t, s.db, "admin", true)
	regular := createUser(t, s.db, "regular", false)

	newApp := func(userID uint) *fiber.App {
		app := fiber.New()
		app.Use(authAs(userID))
		app.Get("/admin/ping", s.AdminRequired(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	resp, err := newApp(regular.ID).Test(jsonRequest(t, http.MethodGet, "/admin/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = newApp(admin.ID).Test(jsonRequest(t, http.MethodGet, "/admin/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPurgeUserRemovesEveryTrace(t *testing.T) {
	t.Parallel()

	s := setupHandlerTest(t)
	admin := createUser(t, s.db, "admin", true)
	target := createUser(t, s.db, "target", false)
	other := createUser(t, s.db, "other", false)

	otherPost := createPost(t, s.db, other.ID, "other's post")
	targetPost := createPost(t, s.db, target.ID, "target's post")
	targetComment := createComment(t, s.db, target.ID, otherPost.ID, nil, "by target")
	createComment(t, s.db, other.ID, targetPost.ID, nil, "on target's post")

	require.NoError(t, s.db.Create(&models.Like{UserID: target.ID, ContentType: models.ContentTypePost, ContentID: otherPost.ID}).Error)
	require.NoError(t, s.db.Create(&models.Like{UserID: other.ID, ContentType: models.ContentTypePost, ContentID: targetPost.ID}).Error)
	require.NoError(t, s.db.Create(&models.Like{UserID: other.ID, ContentType: models.ContentTypeComment, ContentID: targetComment.ID}).Error)

	// deliberately drifted counters on the surviving post
	require.NoError(t, s.db.Model(&models.Post{}).Where("id = ?", otherPost.ID).
		Updates(map[string]interface{}{"likes_count": 5, "comments_count": 9}).Error)

	require.NoError(t, s.db.Create(&models.Mention{UserID: target.ID, MentionedByID: other.ID, ContentType: models.ContentTypePost, ContentID: otherPost.ID}).Error)
	require.NoError(t, s.db.Create(&models.Message{SenderID: target.ID, RecipientID: other.ID, Body: "dm out"}).Error)
	require.NoError(t, s.db.Create(&models.Message{SenderID: other.ID, RecipientID: target.ID, Body: "dm in"}).Error)
	require.NoError(t, s.db.Create(&models.Session{UserID: target.ID, Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	require.NoError(t, s.db.Create(&models.Suppression{UserID: target.ID, ContentType: models.SuppressionTargetPost, ContentID: otherPost.ID}).Error)
	require.NoError(t, s.db.Create(&models.Suppression{UserID: other.ID, ContentType: models.SuppressionTargetPost, ContentID: targetPost.ID}).Error)

	// one notification in each relation to the target
	seedNotification(t, s, target.ID, other.ID, models.NotificationLike)
	seedNotification(t, s, other.ID, target.ID, models.NotificationComment)
	require.NoError(t, s.db.Create(&models.Notification{
		RecipientID: other.ID, ActorID: admin.ID,
		Type: models.NotificationNewPost, TargetType: models.ContentTypePost, TargetID: targetPost.ID,
	}).Error)

	targetRef := target.ID
	require.NoError(t, s.db.Create(&models.AuditLog{UserID: &targetRef, Action: "user_created"}).Error)

	app := fiber.New()
	app.Use(authAs(admin.ID))
	app.Delete("/admin/users/:id", s.PurgeUser)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/admin/users/2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	counts := map[string]interface{}{
		"users":         &models.User{},
		"posts":         &models.Post{},
		"comments":      &models.Comment{},
		"likes":         &models.Like{},
		"mentions":      &models.Mention{},
		"messages":      &models.Message{},
		"sessions":      &models.Session{},
		"notifications": &models.Notification{},
		"suppressions":  &models.Suppression{},
	}
	expected := map[string]int64{
		"users":         2, // admin and other survive
		"posts":         1, // other's post survives
		"comments":      0,
		"likes":         0,
		"mentions":      0,
		"messages":      0,
		"sessions":      0,
		"notifications": 0,
		"suppressions":  0,
	}
	for table, model := range counts {
		var n int64
		require.NoError(t, s.db.Unscoped().Model(model).Count(&n).Error, table)
		assert.Equal(t, expected[table], n, "orphan rows left in %s", table)
	}

	var targetRows int64
	require.NoError(t, s.db.Unscoped().Model(&models.User{}).
		Where("id = ?", target.ID).Count(&targetRows).Error)
	assert.Equal(t, int64(0), targetRows)

	// surviving post's counters were resynced inside the purge transaction
	var survivor models.Post
	require.NoError(t, s.db.First(&survivor, otherPost.ID).Error)
	assert.Equal(t, 0, survivor.LikesCount)
	assert.Equal(t, 0, survivor.CommentsCount)

	// the old audit entry is kept with the back-reference nulled, and the
	// purge itself was recorded against the acting admin
	var seeded models.AuditLog
	require.NoError(t, s.db.Where("action = ?", "user_created").First(&seeded).Error)
	assert.Nil(t, seeded.UserID)

	var purgeEntry models.AuditLog
	require.NoError(t, s.db.Where("action = ?", "user_purged").First(&purgeEntry).Error)
	require.NotNil(t, purgeEntry.UserID)
	assert.Equal(t, admin.ID, *purgeEntry.UserID)

	// a retried purge finds no user
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/admin/users/2", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPurgeUsersEitherOrder(t *testing.T) {
	t.Parallel()

	// commenter writes on the owner's post, likes it, and mentions the owner;
	// the owner likes the comment back
	build := func(t *testing.T) (*Server, *models.User, *models.User, *models.User) {
		s := setupHandlerTest(t)
		admin := createUser(t, s.db, "admin", true)
		commenter := createUser(t, s.db, "commenter", false)
		owner := createUser(t, s.db, "owner", false)

		post := createPost(t, s.db, owner.ID, "owner's post")
		comment := createComment(t, s.db, commenter.ID, post.ID, nil, "hi @owner")

		require.NoError(t, s.db.Create(&models.Like{
			UserID: commenter.ID, ContentType: models.ContentTypePost, ContentID: post.ID,
		}).Error)
		require.NoError(t, s.db.Create(&models.Like{
			UserID: owner.ID, ContentType: models.ContentTypeComment, ContentID: comment.ID,
		}).Error)
		require.NoError(t, s.db.Create(&models.Mention{
			UserID: owner.ID, MentionedByID: commenter.ID,
			ContentType: models.ContentTypeComment, ContentID: comment.ID,
		}).Error)
		require.NoError(t, s.db.Create(&models.Notification{
			RecipientID: owner.ID, ActorID: commenter.ID,
			Type: models.NotificationComment, TargetType: models.ContentTypeComment, TargetID: comment.ID,
		}).Error)
		require.NoError(t, s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			Updates(map[string]interface{}{"likes_count": 1, "comments_count": 1}).Error)
		require.NoError(t, s.db.Model(&models.Comment{}).Where("id = ?", comment.ID).
			Update("likes_count", 1).Error)

		return s, admin, commenter, owner
	}

	purge := func(t *testing.T, s *Server, adminID, targetID uint) {
		t.Helper()
		app := fiber.New()
		app.Use(authAs(adminID))
		app.Delete("/admin/users/:id", s.PurgeUser)
		resp, err := app.Test(jsonRequest(t, http.MethodDelete,
			fmt.Sprintf("/admin/users/%d", targetID), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		_ = resp.Body.Close()
	}

	assertNoOrphans := func(t *testing.T, s *Server) {
		t.Helper()
		for table, model := range map[string]interface{}{
			"posts":         &models.Post{},
			"comments":      &models.Comment{},
			"likes":         &models.Like{},
			"mentions":      &models.Mention{},
			"notifications": &models.Notification{},
		} {
			var n int64
			require.NoError(t, s.db.Unscoped().Model(model).Count(&n).Error, table)
			assert.Equal(t, int64(0), n, "orphan rows left in %s", table)
		}
		var users int64
		require.NoError(t, s.db.Unscoped().Model(&models.User{}).Count(&users).Error)
		assert.Equal(t, int64(1), users, "only the admin remains")
	}

	t.Run("commenter purged first", func(t *testing.T) {
		t.Parallel()

		s, admin, commenter, owner := build(t)
		purge(t, s, admin.ID, commenter.ID)

		// the owner's post survives the first purge with its counters resynced
		var post models.Post
		require.NoError(t, s.db.Where("author_id = ?", owner.ID).First(&post).Error)
		assert.Equal(t, 0, post.LikesCount)
		assert.Equal(t, 0, post.CommentsCount)

		purge(t, s, admin.ID, owner.ID)
		assertNoOrphans(t, s)
	})

	t.Run("post owner purged first", func(t *testing.T) {
		t.Parallel()

		s, admin, commenter, owner := build(t)
		purge(t, s, admin.ID, owner.ID)

		// the post cascade took the commenter's comment and both likes with it
		var comments, likes int64
		require.NoError(t, s.db.Unscoped().Model(&models.Comment{}).Count(&comments).Error)
		require.NoError(t, s.db.Unscoped().Model(&models.Like{}).Count(&likes).Error)
		assert.Equal(t, int64(0), comments)
		assert.Equal(t, int64(0), likes)

		purge(t, s, admin.ID, commenter.ID)
		assertNoOrphans(t, s)
	})
}

func TestPurgeUserGuards(t *testing.T) {
	t.Parallel()

	s := setupHandlerTest(t)
	admin := createUser(t, s.db, "admin", true)
	otherAdmin := createUser(t, s.db, "root", true)
	regular := createUser(t, s.db, "regular", false)

	newApp := func(userID uint) *fiber.App {
		app := fiber.New()
		app.Use(authAs(userID))
		app.Delete("/admin/users/:id", s.PurgeUser)
		return app
	}

	// the service itself rejects non-admin actors, independent of routing
	resp, err := newApp(regular.ID).Test(jsonRequest(t, http.MethodDelete, "/admin/users/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// admins cannot be purged
	resp, err = newApp(admin.ID).Test(jsonRequest(t, http.MethodDelete, "/admin/users/2", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	var stillThere int64
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", otherAdmin.ID).Count(&stillThere).Error)
	assert.Equal(t, int64(1), stillThere)

	resp, err = newApp(admin.ID).Test(jsonRequest(t, http.MethodDelete, "/admin/users/999", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestResyncCounterCorrectsDrift(t *testing.T) {
	t.Parallel()

	s := setupHandlerTest(t)
	admin := createUser(t, s.db, "admin", true)
	author := createUser(t, s.db, "author", false)
	post := createPost(t, s.db, author.ID, "drifted")
	createComment(t, s.db, author.ID, post.ID, nil, "one")
	createComment(t, s.db, author.ID, post.ID, nil, "two")
	gone := createComment(t, s.db, author.ID, post.ID, nil, "deleted")
	require.NoError(t, s.db.Delete(gone).Error)

	require.NoError(t, s.db.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("comments_count", 99).Error)

	app := fiber.New()
	app.Use(authAs(admin.ID))
	app.Post("/admin/counters/resync", s.ResyncCounter)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/counters/resync",
		fiber.Map{"content_type": "post", "content_id": post.ID, "counter": "comments"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		ContentType string `json:"content_type"`
		ContentID   uint   `json:"content_id"`
		Counter     string `json:"counter"`
		Value       int    `json:"value"`
	}
	decodeBody(t, resp, &result)
	assert.Equal(t, 2, result.Value, "soft-deleted comments do not count")

	var stored models.Post
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	assert.Equal(t, 2, stored.CommentsCount)
}

func TestResyncCounterValidation(t *testing.T) {
	t.Parallel()

	s := setupHandlerTest(t)
	admin := createUser(t, s.db, "admin", true)

	app := fiber.New()
	app.Use(authAs(admin.ID))
	app.Post("/admin/counters/resync", s.ResyncCounter)

	tests := []struct {
		name    string
		payload fiber.Map
	}{
		{"unknown counter", fiber.Map{"content_type": "post", "content_id": 1, "counter": "views"}},
		{"unknown content type", fiber.Map{"content_type": "message", "content_id": 1, "counter": "likes"}},
		{"missing content id", fiber.Map{"content_type": "post", "counter": "likes"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/counters/resync", tt.payload))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestCleanupNotifications(t *testing.T) {
	t.Parallel()

	s := setupHandlerTest(t)
	admin := createUser(t, s.db, "admin", true)
	user := createUser(t, s.db, "user", false)

	old := &models.Notification{
		RecipientID: user.ID, ActorID: admin.ID,
		Type: models.NotificationLike, TargetType: models.ContentTypePost, TargetID: 1,
		CreatedAt: time.Now().Add(-200 * 24 * time.Hour),
	}
	require.NoError(t, s.db.Create(old).Error)
	seedNotification(t, s, user.ID, admin.ID, models.NotificationComment)

	app := fiber.New()
	app.Use(authAs(admin.ID))
	app.Post("/admin/notifications/cleanup", s.CleanupNotifications)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/notifications/cleanup?days=90", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Removed int64 `json:"removed"`
	}
	decodeBody(t, resp, &result)
	assert.Equal(t, int64(1), result.Removed)

	var remaining int64
	require.NoError(t, s.db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining, "recent notifications survive")

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/admin/notifications/cleanup?days=0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}
