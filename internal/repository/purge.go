package repository

import (
	"context"
	"fmt"

	"harbor/internal/models"

	"gorm.io/gorm"
)

// PurgeRepository permanently removes a user and everything that references
// them. The work runs as an ordered list of phases inside one transaction;
// the order is mandatory because later phases would otherwise violate
// referential preconditions left by earlier ones. Every phase is idempotent,
// so a retried purge neither double-deletes nor errors on cleared rows.
type PurgeRepository interface {
	PurgeUser(ctx context.Context, userID uint) error
}

type purgeRepository struct {
	db *gorm.DB
}

// NewPurgeRepository creates a new PurgeRepository.
func NewPurgeRepository(db *gorm.DB) PurgeRepository {
	return &purgeRepository{db: db}
}

type purgePhase struct {
	name string
	run  func(tx *gorm.DB, userID uint) error
}

var purgePhases = []purgePhase{
	{"dependent_via_content", purgeDependentViaContent},
	{"direct_references", purgeDirectReferences},
	{"owned_content", purgeOwnedContent},
	{"user_row", purgeUserRow},
}

func (r *purgeRepository) PurgeUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, phase := range purgePhases {
			if err := phase.run(tx, userID); err != nil {
				return fmt.Errorf("purge phase %s: %w", phase.name, err)
			}
		}
		return nil
	})
}

// purgeDependentViaContent clears rows that reference content owned through
// the user: suppression markers pointing at the user's messages, posts, or
// comments, and notifications targeting the user's posts or comments. These
// must go first or the content deletions in phase three would orphan them.
func purgeDependentViaContent(tx *gorm.DB, userID uint) error {
	statements := []struct {
		sql  string
		args []interface{}
	}{
		{
			"DELETE FROM suppressions WHERE content_type = 'message' AND content_id IN (SELECT id FROM messages WHERE sender_id = ? OR recipient_id = ?)",
			[]interface{}{userID, userID},
		},
		{
			"DELETE FROM suppressions WHERE content_type = 'post' AND content_id IN (SELECT id FROM posts WHERE author_id = ?)",
			[]interface{}{userID},
		},
		{
			"DELETE FROM suppressions WHERE content_type = 'comment' AND content_id IN (SELECT id FROM comments WHERE author_id = ?)",
			[]interface{}{userID},
		},
		{
			"DELETE FROM notifications WHERE target_type = 'post' AND target_id IN (SELECT id FROM posts WHERE author_id = ?)",
			[]interface{}{userID},
		},
		{
			"DELETE FROM notifications WHERE target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE author_id = ?)",
			[]interface{}{userID},
		},
	}
	for _, s := range statements {
		if err := tx.Exec(s.sql, s.args...).Error; err != nil {
			return err
		}
	}
	return nil
}

// purgeDirectReferences clears rows that reference the user directly.
// Audit-log back-references are nulled, not deleted, to preserve history.
func purgeDirectReferences(tx *gorm.DB, userID uint) error {
	statements := []struct {
		sql  string
		args []interface{}
	}{
		{"DELETE FROM notifications WHERE recipient_id = ? OR actor_id = ?", []interface{}{userID, userID}},
		{"DELETE FROM suppressions WHERE user_id = ?", []interface{}{userID}},
		{"DELETE FROM mentions WHERE user_id = ? OR mentioned_by_id = ?", []interface{}{userID, userID}},
		{"DELETE FROM messages WHERE sender_id = ? OR recipient_id = ?", []interface{}{userID, userID}},
		{"DELETE FROM sessions WHERE user_id = ?", []interface{}{userID}},
		{"UPDATE audit_logs SET user_id = NULL WHERE user_id = ?", []interface{}{userID}},
	}
	for _, s := range statements {
		if err := tx.Exec(s.sql, s.args...).Error; err != nil {
			return err
		}
	}
	return nil
}

// purgeOwnedContent hard-deletes the user's own content in comment -> like ->
// post order. Comments go first so that a post cascade in the same operation
// (or an interleaved purge of another user) never orphans comment rows that
// hang off other users' posts; posts go last and take any remaining comments,
// likes, and mentions attached to them. Counters on surviving foreign content
// are resynced inside the same transaction.
func purgeOwnedContent(tx *gorm.DB, userID uint) error {
	// Foreign posts that will lose comments need their counters resynced
	// after the deletions. Collect them before deleting anything.
	var foreignPostIDs []uint
	if err := tx.Raw(
		"SELECT DISTINCT post_id FROM comments WHERE author_id = ? AND post_id NOT IN (SELECT id FROM posts WHERE author_id = ?)",
		userID, userID,
	).Scan(&foreignPostIDs).Error; err != nil {
		return err
	}

	// Content the user liked, for likes_count resync after the like rows go.
	var likedRefs []struct {
		ContentType string
		ContentID   uint
	}
	if err := tx.Raw(
		"SELECT content_type, content_id FROM likes WHERE user_id = ?", userID,
	).Scan(&likedRefs).Error; err != nil {
		return err
	}

	statements := []struct {
		sql  string
		args []interface{}
	}{
		// Likes and mentions hanging off the user's comments.
		{
			"DELETE FROM likes WHERE content_type = 'comment' AND content_id IN (SELECT id FROM comments WHERE author_id = ?)",
			[]interface{}{userID},
		},
		// The user's own comments, wherever they live.
		{"DELETE FROM comments WHERE author_id = ?", []interface{}{userID}},
		// The user's own likes.
		{"DELETE FROM likes WHERE user_id = ?", []interface{}{userID}},
		// Cascade onto the user's posts: other users' comments on them first,
		// with their likes, mentions, and notifications.
		{
			"DELETE FROM likes WHERE content_type = 'comment' AND content_id IN (SELECT id FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?))",
			[]interface{}{userID},
		},
		{
			"DELETE FROM mentions WHERE content_type = 'comment' AND content_id IN (SELECT id FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?))",
			[]interface{}{userID},
		},
		{
			"DELETE FROM notifications WHERE target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?))",
			[]interface{}{userID},
		},
		{
			"DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?)",
			[]interface{}{userID},
		},
		{
			"DELETE FROM likes WHERE content_type = 'post' AND content_id IN (SELECT id FROM posts WHERE author_id = ?)",
			[]interface{}{userID},
		},
		{
			"DELETE FROM mentions WHERE content_type = 'post' AND content_id IN (SELECT id FROM posts WHERE author_id = ?)",
			[]interface{}{userID},
		},
		// The posts themselves, last.
		{"DELETE FROM posts WHERE author_id = ?", []interface{}{userID}},
	}
	for _, s := range statements {
		if err := tx.Exec(s.sql, s.args...).Error; err != nil {
			return err
		}
	}

	for _, postID := range foreignPostIDs {
		if err := resyncCounter(tx, models.PostRef(postID), CounterComments); err != nil {
			return err
		}
	}
	for _, ref := range likedRefs {
		contentRef := models.ContentRef{Type: models.ContentType(ref.ContentType), ID: ref.ContentID}
		if err := resyncCounter(tx, contentRef, CounterLikes); err != nil {
			return err
		}
	}
	return nil
}

func purgeUserRow(tx *gorm.DB, userID uint) error {
	return tx.Exec("DELETE FROM users WHERE id = ?", userID).Error
}
