// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"fmt"

	"harbor/internal/models"
	"harbor/internal/observability"

	"gorm.io/gorm"
)

// Counter names the derived counter columns kept on content rows.
type Counter string

const (
	CounterLikes    Counter = "likes"
	CounterComments Counter = "comments"
)

// CounterRepository mutates the persisted derived counters. Every write goes
// through a single atomic SQL statement; there is no read-modify-write path,
// so concurrent adjustments can never lose updates.
type CounterRepository interface {
	// Adjust applies delta to the counter in one atomic UPDATE.
	Adjust(ctx context.Context, ref models.ContentRef, counter Counter, delta int) error
	// Resync overwrites the counter with the authoritative count of
	// non-deleted children. Used for recovery and consistency audits.
	Resync(ctx context.Context, ref models.ContentRef, counter Counter) error
	// Value reads the current stored counter value.
	Value(ctx context.Context, ref models.ContentRef, counter Counter) (int, error)
}

type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new CounterRepository.
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// counterColumn maps (content type, counter) onto a table and column.
// The whitelist keeps raw SQL construction safe; only these four statements
// ever touch the counter columns.
func counterColumn(ref models.ContentRef, counter Counter) (table, column string, err error) {
	switch {
	case ref.Type == models.ContentTypePost && counter == CounterLikes:
		return "posts", "likes_count", nil
	case ref.Type == models.ContentTypePost && counter == CounterComments:
		return "posts", "comments_count", nil
	case ref.Type == models.ContentTypeComment && counter == CounterLikes:
		return "comments", "likes_count", nil
	default:
		return "", "", fmt.Errorf("no %s counter on content type %s", counter, ref.Type)
	}
}

func (r *counterRepository) Adjust(ctx context.Context, ref models.ContentRef, counter Counter, delta int) error {
	table, column, err := counterColumn(ref, counter)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(
		fmt.Sprintf("UPDATE %s SET %s = %s + ? WHERE id = ?", table, column, column),
		delta, ref.ID,
	).Error
}

func (r *counterRepository) Resync(ctx context.Context, ref models.ContentRef, counter Counter) error {
	if err := resyncCounter(r.db.WithContext(ctx), ref, counter); err != nil {
		return err
	}
	observability.CounterResyncs.WithLabelValues(string(ref.Type)).Inc()
	return nil
}

func (r *counterRepository) Value(ctx context.Context, ref models.ContentRef, counter Counter) (int, error) {
	table, column, err := counterColumn(ref, counter)
	if err != nil {
		return 0, err
	}
	var value int
	err = r.db.WithContext(ctx).Raw(
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", column, table),
		ref.ID,
	).Scan(&value).Error
	return value, err
}

// resyncCounter recomputes a counter from the authoritative child count in a
// single statement. Shared with the purge path, which resyncs foreign content
// inside its transaction.
func resyncCounter(db *gorm.DB, ref models.ContentRef, counter Counter) error {
	table, column, err := counterColumn(ref, counter)
	if err != nil {
		return err
	}

	var sub string
	switch counter {
	case CounterComments:
		sub = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)"
	case CounterLikes:
		sub = fmt.Sprintf(
			"(SELECT COUNT(*) FROM likes WHERE likes.content_type = '%s' AND likes.content_id = %s.id)",
			ref.Type, table,
		)
	default:
		return fmt.Errorf("unknown counter %q", counter)
	}

	return db.Exec(
		fmt.Sprintf("UPDATE %s SET %s = %s WHERE id = ?", table, column, sub),
		ref.ID,
	).Error
}
