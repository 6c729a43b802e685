package repository

import (
	"context"

	"harbor/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores like rows. Both operations are single atomic
// statements so the toggle engine needs no locking: Delete reports whether a
// row existed, Insert absorbs uniqueness conflicts from concurrent inserts.
type LikeRepository interface {
	Delete(ctx context.Context, userID uint, ref models.ContentRef) (bool, error)
	Insert(ctx context.Context, userID uint, ref models.ContentRef) (bool, error)
	Exists(ctx context.Context, userID uint, ref models.ContentRef) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Delete removes the like row if present. Returns true when a row was
// actually deleted, which is what distinguishes toggle-off from toggle-on.
func (r *likeRepository) Delete(ctx context.Context, userID uint, ref models.ContentRef) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, ref.Type, ref.ID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Insert creates the like row, doing nothing on a uniqueness conflict.
// Returns true when the row was inserted by this call; false means another
// concurrent request for the same user won the race.
func (r *likeRepository) Insert(ctx context.Context, userID uint, ref models.ContentRef) (bool, error) {
	like := models.Like{UserID: userID, ContentType: ref.Type, ContentID: ref.ID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID uint, ref models.ContentRef) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, ref.Type, ref.ID).
		Count(&count).Error
	return count > 0, err
}
