package repository

import (
	"context"

	"harbor/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MentionRepository stores mention rows keyed by (mentioned user, content).
type MentionRepository interface {
	// CreateBatch inserts mention rows, silently skipping any that already
	// exist for the same (user, content) pair. Returns the rows that were
	// actually inserted so callers notify only for new mentions.
	CreateBatch(ctx context.Context, mentions []*models.Mention) ([]*models.Mention, error)
	// ExistingUserIDs returns the ids of users who already have a mention
	// row for the given content.
	ExistingUserIDs(ctx context.Context, ref models.ContentRef) ([]uint, error)
	ListByContent(ctx context.Context, ref models.ContentRef) ([]*models.Mention, error)
	DeleteByContent(ctx context.Context, ref models.ContentRef) (int64, error)
}

type mentionRepository struct {
	db *gorm.DB
}

// NewMentionRepository creates a new MentionRepository
func NewMentionRepository(db *gorm.DB) MentionRepository {
	return &mentionRepository{db: db}
}

func (r *mentionRepository) CreateBatch(ctx context.Context, mentions []*models.Mention) ([]*models.Mention, error) {
	if len(mentions) == 0 {
		return nil, nil
	}
	created := make([]*models.Mention, 0, len(mentions))
	for _, m := range mentions {
		// Insert one at a time with conflict tolerance so a concurrent edit
		// processing the same text cannot double-create, and so we know
		// exactly which rows are new.
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(m)
		if result.Error != nil {
			return created, result.Error
		}
		if result.RowsAffected > 0 {
			created = append(created, m)
		}
	}
	return created, nil
}

func (r *mentionRepository) ExistingUserIDs(ctx context.Context, ref models.ContentRef) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Mention{}).
		Where("content_type = ? AND content_id = ?", ref.Type, ref.ID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *mentionRepository) ListByContent(ctx context.Context, ref models.ContentRef) ([]*models.Mention, error) {
	var mentions []*models.Mention
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", ref.Type, ref.ID).
		Find(&mentions).Error
	return mentions, err
}

func (r *mentionRepository) DeleteByContent(ctx context.Context, ref models.ContentRef) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", ref.Type, ref.ID).
		Delete(&models.Mention{})
	return result.RowsAffected, result.Error
}
