package repository

import (
	"context"

	"harbor/internal/models"

	"gorm.io/gorm"
)

// AuditRepository appends to the audit log. Entries are never updated or
// deleted by application code; a user purge only nulls the user reference.
type AuditRepository interface {
	Append(ctx context.Context, userID *uint, action, detail string) error
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, userID *uint, action, detail string) error {
	entry := models.AuditLog{UserID: userID, Action: action, Detail: detail}
	return r.db.WithContext(ctx).Create(&entry).Error
}
