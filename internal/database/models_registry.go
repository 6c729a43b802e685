package database

import "harbor/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
		&models.Mention{},
		&models.Message{},
		&models.Suppression{},
		&models.Session{},
		&models.AuditLog{},
	}
}
