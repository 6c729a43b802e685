// Package service implements the application's business logic on top of the
// repository layer. Services publish domain events instead of touching the
// delivery transport, so the dependency graph stays acyclic.
package service

import (
	"errors"

	"harbor/internal/models"

	"gorm.io/gorm"
)

// translateNotFound converts gorm's record-not-found into the application's
// NotFound error; all other errors pass through unchanged.
func translateNotFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}
