package service

import (
	"context"
	"fmt"
	"log/slog"

	"harbor/internal/models"
	"harbor/internal/observability"
	"harbor/internal/repository"
)

// PurgeService orchestrates full user deletion. The heavy lifting — the
// ordered, all-or-nothing phase execution — lives in the purge repository;
// this layer enforces who may purge whom and records the action.
type PurgeService struct {
	userRepo  repository.UserRepository
	purgeRepo repository.PurgeRepository
	auditRepo repository.AuditRepository
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

// NewPurgeService creates a new PurgeService.
func NewPurgeService(
	userRepo repository.UserRepository,
	purgeRepo repository.PurgeRepository,
	auditRepo repository.AuditRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PurgeService {
	return &PurgeService{
		userRepo:  userRepo,
		purgeRepo: purgeRepo,
		auditRepo: auditRepo,
		isAdmin:   isAdmin,
	}
}

// PurgeUser permanently removes a user and all data owned by or referencing
// them. Only administrators may purge, and a privileged account can never be
// the target. Either the whole purge commits or none of it does.
func (s *PurgeService) PurgeUser(ctx context.Context, targetID, actorID uint) error {
	admin, err := s.isAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewUnauthorizedError("Only administrators can purge users")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return translateNotFound(err, "User", targetID)
	}
	if target.IsAdmin {
		return models.NewInvalidStateError("Administrator accounts cannot be purged")
	}

	if err := s.purgeRepo.PurgeUser(ctx, targetID); err != nil {
		return err
	}

	actor := actorID
	if err := s.auditRepo.Append(ctx, &actor, "user_purged",
		fmt.Sprintf("purged user %d (%s)", targetID, target.Username)); err != nil {
		observability.With(ctx).Warn("audit append failed",
			slog.String("error", err.Error()),
		)
	}

	observability.With(ctx).Info("user purged",
		slog.Uint64("target_id", uint64(targetID)),
		slog.Uint64("actor_id", uint64(actorID)),
	)
	return nil
}
