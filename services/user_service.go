package services

import (
	"context"
	"rentkart_server/database"
	"rentkart_server/lib"
	"rentkart_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserService backs the admin dashboard's user management
type UserService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewUserService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *UserService {
	return &UserService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// ListUsers returns all profiles, newest first
func (us *UserService) ListUsers(ctx context.Context, page, pageSize int) (*database.PaginationResult[tables.User], error) {
	q := database.Query[tables.User](us.db).OrderBy("created_at", database.DESC)
	return database.Paginate(q, ctx, page, pageSize)
}

// UpdateRole changes a profile's role and drops any cached copy so the
// guard picks up the new role on the next request
func (us *UserService) UpdateRole(ctx context.Context, userID uuid.UUID, role tables.UserRole) (*tables.User, error) {
	updates := map[string]any{
		"role":       role,
		"updated_at": time.Now(),
	}
	updated, err := database.Query[tables.User](us.db).Where("id", userID).Update(ctx, updates)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if updated == 0 {
		return nil, lib.ErrNotFound
	}

	if err := us.cacheService.InvalidateUserCache(userID); err != nil {
		us.logger.Warn("Failed to invalidate user cache after role change", gecho.Field("error", err), gecho.Field("user_id", userID))
	}

	us.logger.Info("User role updated", gecho.Field("user_id", userID), gecho.Field("role", role))

	return database.FindByID[tables.User](us.db, ctx, userID)
}

// DeleteUser removes a profile and its credential in one transaction.
// The admin-privileged path; normal flows never hard-delete users.
func (us *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := database.FindByID[tables.User](us.db, ctx, userID)
	if err != nil {
		return lib.MapPgError(err)
	}
	if user == nil {
		return lib.ErrNotFound
	}

	txErr := database.Transaction(ctx, func(tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*tables.User)(nil)).
			Where("id = ?", user.Id).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*tables.Credential)(nil)).
			Where("id = ?", user.CredentialId).
			Exec(ctx)
		return err
	})
	if txErr != nil {
		us.logger.Error("Failed to delete user", gecho.Field("error", txErr), gecho.Field("user_id", userID))
		return lib.MapPgError(txErr)
	}

	if err := us.cacheService.InvalidateUserCache(userID); err != nil {
		us.logger.Warn("Failed to invalidate cache for deleted user", gecho.Field("error", err), gecho.Field("user_id", userID))
	}

	us.logger.Info("User deleted", gecho.Field("user_id", userID))
	return nil
}
