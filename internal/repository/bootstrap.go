package repository

import (
	"context"
	"fmt"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/pkg/crypto"
	"github.com/mkdirlove/song-server/pkg/errors"
	"github.com/mkdirlove/song-server/pkg/logger"
)

// EnsureAdminUser provisions the first admin if no admin exists yet. It runs
// once before the server accepts traffic and is idempotent: losing an insert
// race to a concurrently started replica counts as success.
func EnsureAdminUser(ctx context.Context, users UserRepository, hasher *crypto.PasswordHasher,
	username, password string, log logger.Logger) error {

	hasAdmin, err := users.HasAdmin(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: admin lookup failed: %w", err)
	}
	if hasAdmin {
		return nil
	}

	if password == "" {
		log.Warn("no admin exists and no bootstrap admin password is configured")
		return nil
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("bootstrap: failed to hash admin password: %w", err)
	}

	admin := domain.NewUser(username, password, hash, domain.RoleAdmin)
	if !admin.Validate() {
		return fmt.Errorf("bootstrap: invalid admin credentials for %q", username)
	}

	if err := users.Insert(ctx, admin); err != nil {
		if errors.Is(err, errors.ErrUsernameExists) {
			return nil
		}
		return fmt.Errorf("bootstrap: failed to insert admin: %w", err)
	}

	log.Info("bootstrap admin provisioned", logger.String("username", username))
	return nil
}
