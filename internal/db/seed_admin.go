package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/carvalue/internal/config"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/geocoder89/carvalue/internal/security"
)

// EnsureAdminUser creates the configured admin account once. The API has no
// route that grants the admin flag, so this is the only way to get one.
func EnsureAdminUser(ctx context.Context, users repo.UserStore, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	existing, err := users.FindByEmail(ctx, cfg.AdminEmail)

	if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}

	if len(existing) > 0 {
		return ensureAdminFlag(ctx, users, existing, cfg)
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u, err := users.Create(ctx, cfg.AdminEmail, hash)

	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	if err := grantAdmin(ctx, users, u.ID); err != nil {
		return err
	}

	slog.Info("admin user created", "email", cfg.AdminEmail, "user_id", u.ID)

	return nil
}

// ensureAdminFlag finishes a seed whose grant step failed on an earlier start.
// The flag is only granted to an account holding the configured password, so
// someone who signed up with the admin email first does not become admin.
func ensureAdminFlag(ctx context.Context, users repo.UserStore, existing []user.User, cfg config.Config) error {
	for _, u := range existing {
		if u.Admin {
			return nil
		}
	}

	for _, u := range existing {
		ok, err := security.VerifyPassword(cfg.AdminPassword, u.Password)
		if err != nil || !ok {
			continue
		}

		if err := grantAdmin(ctx, users, u.ID); err != nil {
			return err
		}

		slog.Warn("admin flag was missing, granted again", "email", cfg.AdminEmail, "user_id", u.ID)
		return nil
	}

	slog.Warn("admin email belongs to a non-admin account, not granting", "email", cfg.AdminEmail)

	return nil
}

func grantAdmin(ctx context.Context, users repo.UserStore, id int64) error {
	admin := true
	if _, err := users.Update(ctx, id, user.Attrs{Admin: &admin}); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}
