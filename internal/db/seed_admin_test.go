package db

import (
	"context"
	"testing"

	"github.com/geocoder89/carvalue/internal/config"
	"github.com/geocoder89/carvalue/internal/repo/memory"
	"github.com/geocoder89/carvalue/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	cfg := config.Config{AdminEmail: "admin@example.com", AdminPassword: "s3cret"}

	require.NoError(t, EnsureAdminUser(ctx, users, cfg))
	// second call is a no-op
	require.NoError(t, EnsureAdminUser(ctx, users, cfg))

	found, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Admin)

	ok, err := security.VerifyPassword("s3cret", found[0].Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureAdminUser_RegrantsMissingFlag(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	cfg := config.Config{AdminEmail: "admin@example.com", AdminPassword: "s3cret"}

	// an earlier start created the account but failed before granting the flag
	hash, err := security.HashPassword("s3cret")
	require.NoError(t, err)
	_, err = users.Create(ctx, "admin@example.com", hash)
	require.NoError(t, err)

	require.NoError(t, EnsureAdminUser(ctx, users, cfg))

	found, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Admin)
}

func TestEnsureAdminUser_ForeignAccountNotPromoted(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	cfg := config.Config{AdminEmail: "admin@example.com", AdminPassword: "s3cret"}

	hash, err := security.HashPassword("someone-else")
	require.NoError(t, err)
	_, err = users.Create(ctx, "admin@example.com", hash)
	require.NoError(t, err)

	require.NoError(t, EnsureAdminUser(ctx, users, cfg))

	found, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.False(t, found[0].Admin)
}

func TestEnsureAdminUser_NotConfigured(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()

	require.NoError(t, EnsureAdminUser(ctx, users, config.Config{AdminEmail: "admin@example.com"}))

	found, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestOpenSQLite_Schema(t *testing.T) {
	conn, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	require.NoError(t, EnsureSQLiteSchema(ctx, conn))
	// idempotent
	require.NoError(t, EnsureSQLiteSchema(ctx, conn))

	for _, table := range []string{"users", "reports"} {
		var count int
		require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count)
	}
}
