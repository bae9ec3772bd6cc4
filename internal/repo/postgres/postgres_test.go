package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/geocoder89/carvalue/internal/db"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/geocoder89/carvalue/internal/repo/repotest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// openTestPool needs TEST_DB_DSN pointing at a disposable database; the
// tables are truncated before every subtest.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	pool, err := db.NewPool(dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	require.NoError(t, db.EnsurePostgresSchema(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE users, reports RESTART IDENTITY`)
	require.NoError(t, err)

	return pool
}

func TestUsersRepo(t *testing.T) {
	repotest.RunUserStore(t, func(t *testing.T) repo.UserStore {
		return NewUsersRepo(openTestPool(t), nil)
	})
}

func TestReportsRepo(t *testing.T) {
	repotest.RunReportStore(t, func(t *testing.T) repo.ReportStore {
		return NewReportsRepo(openTestPool(t), nil)
	})
}
