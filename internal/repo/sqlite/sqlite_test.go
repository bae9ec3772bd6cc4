package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/geocoder89/carvalue/internal/db"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/geocoder89/carvalue/internal/repo/repotest"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.EnsureSQLiteSchema(context.Background(), conn))

	return conn
}

func TestUsersRepo(t *testing.T) {
	repotest.RunUserStore(t, func(t *testing.T) repo.UserStore {
		return NewUsersRepo(openTestDB(t), nil)
	})
}

func TestReportsRepo(t *testing.T) {
	repotest.RunReportStore(t, func(t *testing.T) repo.ReportStore {
		return NewReportsRepo(openTestDB(t), nil)
	})
}
