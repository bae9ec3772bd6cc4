package memory

import (
	"testing"

	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/geocoder89/carvalue/internal/repo/repotest"
)

var (
	_ repo.UserStore   = (*UsersRepo)(nil)
	_ repo.ReportStore = (*ReportsRepo)(nil)
)

func TestUsersRepo(t *testing.T) {
	repotest.RunUserStore(t, func(*testing.T) repo.UserStore { return NewUsersRepo() })
}

func TestReportsRepo(t *testing.T) {
	repotest.RunReportStore(t, func(*testing.T) repo.ReportStore { return NewReportsRepo() })
}
