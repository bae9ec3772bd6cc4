// Package repo holds the store contracts shared by the memory, postgres and
// sqlite implementations.
package repo

import (
	"context"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
	// FindByID returns (nil, nil) for id 0 and user.ErrNotFound for an unknown id.
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) ([]user.User, error)
	Update(ctx context.Context, id int64, attrs user.Attrs) (user.User, error)
	Remove(ctx context.Context, id int64) (user.User, error)
	Ping(ctx context.Context) error
}

type ReportStore interface {
	Create(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error)
	ChangeApproval(ctx context.Context, id int64, approved bool) (report.Report, error)
	Estimate(ctx context.Context, p report.EstimateParams) (*float64, error)
}

// Observer times a logical store operation. observability.Prom satisfies it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type NopObserver struct{}

func (NopObserver) ObserveDB(_ string, fn func() error) error { return fn() }
