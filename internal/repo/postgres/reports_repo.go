package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repo.ReportStore = (*ReportsRepo)(nil)

type ReportsRepo struct {
	pool *pgxpool.Pool
	obs  repo.Observer
}

func NewReportsRepo(pool *pgxpool.Pool, obs repo.Observer) *ReportsRepo {
	if obs == nil {
		obs = repo.NopObserver{}
	}
	return &ReportsRepo{pool: pool, obs: obs}
}

const reportColumns = `id, make, model, price, year, kilometers, longitude, latitude, approved, user_id`

func scanReport(row pgx.Row) (report.Report, error) {
	var r report.Report
	err := row.Scan(&r.ID, &r.Make, &r.Model, &r.Price, &r.Year, &r.Kilometers, &r.Longitude, &r.Latitude, &r.Approved, &r.UserID)
	return r, err
}

func (r *ReportsRepo) Create(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error) {
	rep := report.NewFromCreateRequest(req, owner)

	err := r.obs.ObserveDB("reports.create", func() error {
		var err error
		rep, err = scanReport(r.pool.QueryRow(ctx,
			`INSERT INTO reports (make, model, price, year, kilometers, longitude, latitude, approved, user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+reportColumns,
			rep.Make, rep.Model, rep.Price, rep.Year, rep.Kilometers, rep.Longitude, rep.Latitude, rep.Approved, rep.UserID,
		))
		return err
	})

	if err != nil {
		return report.Report{}, err
	}

	return rep, nil
}

func (r *ReportsRepo) ChangeApproval(ctx context.Context, id int64, approved bool) (report.Report, error) {
	var rep report.Report

	err := r.obs.ObserveDB("reports.change_approval", func() error {
		var err error
		rep, err = scanReport(r.pool.QueryRow(ctx,
			`UPDATE reports SET approved = $2 WHERE id = $1 RETURNING `+reportColumns,
			id, approved,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, err
	}

	return rep, nil
}

// Mirrors report.Estimate: bounding box, year window, farthest mileage first, top 3.
const estimateQuery = `
SELECT AVG(price)
FROM (
	SELECT price
	FROM reports
	WHERE make = $1
		AND model = $2
		AND approved = TRUE
		AND ABS(longitude - $3) <= $7
		AND ABS(latitude - $4) <= $7
		AND ABS(year - $5) <= $8
	ORDER BY ABS(kilometers - $6) DESC, id ASC
	LIMIT $9
) AS comparables`

func (r *ReportsRepo) Estimate(ctx context.Context, p report.EstimateParams) (*float64, error) {
	var avg *float64

	err := r.obs.ObserveDB("reports.estimate", func() error {
		return r.pool.QueryRow(ctx, estimateQuery,
			p.Make, p.Model, p.Longitude, p.Latitude, p.Year, p.Kilometers,
			report.CoordinateTolerance, report.YearTolerance, report.MaxComparables,
		).Scan(&avg)
	})

	if err != nil {
		return nil, err
	}

	return avg, nil
}
