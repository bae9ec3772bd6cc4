package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
)

var _ repo.ReportStore = (*ReportsRepo)(nil)

type ReportsRepo struct {
	db  *sql.DB
	obs repo.Observer
}

func NewReportsRepo(db *sql.DB, obs repo.Observer) *ReportsRepo {
	if obs == nil {
		obs = repo.NopObserver{}
	}
	return &ReportsRepo{db: db, obs: obs}
}

const reportColumns = `id, make, model, price, year, kilometers, longitude, latitude, approved, user_id`

func scanReport(row rowScanner) (report.Report, error) {
	var r report.Report
	err := row.Scan(&r.ID, &r.Make, &r.Model, &r.Price, &r.Year, &r.Kilometers, &r.Longitude, &r.Latitude, &r.Approved, &r.UserID)
	return r, err
}

func (r *ReportsRepo) Create(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error) {
	rep := report.NewFromCreateRequest(req, owner)

	err := r.obs.ObserveDB("reports.create", func() error {
		var err error
		rep, err = scanReport(r.db.QueryRowContext(ctx,
			`INSERT INTO reports (make, model, price, year, kilometers, longitude, latitude, approved, user_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		rep, err = scanReport(r.db.QueryRowContext(ctx,
			`UPDATE reports SET approved = ? WHERE id = ? RETURNING `+reportColumns,
			approved, id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, err
	}

	return rep, nil
}

const estimateQuery = `
SELECT AVG(price)
FROM (
	SELECT price
	FROM reports
	WHERE make = ?
		AND model = ?
		AND approved = 1
		AND ABS(longitude - ?) <= ?
		AND ABS(latitude - ?) <= ?
		AND ABS(year - ?) <= ?
	ORDER BY ABS(kilometers - ?) DESC, id ASC
	LIMIT ?
)`

func (r *ReportsRepo) Estimate(ctx context.Context, p report.EstimateParams) (*float64, error) {
	var avg sql.NullFloat64

	err := r.obs.ObserveDB("reports.estimate", func() error {
		return r.db.QueryRowContext(ctx, estimateQuery,
			p.Make, p.Model,
			p.Longitude, report.CoordinateTolerance,
			p.Latitude, report.CoordinateTolerance,
			p.Year, report.YearTolerance,
			p.Kilometers, report.MaxComparables,
		).Scan(&avg)
	})

	if err != nil {
		return nil, err
	}

	if !avg.Valid {
		return nil, nil
	}

	return &avg.Float64, nil
}
