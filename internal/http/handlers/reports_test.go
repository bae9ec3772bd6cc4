package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/http/handlers"
)

type fakeReportsRepo struct {
	createFn         func(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error)
	changeApprovalFn func(ctx context.Context, id int64, approved bool) (report.Report, error)
	estimateFn       func(ctx context.Context, p report.EstimateParams) (*float64, error)
}

func (f *fakeReportsRepo) Create(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, owner)
	}
	return report.NewFromCreateRequest(req, owner), nil
}

func (f *fakeReportsRepo) ChangeApproval(ctx context.Context, id int64, approved bool) (report.Report, error) {
	if f.changeApprovalFn != nil {
		return f.changeApprovalFn(ctx, id, approved)
	}
	return report.Report{}, report.ErrNotFound
}

func (f *fakeReportsRepo) Estimate(ctx context.Context, p report.EstimateParams) (*float64, error) {
	if f.estimateFn != nil {
		return f.estimateFn(ctx, p)
	}
	return nil, nil
}

const validReport = `{"make":"Ford","model":"Mustang","price":20000,"year":1982,"kilometers":50000,"longitude":45,"latitude":45}`

func TestCreateReportHandler(t *testing.T) {
	owner := &user.User{ID: 12, Email: "o@b.com"}

	tests := []struct {
		name       string
		current    *user.User
		body       string
		repoSetUp  func(*fakeReportsRepo)
		wantStatus int
	}{
		{name: "success", current: owner, body: validReport, wantStatus: http.StatusCreated},
		{name: "signed out", current: nil, body: validReport, wantStatus: http.StatusUnauthorized},
		{name: "validation error", current: owner, body: `{"make":"Ford"}`, wantStatus: http.StatusBadRequest},
		{
			name:    "repo error",
			current: owner,
			body:    validReport,
			repoSetUp: func(f *fakeReportsRepo) {
				f.createFn = func(context.Context, report.CreateReportRequest, user.User) (report.Report, error) {
					return report.Report{}, errors.New("db error")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeReportsRepo{}
			if tt.repoSetUp != nil {
				tt.repoSetUp(fr)
			}

			h := handlers.NewReportsHandler(fr, nil)
			r := setupRouter(http.MethodPost, "/reports", tt.current, h.CreateReport)

			w := doJSON(r, http.MethodPost, "/reports", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["userId"] != float64(12) {
				t.Fatalf("expected userId 12, got %v", body["userId"])
			}
			if _, ok := body["approved"]; ok {
				t.Fatalf("create response must not expose approved: %v", body)
			}
		})
	}
}

func TestApproveReportHandler(t *testing.T) {
	admin := &user.User{ID: 1, Admin: true}

	var gotID int64
	var gotApproved bool

	fr := &fakeReportsRepo{changeApprovalFn: func(_ context.Context, id int64, approved bool) (report.Report, error) {
		if id != 3 {
			return report.Report{}, report.ErrNotFound
		}
		gotID, gotApproved = id, approved
		return report.Report{ID: id, Make: "Ford", Approved: approved, UserID: 12}, nil
	}}

	h := handlers.NewReportsHandler(fr, nil)
	r := setupRouter(http.MethodPatch, "/reports/:id", admin, h.ApproveReport)

	// userId in the body is ignored
	w := doJSON(r, http.MethodPatch, "/reports/3", `{"approved":true,"userId":999}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var got report.ApprovalResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotID != 3 || !gotApproved || !got.Approved || got.UserID != 12 {
		t.Fatalf("unexpected approval result: %+v", got)
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "unknown report", path: "/reports/4", body: `{"approved":true}`, want: http.StatusNotFound},
		{name: "missing flag", path: "/reports/3", body: `{}`, want: http.StatusBadRequest},
		{name: "wrong type", path: "/reports/3", body: `{"approved":"yes"}`, want: http.StatusBadRequest},
		{name: "bad id", path: "/reports/x", body: `{"approved":true}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(r, http.MethodPatch, tt.path, tt.body); w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetEstimateHandler(t *testing.T) {
	var gotParams report.EstimateParams

	price := 21000.0
	fr := &fakeReportsRepo{estimateFn: func(_ context.Context, p report.EstimateParams) (*float64, error) {
		gotParams = p
		if p.Make == "Honda" {
			return nil, nil
		}
		return &price, nil
	}}

	h := handlers.NewReportsHandler(fr, nil)
	r := setupRouter(http.MethodGet, "/reports", nil, h.GetEstimate)

	w := doJSON(r, http.MethodGet, "/reports?make=Toyota&model=Corolla&year=2020&kilometers=10000&longitude=0&latitude=0", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"price":21000}` {
		t.Fatalf("got status %d body=%s", w.Code, w.Body.String())
	}

	want := report.EstimateParams{Make: "Toyota", Model: "Corolla", Year: 2020, Kilometers: 10000}
	if gotParams != want {
		t.Fatalf("got params %+v, want %+v", gotParams, want)
	}

	w = doJSON(r, http.MethodGet, "/reports?make=Honda&model=Civic&year=2020&kilometers=1&longitude=0&latitude=0", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"price":null}` {
		t.Fatalf("got status %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/reports?make=Toyota", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}
