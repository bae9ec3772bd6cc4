package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/http/middlewares"
	"github.com/geocoder89/carvalue/internal/observability"
	"github.com/gin-gonic/gin"
)

type ReportStore interface {
	Create(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error)
	ChangeApproval(ctx context.Context, id int64, approved bool) (report.Report, error)
	Estimate(ctx context.Context, p report.EstimateParams) (*float64, error)
}

type ReportsHandler struct {
	reports ReportStore
	prom    *observability.Prom
}

// prom may be nil.
func NewReportsHandler(reports ReportStore, prom *observability.Prom) *ReportsHandler {
	return &ReportsHandler{reports: reports, prom: prom}
}

func (h *ReportsHandler) CreateReport(ctx *gin.Context) {
	owner, ok := middlewares.CurrentUserFrom(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not signed in")
		return
	}

	var req report.CreateReportRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.reports.Create(cctx, req, owner)

	if err != nil {
		RespondInternal(ctx, "Could not create report", err)
		return
	}

	ctx.JSON(http.StatusCreated, report.ToResponse(r))
}

// ApproveReport only ever touches the approval flag.
func (h *ReportsHandler) ApproveReport(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req report.ApproveReportRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	r, err := h.reports.ChangeApproval(cctx, id, *req.Approved)

	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			RespondNotFound(ctx, "Report not found")
			return
		}

		RespondInternal(ctx, "Could not update report", err)
		return
	}

	ctx.JSON(http.StatusOK, report.ToApprovalResponse(r))
}

func (h *ReportsHandler) GetEstimate(ctx *gin.Context) {
	var q report.EstimateQuery

	if !BindQuery(ctx, &q) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	price, err := h.reports.Estimate(cctx, q.Params())

	if err != nil {
		RespondInternal(ctx, "Could not compute estimate", err)
		return
	}

	h.prom.Estimate(price)

	ctx.JSON(http.StatusOK, report.EstimateResponse{Price: price})
}
