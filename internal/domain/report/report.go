package report

import (
	"errors"

	"github.com/geocoder89/carvalue/internal/domain/user"
)

type Report struct {
	ID         int64   `json:"id"`
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Price      float64 `json:"price"`
	Year       int     `json:"year"`
	Kilometers float64 `json:"kilometers"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	Approved   bool    `json:"approved"`
	UserID     int64   `json:"userId"`
}

var ErrNotFound = errors.New("report not found")

// notfutureyear is registered on the gin validator engine by the http package.
type CreateReportRequest struct {
	Make       string   `json:"make" binding:"required,max=80"`
	Model      string   `json:"model" binding:"required,max=80"`
	Price      *float64 `json:"price" binding:"required,gte=0,lte=10000000"`
	Year       *int     `json:"year" binding:"required,gte=1930,notfutureyear"`
	Kilometers *float64 `json:"kilometers" binding:"required,gte=0"`
	Longitude  *float64 `json:"longitude" binding:"required,longitude"`
	Latitude   *float64 `json:"latitude" binding:"required,latitude"`
}

// ApproveReportRequest carries only the flag; the owner cannot be changed through it.
type ApproveReportRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type EstimateQuery struct {
	Make       string   `form:"make" binding:"required,max=80"`
	Model      string   `form:"model" binding:"required,max=80"`
	Year       *int     `form:"year" binding:"required,gte=1930,notfutureyear"`
	Kilometers *float64 `form:"kilometers" binding:"required,gte=0"`
	Longitude  *float64 `form:"longitude" binding:"required,longitude"`
	Latitude   *float64 `form:"latitude" binding:"required,latitude"`
}

// Params flattens a bound query; callers must have validated it first.
func (q EstimateQuery) Params() EstimateParams {
	return EstimateParams{
		Make:       q.Make,
		Model:      q.Model,
		Year:       deref(q.Year),
		Kilometers: deref(q.Kilometers),
		Longitude:  deref(q.Longitude),
		Latitude:   deref(q.Latitude),
	}
}

// NewFromCreateRequest builds an unapproved report bound to its owner.
func NewFromCreateRequest(req CreateReportRequest, owner user.User) Report {
	return Report{
		Make:       req.Make,
		Model:      req.Model,
		Price:      deref(req.Price),
		Year:       deref(req.Year),
		Kilometers: deref(req.Kilometers),
		Longitude:  deref(req.Longitude),
		Latitude:   deref(req.Latitude),
		Approved:   false,
		UserID:     owner.ID,
	}
}

// Response hides the approval flag and any owner details beyond the id.
type Response struct {
	ID         int64   `json:"id"`
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Price      float64 `json:"price"`
	Year       int     `json:"year"`
	Kilometers float64 `json:"kilometers"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	UserID     int64   `json:"userId"`
}

type ApprovalResponse struct {
	Response
	Approved bool `json:"approved"`
}

type EstimateResponse struct {
	Price *float64 `json:"price"`
}

func ToResponse(r Report) Response {
	return Response{
		ID:         r.ID,
		Make:       r.Make,
		Model:      r.Model,
		Price:      r.Price,
		Year:       r.Year,
		Kilometers: r.Kilometers,
		Longitude:  r.Longitude,
		Latitude:   r.Latitude,
		UserID:     r.UserID,
	}
}

func ToApprovalResponse(r Report) ApprovalResponse {
	return ApprovalResponse{Response: ToResponse(r), Approved: r.Approved}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
